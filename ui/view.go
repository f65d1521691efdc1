package ui

func (m Model) View() string {
	if m.ctrl.State() == Terminating {
		return ""
	}
	return m.screen.Frame()
}
