package model

// Annotate fills in CPU and PMem for a fresh snapshot and returns it in a
// new slice together with the history for the next pass.
//
// CPU is the share of one CPU used since the previous pass:
// 100 * delta / (intervalSecs * ticksPerSec). A pid missing from prev is
// charged its whole accumulated time, so a process seen for the first time
// reports more than it used during the interval. A counter that went
// backwards (pid reused by a new process) is handled the same way.
//
// PMem is the process's share of the summed resident set of the snapshot.
//
// The returned history holds exactly the pids of current.
func Annotate(current []ProcessRecord, prev CPUHistory, intervalSecs float64, ticksPerSec uint64) ([]ProcessRecord, CPUHistory) {
	out := make([]ProcessRecord, len(current))
	next := make(CPUHistory, len(current))

	var rssSum int64
	for _, r := range current {
		rssSum += r.RSSKB
	}

	window := intervalSecs * float64(ticksPerSec)

	for i, r := range current {
		total := r.TotalTime()
		delta := total
		if before, ok := prev[r.Pid]; ok && before <= total {
			delta = total - before
		}

		r.CPU = 0
		if window > 0 {
			r.CPU = 100 * float64(delta) / window
		}
		r.PMem = 0
		if rssSum > 0 {
			r.PMem = 100 * float64(r.RSSKB) / float64(rssSum)
		}

		out[i] = r
		next[r.Pid] = total
	}
	return out, next
}

// TaskCounts tallies a snapshot by run state.
type TaskCounts struct {
	Total, Running, Sleeping, Stopped, Zombie int
}

func CountTasks(records []ProcessRecord) TaskCounts {
	var t TaskCounts
	for _, r := range records {
		t.Total++
		switch r.State {
		case 'R':
			t.Running++
		case 'S', 'D', 'I':
			t.Sleeping++
		case 'T', 't':
			t.Stopped++
		case 'Z':
			t.Zombie++
		}
	}
	return t
}
