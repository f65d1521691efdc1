package proc

import (
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

func ReadUptime() (time.Duration, error) {
	secs, err := host.Uptime()
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// ReadUserCount returns the number of logged-in sessions from utmp.
func ReadUserCount() (int, error) {
	users, err := host.Users()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
