package helpers

import "time"

func IntSecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Second
}

// Negative x means explicit zero, useful where 0 is a meaningful setting.
func IntMillisecondDefault(x int, def time.Duration) time.Duration {
	switch {
	case x < 0:
		return 0
	case x == 0:
		return def
	}
	return time.Duration(x) * time.Millisecond
}
