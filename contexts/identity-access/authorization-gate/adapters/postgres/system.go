package postgresadapter

import "time"

// SystemClock reports wall-clock UTC time for session expiry checks.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
