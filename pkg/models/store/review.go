package store

import "time"

// ReviewRecord is one persisted review outcome.
type ReviewRecord struct {
	ID        string
	Service   string
	Kind      string
	Decision  string
	Score     int
	Summary   map[string]int
	Markdown  string
	CreatedAt time.Time
}
