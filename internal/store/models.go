package store

import "time"

// Solution status values.
const (
	StatusSolved       = "solved"
	StatusFailed       = "failed"
	StatusInsufficient = "insufficient"
	StatusDenied       = "denied"
)

// Solution records one request and how it ended.
type Solution struct {
	ID        int64
	ChatID    string
	Provider  string
	Problem   string
	PlanJSON  string
	Status    string
	Error     string
	CreatedAt time.Time
}

// Media is a rendered image kept until the messenger has fetched it.
type Media struct {
	ID          string
	ChatID      string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
