package domain

import "time"

// BotStatus is the process-wide switch controlled from the admin page.
type BotStatus struct {
	Enabled     bool       `json:"enabled"`
	LastRestart time.Time  `json:"lastRestart"`
	LastUpdate  *time.Time `json:"lastUpdate,omitempty"`
}

func DefaultBotStatus(now time.Time) BotStatus {
	return BotStatus{Enabled: true, LastRestart: now}
}
