package model

import "time"

// ResultRow is one cell of the admin result matrix. For quiz items every
// (user, item) pair appears, with a nil Value when the user has not
// answered; rating rows appear only where a rating exists.
type ResultRow struct {
	Username       string     `json:"username"`
	ItemID         int64      `json:"item_id"`
	SequenceNumber int64      `json:"sequence_number"`
	Category       string     `json:"category"`
	ModelName      string     `json:"model,omitempty"`
	Value          *int64     `json:"value"`
	Answer         *int64     `json:"answer,omitempty"`
	Correct        *bool      `json:"correct"`
	RecordedAt     *time.Time `json:"timestamp"`
}

// ExportRow is one recorded judgment joined with its item and user, in the
// stable field order consumed by the CSV and JSON exporters. Answer and
// Correct are set for quiz rows only.
type ExportRow struct {
	ItemID     int64     `json:"item_id"`
	Category   string    `json:"category"`
	ItemText   string    `json:"item_text"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	ModelName  string    `json:"model,omitempty"`
	Value      int64     `json:"value"`
	Answer     *int64    `json:"answer,omitempty"`
	Correct    *bool     `json:"correct,omitempty"`
	RecordedAt time.Time `json:"timestamp"`
}
