package models

// TranscriptEntry is one reconciled chat-history message. Timestamp is the
// raw string reported by the table service ("Unknown Time" when the row
// carries none); ordering is lexicographic on that string, not calendar
// aware.
type TranscriptEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
