package models

// DutyEntry is one duty-roster row. Read-mostly; only the doctors endpoint
// ever inserts.
type DutyEntry struct {
	ID         int64  `json:"id" db:"id"`
	DoctorName string `json:"doctor_name" db:"doctor_name"`
	Date       string `json:"date" db:"date"`
	TimeStart  string `json:"time_start" db:"time_start"`
	TimeEnd    string `json:"time_end" db:"time_end"`
}
