package models

// Booking is one appointment row. Column and JSON key spellings (including
// "appoinment_time" and capitalised "Date") are part of the wire contract
// the frontend already depends on.
type Booking struct {
	ID              int64  `json:"id" db:"id"`
	DoctorName      string `json:"doctor_name" db:"doctor_name"`
	PatientName     string `json:"patient_name" db:"patient_name"`
	AppointmentTime string `json:"appoinment_time" db:"appoinment_time"`
	Date            string `json:"Date" db:"Date"`
}
