package controllers

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/db"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/models"
)

// BookingController owns the scheduling surface: booking CRUD, the duty
// roster, patient history and the staff dashboard. Rows live in the
// relational store only; nothing is cached here.
type BookingController struct {
	DBManager *db.DBManager
}

// BookedTimes lists the taken appointment slots for one date, for the
// booking form's slot picker.
func (bController *BookingController) BookedTimes(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	date := r.URL.Query().Get("date")
	if date == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Date is required"})
		return
	}

	bookedTimes := make([]string, 0)

	err := bController.DBManager.DB.Select(&bookedTimes, "SELECT appoinment_time FROM Booking WHERE Date=$1", date)
	if err != nil {
		log.Printf("Fetch Bookings Error: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "bookedTimes": bookedTimes})
}

func (bController *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	doctorName := stringField(postMap, "doctorName")
	date := stringField(postMap, "date")
	bookingTime := stringField(postMap, "time")
	patientEmail := stringField(postMap, "patientEmail")

	if doctorName == "" || date == "" || bookingTime == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Missing booking details"})
		return
	}

	patientName := patientEmail
	if patientName == "" {
		patientName = "Guest"
	}

	result, err := bController.DBManager.DB.Exec(
		"INSERT INTO Booking(doctor_name, patient_name, appoinment_time, Date) VALUES($1, $2, $3, $4)",
		doctorName, patientName, bookingTime, date)
	if err != nil {
		log.Printf("Booking Error: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	booking := models.Booking{
		DoctorName:      doctorName,
		PatientName:     patientName,
		AppointmentTime: bookingTime,
		Date:            date,
	}
	if bookingID, err := result.LastInsertId(); err == nil {
		booking.ID = bookingID
	}

	if patientEmail != "" {
		go sendBookingConfirmation(patientEmail, booking)
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []models.Booking{booking}})
}

// Appointments lists a date's bookings for the scheduling view.
func (bController *BookingController) Appointments(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	date := r.URL.Query().Get("date")
	if date == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Date is required"})
		return
	}

	appointments := make([]models.Booking, 0)

	err := bController.DBManager.DB.Select(&appointments, "SELECT * FROM Booking WHERE Date=$1", date)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "appointments": appointments})
}

// CancelAppointment deletes by id when the frontend has one, else by the
// composite doctor+date+time key. The composite key may match zero rows
// (soft "no match" failure, never an error) or several (duplicate bookings
// are all removed).
func (bController *BookingController) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	var result int64

	if bookingID, ok := numberField(postMap, "id"); ok {
		result, err = bController.deleteByID(bookingID)
	} else {
		doctorName := stringField(postMap, "doctor_name")
		date := stringField(postMap, "date")
		bookingTime := stringField(postMap, "time")

		if doctorName == "" || date == "" || bookingTime == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Missing booking identifier"})
			return
		}

		result, err = bController.deleteByCompositeKey(doctorName, date, bookingTime)
	}

	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	if result == 0 {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "No matching booking found to cancel."})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "deleted": result})
}

func (bController *BookingController) deleteByID(bookingID int64) (int64, error) {
	result, err := bController.DBManager.DB.Exec("DELETE FROM Booking WHERE id=$1", bookingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (bController *BookingController) deleteByCompositeKey(doctorName string, date string, bookingTime string) (int64, error) {
	result, err := bController.DBManager.DB.Exec(
		"DELETE FROM Booking WHERE doctor_name=$1 AND Date=$2 AND appoinment_time=$3",
		doctorName, date, bookingTime)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RescheduleAppointment moves a booking to a new date and time by id.
func (bController *BookingController) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	bookingID, hasID := numberField(postMap, "id")
	newDate := stringField(postMap, "newDate")
	newTime := stringField(postMap, "newTime")

	if !hasID || newDate == "" || newTime == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Missing required fields"})
		return
	}

	result, err := bController.DBManager.DB.Exec(
		"UPDATE Booking SET Date=$1, appoinment_time=$2 WHERE id=$3",
		newDate, newTime, bookingID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "No matching booking found to update."})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "updated": affected})
}

func (bController *BookingController) PatientHistory(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	email := r.URL.Query().Get("email")
	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Email is required"})
		return
	}

	appointments := make([]models.Booking, 0)

	err := bController.DBManager.DB.Select(&appointments, "SELECT * FROM Booking WHERE patient_name=$1", email)
	if err != nil {
		log.Printf("Patient History Error: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "appointments": appointments})
}

func (bController *BookingController) ListDoctors(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	doctors := make([]models.DutyEntry, 0)

	err := bController.DBManager.DB.Select(&doctors, "SELECT * FROM DutyList")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "doctors": doctors})
}

// AddDoctor inserts a duty-roster entry. The roster table has no specialty
// column, so a given specialty is folded into the display name.
func (bController *BookingController) AddDoctor(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	doctorName := stringField(postMap, "doctorName")
	specialty := stringField(postMap, "specialty")
	date := stringField(postMap, "date")
	startTime := stringField(postMap, "startTime")
	endTime := stringField(postMap, "endTime")

	if doctorName == "" || date == "" || startTime == "" || endTime == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Missing required fields"})
		return
	}

	finalName := doctorName
	if specialty != "" {
		finalName = fmt.Sprintf("%s (%s)", doctorName, specialty)
	}

	entry := models.DutyEntry{
		DoctorName: finalName,
		Date:       date,
		TimeStart:  startTime,
		TimeEnd:    endTime,
	}

	result, err := bController.DBManager.DB.Exec(
		"INSERT INTO DutyList(doctor_name, date, time_start, time_end) VALUES($1, $2, $3, $4)",
		entry.DoctorName, entry.Date, entry.TimeStart, entry.TimeEnd)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	if entryID, err := result.LastInsertId(); err == nil {
		entry.ID = entryID
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []models.DutyEntry{entry}})
}

// Dashboard aggregates the staff landing stats: today's appointment count
// and list, plus the distinct-patient count over the current Monday-Sunday
// week. Average wait time is a hardcoded placeholder; no arrival times are
// recorded to derive it from.
func (bController *BookingController) Dashboard(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	now := time.Now()
	today := now.Format("2006-01-02")

	todayAppointments := make([]models.Booking, 0)

	err := bController.DBManager.DB.Select(&todayAppointments, "SELECT * FROM Booking WHERE Date=$1", today)
	if err != nil {
		log.Printf("Dashboard Error: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	startOfWeek, endOfWeek := weekRange(now)

	weekPatients := make([]string, 0)

	err = bController.DBManager.DB.Select(&weekPatients,
		"SELECT patient_name FROM Booking WHERE Date >= $1 AND Date <= $2", startOfWeek, endOfWeek)
	if err != nil {
		log.Printf("Dashboard Error: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	uniquePatients := make(map[string]struct{})
	for _, patient := range weekPatients {
		if patient != "" {
			uniquePatients[patient] = struct{}{}
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"todayAppointments": len(todayAppointments),
			"patientsThisWeek":  len(uniquePatients),
			"avgWaitTime":       "8 min",
		},
		"appointments": todayAppointments,
	})
}

// weekRange returns the Monday and Sunday dates of the week containing t.
func weekRange(t time.Time) (string, string) {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 6)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// numberField reads a JSON field that may arrive as a number or a numeric
// string.
func numberField(postMap map[string]interface{}, key string) (int64, bool) {
	switch value := postMap[key].(type) {
	case float64:
		return int64(value), true
	case string:
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// sendBookingConfirmation mails the patient their appointment details when
// mail delivery is configured. Best-effort, never blocks the response.
func sendBookingConfirmation(patientEmail string, booking models.Booking) {
	mailServer := os.Getenv("MAIL_SERVER")
	if mailServer == "" {
		return
	}

	mailContact := os.Getenv("MAIL_CONTACT")
	mailPort := os.Getenv("SMTP_PORT")
	mailUsername := os.Getenv("MAIL_USERNAME")
	mailPassword := os.Getenv("MAIL_PASSWORD")

	m := gomail.NewMessage()

	m.SetHeader("From", mailContact)
	m.SetHeader("To", patientEmail)
	m.SetHeader("Subject", "ClinicConnect: Appointment confirmation")

	m.SetBody("text/html", `
		<p>Your appointment has been booked.</p>
		<p>Doctor: `+booking.DoctorName+`</p>
		<p>Date: `+booking.Date+`, Time: `+booking.AppointmentTime+`</p>
	`)

	port, _ := strconv.Atoi(mailPort)

	d := gomail.NewDialer(mailServer, port, mailUsername, mailPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	if err := d.DialAndSend(m); err != nil {
		log.Println(err.Error())
	}
}
