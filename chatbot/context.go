package chatbot

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/models"
)

const (
	dutyListHeader = "\n\n--- CURRENT CLINIC DUTY LIST ---\n"
	dutyListFooter = "--------------------------------\n"

	bookingListHeader = "\n\n--- UPCOMING BOOKINGS ---\n"
	bookingListFooter = "-------------------------\n"
)

// DutyListContext renders the whole duty roster as a context block appended
// to outbound chat messages. Context enrichment is best-effort: any failure
// degrades to an empty string, and an empty roster emits no banner at all.
func (s *Service) DutyListContext() string {
	if s.DBManager == nil {
		return ""
	}

	rows, err := s.DBManager.DB.Queryx("SELECT * FROM DutyList")
	if err != nil {
		log.Printf("Error fetching duty list: %v", err)
		return ""
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		log.Printf("Error fetching duty list: %v", err)
		return ""
	}

	var block strings.Builder
	count := 0

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			log.Printf("Error fetching duty list: %v", err)
			return ""
		}

		// One roster row per line, "column: value" pairs in column order.
		parts := make([]string, 0, len(columns))
		for i, column := range columns {
			parts = append(parts, fmt.Sprintf("%s: %s", column, cellString(values[i])))
		}
		block.WriteString("- " + strings.Join(parts, ", ") + "\n")
		count++
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error fetching duty list: %v", err)
		return ""
	}

	if count == 0 {
		return ""
	}
	return dutyListHeader + block.String() + dutyListFooter
}

// BookingListContext renders upcoming bookings (today onwards). Staff see
// every booking including the patient identity; the public bot is limited
// to the caller's own bookings, and with no caller email it returns nothing
// rather than leaking other patients' appointments.
func (s *Service) BookingListContext(role BotType, userEmail string) string {
	if s.DBManager == nil {
		return ""
	}

	today := time.Now().Format("2006-01-02")

	query := "SELECT * FROM Booking WHERE Date >= $1"
	args := []interface{}{today}

	if role != BotStaff {
		if userEmail == "" {
			return ""
		}
		query += " AND patient_name = $2"
		args = append(args, userEmail)
	}

	bookings := make([]models.Booking, 0)

	err := s.DBManager.DB.Select(&bookings, query, args...)
	if err != nil {
		log.Printf("Error fetching booking list: %v", err)
		return ""
	}

	if len(bookings) == 0 {
		return ""
	}

	var block strings.Builder
	block.WriteString(bookingListHeader)
	for _, booking := range bookings {
		line := fmt.Sprintf("Date: %s, Time: %s, Doctor: %s",
			booking.Date, booking.AppointmentTime, booking.DoctorName)
		if role == BotStaff {
			line += fmt.Sprintf(", Patient: %s", booking.PatientName)
		}
		block.WriteString("- " + line + "\n")
	}
	block.WriteString(bookingListFooter)

	return block.String()
}

func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
