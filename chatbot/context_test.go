package chatbot

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/db"
)

func mockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	manager := &db.DBManager{DB: sqlx.NewDb(mockDB, "sqlite3")}
	return &Service{Config: testBotConfig(), DBManager: manager}, mock
}

func TestDutyListContextEmptyRoster(t *testing.T) {
	service, mock := mockService(t)

	mock.ExpectQuery("SELECT * FROM DutyList").
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_name", "date", "time_start", "time_end"}))

	assert.Equal(t, "", service.DutyListContext())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDutyListContextRendersRows(t *testing.T) {
	service, mock := mockService(t)

	mock.ExpectQuery("SELECT * FROM DutyList").
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_name", "date", "time_start", "time_end"}).
			AddRow(1, "Dr. Tan", "2025-06-02", "09:00", "17:00").
			AddRow(2, "Dr. Lim", "2025-06-03", "10:00", "18:00"))

	block := service.DutyListContext()

	assert.Contains(t, block, "--- CURRENT CLINIC DUTY LIST ---")
	assert.Contains(t, block, "- id: 1, doctor_name: Dr. Tan, date: 2025-06-02, time_start: 09:00, time_end: 17:00\n")
	assert.Contains(t, block, "- id: 2, doctor_name: Dr. Lim")
	assert.True(t, len(block) > 0 && block[len(block)-1] == '\n')
	assert.Contains(t, block, "--------------------------------\n")
}

func TestDutyListContextQueryFailure(t *testing.T) {
	service, mock := mockService(t)

	mock.ExpectQuery("SELECT * FROM DutyList").WillReturnError(assert.AnError)

	assert.Equal(t, "", service.DutyListContext())
}

func TestBookingListContextPublicWithoutEmail(t *testing.T) {
	service, mock := mockService(t)

	assert.Equal(t, "", service.BookingListContext(BotPublic, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListContextPublicScopedToPatient(t *testing.T) {
	service, mock := mockService(t)
	today := time.Now().Format("2006-01-02")

	mock.ExpectQuery("SELECT * FROM Booking WHERE Date >= $1 AND patient_name = $2").
		WithArgs(today, "pat@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_name", "patient_name", "appoinment_time", "Date"}).
			AddRow(7, "Dr. Tan", "pat@example.com", "10:30", "2025-06-02"))

	block := service.BookingListContext(BotPublic, "pat@example.com")

	assert.Contains(t, block, "--- UPCOMING BOOKINGS ---")
	assert.Contains(t, block, "- Date: 2025-06-02, Time: 10:30, Doctor: Dr. Tan\n")
	assert.NotContains(t, block, "Patient:")
	assert.Contains(t, block, "-------------------------\n")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListContextStaffSeesPatients(t *testing.T) {
	service, mock := mockService(t)
	today := time.Now().Format("2006-01-02")

	mock.ExpectQuery("SELECT * FROM Booking WHERE Date >= $1").
		WithArgs(today).
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_name", "patient_name", "appoinment_time", "Date"}).
			AddRow(7, "Dr. Tan", "pat@example.com", "10:30", "2025-06-02"))

	block := service.BookingListContext(BotStaff, "")

	assert.Contains(t, block, "- Date: 2025-06-02, Time: 10:30, Doctor: Dr. Tan, Patient: pat@example.com\n")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListContextNoUpcoming(t *testing.T) {
	service, mock := mockService(t)
	today := time.Now().Format("2006-01-02")

	mock.ExpectQuery("SELECT * FROM Booking WHERE Date >= $1").
		WithArgs(today).
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_name", "patient_name", "appoinment_time", "Date"}))

	assert.Equal(t, "", service.BookingListContext(BotStaff, ""))
}
