package chatbot

import (
	"context"
	"fmt"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/jamai"
)

// DispatchError is a soft reply-path failure. Message preserves the exact
// text the legacy frontend renders in place of a reply, so the HTTP layer
// can keep that contract while callers branch on the type.
type DispatchError struct {
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	return e.Message
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

const noResponseMessage = "Error: No response received from JamAI Table."

func noResponseError() *DispatchError {
	return &DispatchError{Message: noResponseMessage}
}

func connectionError(err error) *DispatchError {
	return &DispatchError{
		Message: fmt.Sprintf("Error connecting to JamAI: %s", err),
		Err:     err,
	}
}

// defaultSessionID labels rows sent without an explicit session.
const defaultSessionID = "external_session"

// Respond routes the message to the bot matching the context label and
// returns the extracted reply text.
func (s *Service) Respond(ctx context.Context, contextLabel string, message string, sessionID string, userEmail string) (string, error) {
	switch ProfileFor(contextLabel) {
	case BotStaff:
		return s.RespondStaff(ctx, message, sessionID, userEmail)
	case BotBooking:
		return s.RespondBooking(ctx, message, sessionID, userEmail)
	default:
		return s.RespondPublic(ctx, message, sessionID, userEmail)
	}
}

// RespondPublic sends the enriched message to the public action table. The
// reply is wrapped in the sentinel-delimited transcript form the public
// chat-table flow stores and later re-parses.
func (s *Service) RespondPublic(ctx context.Context, message string, sessionID string, userEmail string) (string, error) {
	profile, err := s.Config.Profile(BotPublic)
	if err != nil {
		return "", err
	}

	fullMessage := s.composeMessage(message, BotPublic, userEmail)

	completion, err := profile.Client().AddRow(ctx, jamai.TableAction, profile.ActionTableID,
		map[string]interface{}{"usr_input": fullMessage})
	if err != nil {
		return "", connectionError(err)
	}
	if len(completion.Rows) == 0 {
		return "", noResponseError()
	}

	row := completion.Rows[0]
	reply := row.LastColumnText()
	if row.HasColumn("user_output") {
		reply = row.ColumnText("user_output")
	}

	return fmt.Sprintf("User: %s\n Action Table: %s", message, reply), nil
}

// RespondStaff sends the enriched message to the staff action table with
// session metadata columns so histories can be filtered per session later.
func (s *Service) RespondStaff(ctx context.Context, message string, sessionID string, userEmail string) (string, error) {
	profile, err := s.Config.Profile(BotStaff)
	if err != nil {
		return "", err
	}

	if sessionID == "" {
		sessionID = defaultSessionID
	}

	rowData := map[string]interface{}{
		"User":       s.composeMessage(message, BotStaff, userEmail),
		"Session ID": sessionID,
		"User Role":  string(BotStaff),
	}
	if userEmail != "" {
		rowData["User Email"] = userEmail
	}

	completion, err := profile.Client().AddRow(ctx, jamai.TableAction, profile.ActionTableID, rowData)
	if err != nil {
		return "", connectionError(err)
	}
	if len(completion.Rows) == 0 {
		return "", noResponseError()
	}

	return extractReply(completion.Rows[0]), nil
}

// RespondBooking sends the enriched message to the booking chat table. The
// booking bot talks to the public on the clinic's behalf, so booking-list
// context is scoped the same way as the public bot's.
func (s *Service) RespondBooking(ctx context.Context, message string, sessionID string, userEmail string) (string, error) {
	profile, err := s.Config.Profile(BotBooking)
	if err != nil {
		return "", err
	}

	fullMessage := s.composeMessage(message, BotPublic, userEmail)

	completion, err := profile.Client().AddRow(ctx, jamai.TableChat, profile.ChatTableID,
		map[string]interface{}{"User": fullMessage})
	if err != nil {
		return "", connectionError(err)
	}
	if len(completion.Rows) == 0 {
		return "", noResponseError()
	}

	return extractReply(completion.Rows[0]), nil
}

// PostChatTable appends a composed message to a per-session chat table and
// returns that table's own reply. Used after the action-table step so the
// session table keeps the running transcript.
func (s *Service) PostChatTable(ctx context.Context, message string, tableID string) (string, error) {
	profile, err := s.Config.Profile(BotPublic)
	if err != nil {
		return "", err
	}

	completion, err := profile.Client().AddRow(ctx, jamai.TableChat, tableID,
		map[string]interface{}{"User": message})
	if err != nil {
		return "", connectionError(err)
	}
	if len(completion.Rows) == 0 {
		return "", noResponseError()
	}

	row := completion.Rows[0]
	if row.HasColumn("user_output") {
		return fmt.Sprintf("User: %s\n Action Table: %s", message, row.ColumnText("user_output")), nil
	}
	return row.LastColumnText(), nil
}

// composeMessage appends the duty and booking context blocks to the user
// message. Empty blocks contribute nothing.
func (s *Service) composeMessage(message string, role BotType, userEmail string) string {
	fullMessage := message

	if dutyContext := s.DutyListContext(); dutyContext != "" {
		fullMessage += dutyContext
	}
	if bookingContext := s.BookingListContext(role, userEmail); bookingContext != "" {
		fullMessage += bookingContext
	}

	return fullMessage
}

// extractReply prefers the "AI" output column and falls back to the
// lexically-last column.
func extractReply(row jamai.Row) string {
	if row.HasColumn("AI") {
		return row.ColumnText("AI")
	}
	return row.LastColumnText()
}
