package chatbot

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/jamai"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/models"
)

const (
	historyPageSize = 100

	// historyMaxPages caps a reload at 3000 rows. Rows beyond the cap are
	// unreachable; known limitation.
	historyMaxPages = 30
)

// Legacy public rows store a whole exchange in the "User" column as
// "User: <msg>\n Action Table: <reply>". Only the user half is recoverable.
var userMessagePattern = regexp.MustCompile(`(?s)User:\s*(.*?)\s*Action Table:`)

func extractUserMessage(text string) string {
	if match := userMessagePattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return text
}

// SessionHistory reloads the transcript of one session from the shared
// table of the bot implied by the session id prefix ("staff_...",
// "booking_...", anything else is public). Rows are filtered by exact
// trimmed Session ID match; rows without a Session ID column belong to
// legacy single-session tables and are treated as matching. Never fails:
// a total failure yields a single synthetic assistant entry.
func (s *Service) SessionHistory(ctx context.Context, sessionID string) []models.TranscriptEntry {
	botType := BotPublic
	tableKind := jamai.TableAction

	if strings.HasPrefix(sessionID, "staff_") {
		botType = BotStaff
	} else if strings.HasPrefix(sessionID, "booking_") {
		botType = BotBooking
		tableKind = jamai.TableChat
	}

	profile, err := s.Config.Profile(botType)
	if err != nil {
		return sessionHistoryFailure(err)
	}

	tableID := profile.ActionTableID
	if botType == BotBooking {
		tableID = profile.ChatTableID
	}

	rows, err := fetchAllRows(ctx, profile.Client(), tableKind, tableID)
	if err != nil {
		return sessionHistoryFailure(err)
	}

	wanted := strings.TrimSpace(sessionID)

	history := make([]models.TranscriptEntry, 0)
	for _, row := range rows {
		if row.HasColumn("Session ID") {
			if strings.TrimSpace(row.ColumnText("Session ID")) != wanted {
				continue
			}
		}

		appendExchange(&history, row.ColumnText("User"), row.ColumnText("AI"), row.Timestamp())
	}

	sortByTimestamp(history)
	return history
}

// TableHistory reloads the full transcript of a per-session public chat
// table. No session filter applies (the table itself is the session); the
// user half of sentinel-delimited rows is recovered by marker extraction.
func (s *Service) TableHistory(ctx context.Context, tableID string) []models.TranscriptEntry {
	profile, err := s.Config.Profile(BotPublic)
	if err != nil {
		return tableHistoryFailure(err)
	}

	rows, err := fetchAllRows(ctx, profile.Client(), jamai.TableChat, tableID)
	if err != nil {
		return tableHistoryFailure(err)
	}

	history := make([]models.TranscriptEntry, 0)
	for _, row := range rows {
		userText := extractUserMessage(row.ColumnText("User"))
		appendExchange(&history, userText, row.ColumnText("AI"), row.Timestamp())
	}

	sortByTimestamp(history)
	return history
}

// fetchAllRows pages through a table in fixed-size pages, preserving
// per-page input order.
func fetchAllRows(ctx context.Context, client *jamai.Client, kind jamai.TableKind, tableID string) ([]jamai.Row, error) {
	var all []jamai.Row
	offset := 0

	for page := 0; page < historyMaxPages; page++ {
		response, err := client.ListRows(ctx, kind, tableID, offset, historyPageSize)
		if err != nil {
			return nil, err
		}

		if len(response.Items) == 0 {
			break
		}

		all = append(all, response.Items...)

		if len(response.Items) < historyPageSize {
			break
		}
		offset += historyPageSize
	}

	return all, nil
}

func appendExchange(history *[]models.TranscriptEntry, userText string, aiText string, timestamp string) {
	if userText != "" {
		*history = append(*history, models.TranscriptEntry{
			Role:      "user",
			Content:   userText,
			Timestamp: timestamp,
		})
	}
	if aiText != "" {
		*history = append(*history, models.TranscriptEntry{
			Role:      "assistant",
			Content:   aiText,
			Timestamp: timestamp,
		})
	}
}

// sortByTimestamp orders oldest first. The sort is stable so rows sharing a
// timestamp keep their fetch order, and it compares the raw timestamp
// strings rather than parsed times.
func sortByTimestamp(history []models.TranscriptEntry) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})
}

func sessionHistoryFailure(err error) []models.TranscriptEntry {
	return []models.TranscriptEntry{{
		Role:      "assistant",
		Content:   fmt.Sprintf("⚠️ **Connection Error**: Could not load chat history. The server returned: *%s*. Please check your API key or internet connection.", err),
		Timestamp: "System",
	}}
}

func tableHistoryFailure(err error) []models.TranscriptEntry {
	return []models.TranscriptEntry{{
		Role:      "assistant",
		Content:   fmt.Sprintf("⚠️ **Connection Error**: Could not load chat history. %s", err),
		Timestamp: "System",
	}}
}
