package chatbot

import "strings"

// ProfileFor maps a conversation context label to a bot. Matching is
// case-insensitive substring search, first rule wins; anything unmatched
// falls back to the public bot and never errors.
func ProfileFor(contextLabel string) BotType {
	label := strings.ToLower(contextLabel)

	switch {
	case strings.Contains(label, "staff"):
		return BotStaff
	case strings.Contains(label, "booking"):
		return BotBooking
	default:
		return BotPublic
	}
}
