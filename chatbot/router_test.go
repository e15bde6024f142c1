package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileFor(t *testing.T) {
	cases := []struct {
		label string
		want  BotType
	}{
		{"Staff Dashboard", BotStaff},
		{"staff", BotStaff},
		{"STAFF tools", BotStaff},
		{"Booking Assistant", BotBooking},
		{"booking", BotBooking},
		{"General Knowledge", BotPublic},
		{"", BotPublic},
		{"random label", BotPublic},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ProfileFor(tc.label), "label %q", tc.label)
	}
}
