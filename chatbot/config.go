package chatbot

import (
	"errors"
	"fmt"
	"os"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/db"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/jamai"
)

type BotType string

const (
	BotPublic  BotType = "Public"
	BotStaff   BotType = "Staff"
	BotBooking BotType = "Booking"
)

var (
	// ErrProfileUnavailable marks a bot whose credentials were absent at
	// startup; requests against it fail explicitly instead of being
	// attempted with empty credentials.
	ErrProfileUnavailable = errors.New("bot profile unavailable")

	// ErrNoKnowledgeTable rejects file embedding for profiles without a
	// knowledge table. Embedding must never fall back to another profile's
	// table.
	ErrNoKnowledgeTable = errors.New("no knowledge table configured")
)

// BotProfile bundles the credentials and table ids of one bot. Immutable
// after load.
type BotProfile struct {
	Name             BotType
	APIKey           string
	ProjectID        string
	ActionTableID    string
	ChatTableID      string
	KnowledgeTableID string
}

func (p BotProfile) Available() bool {
	return p.APIKey != "" && p.ProjectID != ""
}

// Client builds a fresh service client for this profile. Per-request
// construction, no process-wide singleton.
func (p BotProfile) Client() *jamai.Client {
	return jamai.NewClient(p.APIKey, p.ProjectID)
}

type BotConfig map[BotType]BotProfile

// LoadBotConfig reads the three credential bundles from the environment.
// The staff bot deliberately has no knowledge table.
func LoadBotConfig() BotConfig {
	publicActionTable := os.Getenv("PUBLIC_TABLE_ID")
	if publicActionTable == "" {
		publicActionTable = "FAQ"
	}

	return BotConfig{
		BotStaff: {
			Name:          BotStaff,
			APIKey:        os.Getenv("STAFF_API_KEY"),
			ProjectID:     os.Getenv("STAFF_PROJECT_ID"),
			ActionTableID: os.Getenv("STAFF_TABLE_ID"),
		},
		BotPublic: {
			Name:             BotPublic,
			APIKey:           os.Getenv("PUBLIC_API_KEY"),
			ProjectID:        os.Getenv("PUBLIC_PROJECT_ID"),
			ActionTableID:    publicActionTable,
			KnowledgeTableID: os.Getenv("PUBLIC_KNOWLEDGE_TABLE_ID"),
		},
		BotBooking: {
			Name:             BotBooking,
			APIKey:           os.Getenv("BOOKING_API_KEY"),
			ProjectID:        os.Getenv("BOOKING_PROJECT_ID"),
			ChatTableID:      os.Getenv("BOOKING_TABLE_ID"),
			KnowledgeTableID: os.Getenv("BOOKING_KNOWLEDGE_TABLE_ID"),
		},
	}
}

// Profile returns the named profile or an explicit unavailability error.
func (c BotConfig) Profile(name BotType) (BotProfile, error) {
	profile, ok := c[name]
	if !ok {
		return BotProfile{}, fmt.Errorf("%w: unknown bot %q", ErrProfileUnavailable, name)
	}
	if !profile.Available() {
		return BotProfile{}, fmt.Errorf("%w: %s credentials missing", ErrProfileUnavailable, name)
	}
	return profile, nil
}

// Service is the chat core: routing, context aggregation, dispatch and
// history reconciliation. It holds no per-request state.
type Service struct {
	Config    BotConfig
	DBManager *db.DBManager
}
