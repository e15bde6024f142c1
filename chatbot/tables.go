package chatbot

import (
	"context"
	"fmt"

	"github.com/twinj/uuid"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/jamai"
)

// NewChatTable clones the base chat table as a child table so the new
// session gets its own isolated transcript.
func (s *Service) NewChatTable(ctx context.Context, baseTableID string) (string, error) {
	profile, err := s.Config.Profile(BotPublic)
	if err != nil {
		return "", err
	}

	newTableID := "chat_" + uuid.NewV4().String()[:8]

	err = profile.Client().DuplicateTable(ctx, jamai.TableChat, baseTableID, newTableID, true, true)
	if err != nil {
		return "", err
	}

	return newTableID, nil
}

// DeleteChatTable removes a per-session chat table.
func (s *Service) DeleteChatTable(ctx context.Context, tableID string) error {
	profile, err := s.Config.Profile(BotPublic)
	if err != nil {
		return err
	}

	return profile.Client().DeleteTable(ctx, jamai.TableChat, tableID)
}

// EmbedFile pushes an uploaded file into the profile's knowledge table.
// Profiles without a knowledge table reject the upload outright rather than
// borrowing another profile's table.
func (s *Service) EmbedFile(ctx context.Context, botType BotType, filePath string) error {
	profile, err := s.Config.Profile(botType)
	if err != nil {
		return err
	}

	if profile.KnowledgeTableID == "" {
		return fmt.Errorf("%w for bot_type: %s", ErrNoKnowledgeTable, botType)
	}

	return profile.Client().EmbedFile(ctx, profile.KnowledgeTableID, filePath)
}

// ListTables enumerates a profile's tables of one kind, for the admin
// tooling view.
func (s *Service) ListTables(ctx context.Context, botType BotType, kind jamai.TableKind) ([]jamai.TableMeta, error) {
	profile, err := s.Config.Profile(botType)
	if err != nil {
		return nil, err
	}

	return profile.Client().ListTables(ctx, kind)
}
