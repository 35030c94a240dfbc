package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/easeaico/companion-house/internal/types"
)

type summaryModel struct {
	ID                  string `gorm:"primaryKey"`
	SessionID           string `gorm:"index"`
	CharacterID         string `gorm:"index"`
	Summary             string
	KeyTopics           datatypes.JSON
	EmotionalTone       string
	RelationshipContext string
	MessageCount        int
	CreatedAt           time.Time
}

func (summaryModel) TableName() string {
	return "conversation_summaries"
}

// SummaryRepo stores the relationship summaries written by the analytics processor.
type SummaryRepo struct {
	db *gorm.DB
}

func NewSummaryRepo(db *gorm.DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

func (r *SummaryRepo) SaveSummary(ctx context.Context, summary *types.ConversationSummary) error {
	if summary == nil {
		return errors.New("summary is nil")
	}
	topics, err := marshalJSON(nonNil(summary.KeyTopics))
	if err != nil {
		return fmt.Errorf("failed to encode key topics: %w", err)
	}
	row := summaryModel{
		ID:                  summary.ID,
		SessionID:           summary.SessionID,
		CharacterID:         summary.CharacterID,
		Summary:             summary.Summary,
		KeyTopics:           topics,
		EmotionalTone:       summary.EmotionalTone,
		RelationshipContext: summary.RelationshipContext,
		MessageCount:        summary.MessageCount,
		CreatedAt:           summary.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// HasSummary reports whether the character already has a summary of the session.
func (r *SummaryRepo) HasSummary(ctx context.Context, sessionID, characterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&summaryModel{}).
		Where("session_id = ? AND character_id = ?", sessionID, characterID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check summary: %w", err)
	}
	return count > 0, nil
}

// ListSummaries returns a character's summaries, newest first. limit <= 0 returns all.
func (r *SummaryRepo) ListSummaries(ctx context.Context, characterID string, limit int) ([]types.ConversationSummary, error) {
	var rows []summaryModel
	q := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	out := make([]types.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		s := types.ConversationSummary{
			ID:                  row.ID,
			SessionID:           row.SessionID,
			CharacterID:         row.CharacterID,
			Summary:             row.Summary,
			EmotionalTone:       row.EmotionalTone,
			RelationshipContext: row.RelationshipContext,
			MessageCount:        row.MessageCount,
			CreatedAt:           row.CreatedAt,
		}
		if err := unmarshalJSON(row.KeyTopics, &s.KeyTopics); err != nil {
			return nil, fmt.Errorf("failed to decode key topics of %s: %w", row.ID, err)
		}
		s.KeyTopics = nonNil(s.KeyTopics)
		out = append(out, s)
	}
	return out, nil
}
