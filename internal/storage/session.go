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

type sessionModel struct {
	ID           string `gorm:"primaryKey"`
	Kind         string
	Participants datatypes.JSON
	Messages     datatypes.JSON
	StatChanges  datatypes.JSON
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

func (sessionModel) TableName() string {
	return "chat_sessions"
}

// SessionRepo stores chat sessions written by the chat layer.
type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) GetSession(ctx context.Context, id string) (*types.ChatSession, error) {
	var row sessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}
	session, err := row.toSession()
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns every session, most recently updated first.
func (r *SessionRepo) ListSessions(ctx context.Context) ([]types.ChatSession, error) {
	var rows []sessionModel
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	out := make([]types.ChatSession, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSession()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SaveSession inserts or replaces a session.
func (r *SessionRepo) SaveSession(ctx context.Context, session *types.ChatSession) error {
	if session == nil {
		return errors.New("session is nil")
	}
	row, err := fromSession(session)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func fromSession(s *types.ChatSession) (sessionModel, error) {
	row := sessionModel{
		ID:        s.ID,
		Kind:      string(s.Kind),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	var err error
	if row.Participants, err = marshalJSON(nonNil(s.Participants)); err != nil {
		return row, fmt.Errorf("failed to encode participants: %w", err)
	}
	if row.Messages, err = marshalJSON(nonNil(s.Messages)); err != nil {
		return row, fmt.Errorf("failed to encode messages: %w", err)
	}
	if len(s.StatChanges) > 0 {
		if row.StatChanges, err = marshalJSON(s.StatChanges); err != nil {
			return row, fmt.Errorf("failed to encode stat changes: %w", err)
		}
	}
	return row, nil
}

func (m sessionModel) toSession() (types.ChatSession, error) {
	s := types.ChatSession{
		ID:        m.ID,
		Kind:      types.SessionKind(m.Kind),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if err := unmarshalJSON(m.Participants, &s.Participants); err != nil {
		return s, fmt.Errorf("failed to decode participants of %s: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.Messages, &s.Messages); err != nil {
		return s, fmt.Errorf("failed to decode messages of %s: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.StatChanges, &s.StatChanges); err != nil {
		return s, fmt.Errorf("failed to decode stat changes of %s: %w", m.ID, err)
	}
	s.Participants = nonNil(s.Participants)
	s.Messages = nonNil(s.Messages)
	return s, nil
}
