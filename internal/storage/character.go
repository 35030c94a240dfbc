package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/easeaico/companion-house/internal/dedupe"
	"github.com/easeaico/companion-house/internal/progression"
	"github.com/easeaico/companion-house/internal/types"
)

type characterModel struct {
	ID                  string `gorm:"primaryKey"`
	HouseID             string `gorm:"index"`
	Name                string
	NameKey             string `gorm:"index"`
	Description         string
	Personality         string
	Appearance          string
	Scenario            string
	FirstMessage        string
	Stats               datatypes.JSON
	Progression         datatypes.JSON
	Skills              datatypes.JSON
	Memories            datatypes.JSON
	ConversationHistory datatypes.JSON
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (characterModel) TableName() string {
	return "characters"
}

// updatableCharacterColumns excludes house_id and created_at, which only change on create.
var updatableCharacterColumns = []string{
	"name", "name_key", "description", "personality", "appearance", "scenario", "first_message",
	"stats", "progression", "skills", "memories", "conversation_history", "updated_at",
}

// CharacterRepo stores characters with their relationship state as JSON columns.
type CharacterRepo struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() string
}

func NewCharacterRepo(db *gorm.DB) *CharacterRepo {
	return &CharacterRepo{db: db, now: time.Now, newID: uuid.NewString}
}

// ListCharacters returns the characters of a house, or every character when houseID is empty.
func (r *CharacterRepo) ListCharacters(ctx context.Context, houseID string) ([]types.Character, error) {
	var rows []characterModel
	q := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if houseID != "" {
		q = q.Where("house_id = ?", houseID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return toCharacters(rows)
}

func (r *CharacterRepo) GetCharacter(ctx context.Context, id string) (*types.Character, error) {
	var row characterModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}
	character, err := row.toCharacter()
	if err != nil {
		return nil, err
	}
	return &character, nil
}

// CreateCharacter inserts a character into a house. Ids and case-folded names must be unique.
func (r *CharacterRepo) CreateCharacter(ctx context.Context, houseID string, character *types.Character) error {
	if character == nil {
		return errors.New("character is nil")
	}
	if character.ID == "" {
		character.ID = r.newID()
	}
	now := r.now()
	if character.CreatedAt.IsZero() {
		character.CreatedAt = now
	}
	character.UpdatedAt = now

	row, err := fromCharacter(houseID, character)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&characterModel{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check character id: %w", err)
		}
		if count > 0 {
			return types.ErrDuplicateID
		}
		if err := tx.Model(&characterModel{}).
			Where("house_id = ? AND name_key = ?", houseID, row.NameKey).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check character name: %w", err)
		}
		if count > 0 {
			return types.ErrDuplicateName
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create character: %w", err)
		}
		return nil
	})
}

func (r *CharacterRepo) UpdateCharacter(ctx context.Context, character *types.Character) error {
	if character == nil {
		return errors.New("character is nil")
	}
	row, err := fromCharacter("", character)
	if err != nil {
		return err
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = r.now()
	}
	res := r.db.WithContext(ctx).
		Model(&characterModel{ID: row.ID}).
		Select(updatableCharacterColumns).
		Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to update character: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *CharacterRepo) DeleteCharacter(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&characterModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete character: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func fromCharacter(houseID string, c *types.Character) (characterModel, error) {
	row := characterModel{
		ID:           c.ID,
		HouseID:      houseID,
		Name:         c.Name,
		NameKey:      dedupe.NameKey(c.Name),
		Description:  c.Description,
		Personality:  c.Personality,
		Appearance:   c.Appearance,
		Scenario:     c.Scenario,
		FirstMessage: c.FirstMessage,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}

	var err error
	if c.Stats != nil {
		if row.Stats, err = marshalJSON(c.Stats); err != nil {
			return row, fmt.Errorf("failed to encode stats: %w", err)
		}
	}
	if c.Progression != nil {
		if row.Progression, err = marshalJSON(c.Progression); err != nil {
			return row, fmt.Errorf("failed to encode progression: %w", err)
		}
	}
	if c.Skills != nil {
		if row.Skills, err = marshalJSON(c.Skills); err != nil {
			return row, fmt.Errorf("failed to encode skills: %w", err)
		}
	}
	if row.Memories, err = marshalJSON(nonNil(c.Memories)); err != nil {
		return row, fmt.Errorf("failed to encode memories: %w", err)
	}
	if row.ConversationHistory, err = marshalJSON(nonNil(c.ConversationHistory)); err != nil {
		return row, fmt.Errorf("failed to encode conversation history: %w", err)
	}
	return row, nil
}

// toCharacter decodes the JSON columns and backfills legacy records with defaults.
func (m characterModel) toCharacter() (types.Character, error) {
	c := types.Character{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Personality:  m.Personality,
		Appearance:   m.Appearance,
		Scenario:     m.Scenario,
		FirstMessage: m.FirstMessage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if len(m.Stats) > 0 {
		var partial types.PartialStats
		if err := unmarshalJSON(m.Stats, &partial); err != nil {
			return c, fmt.Errorf("failed to decode stats of %s: %w", m.ID, err)
		}
		stats := progression.EnsureStats(&partial)
		c.Stats = &stats
	}
	if len(m.Progression) > 0 {
		var prog types.Progression
		if err := unmarshalJSON(m.Progression, &prog); err != nil {
			return c, fmt.Errorf("failed to decode progression of %s: %w", m.ID, err)
		}
		ensured := progression.EnsureProgression(&prog)
		c.Progression = &ensured
	}
	if len(m.Skills) > 0 {
		var skills types.Skills
		if err := unmarshalJSON(m.Skills, &skills); err != nil {
			return c, fmt.Errorf("failed to decode skills of %s: %w", m.ID, err)
		}
		ensured := progression.EnsureSkills(&skills)
		c.Skills = &ensured
	}
	if err := unmarshalJSON(m.Memories, &c.Memories); err != nil {
		return c, fmt.Errorf("failed to decode memories of %s: %w", m.ID, err)
	}
	if err := unmarshalJSON(m.ConversationHistory, &c.ConversationHistory); err != nil {
		return c, fmt.Errorf("failed to decode conversation history of %s: %w", m.ID, err)
	}
	c.Memories = nonNil(c.Memories)
	c.ConversationHistory = nonNil(c.ConversationHistory)
	return c, nil
}

func toCharacters(rows []characterModel) ([]types.Character, error) {
	out := make([]types.Character, 0, len(rows))
	for _, row := range rows {
		c, err := row.toCharacter()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
