// Package dynamics applies relationship changes to stored characters.
package dynamics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/companion-house/internal/progression"
	"github.com/easeaico/companion-house/internal/types"
	"github.com/easeaico/companion-house/internal/utils"
)

// CharacterRepo loads and saves whole characters.
type CharacterRepo interface {
	GetCharacter(ctx context.Context, id string) (*types.Character, error)
	UpdateCharacter(ctx context.Context, character *types.Character) error
}

// Engine updates stats, progression and skills of characters.
type Engine struct {
	characters CharacterRepo
	locks      *utils.KeyedMutex
	now        func() time.Time
	newID      func() string
}

// NewEngine returns an engine backed by characters.
func NewEngine(characters CharacterRepo) *Engine {
	return &Engine{
		characters: characters,
		locks:      utils.NewKeyedMutex(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithLocks shares the per-character write lock with other writers of the same repo.
func (e *Engine) WithLocks(locks *utils.KeyedMutex) *Engine {
	if locks != nil {
		e.locks = locks
	}
	return e
}

// mutate loads the character, backfills its blocks, applies fn and saves it, holding the
// character's lock throughout. A missing character is a no-op.
func (e *Engine) mutate(ctx context.Context, id string, fn func(c *types.Character, stats *types.Stats, prog *types.Progression)) error {
	if e == nil || e.characters == nil {
		return fmt.Errorf("dynamics engine not configured")
	}
	unlock := e.locks.Lock(id)
	defer unlock()

	character, err := e.characters.GetCharacter(ctx, id)
	if errors.Is(err, types.ErrNotFound) || (err == nil && character == nil) {
		slog.Debug("character not found, skipping update", "character_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get character: %w", err)
	}

	stats := progression.NormalizeStats(character.Stats)
	prog := progression.EnsureProgression(character.Progression)
	fn(character, &stats, &prog)

	prog.RelationshipStatus = progression.DeriveStatus(prog)
	character.Stats = &stats
	character.Progression = &prog
	character.UpdatedAt = e.now()

	if err := e.characters.UpdateCharacter(ctx, character); err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}
	return nil
}

// UpdateRelationshipStats overwrites the provided progression metrics.
func (e *Engine) UpdateRelationshipStats(ctx context.Context, id string, upd types.RelationshipUpdate) error {
	return e.mutate(ctx, id, func(_ *types.Character, _ *types.Stats, prog *types.Progression) {
		progression.ApplyRelationshipUpdate(prog, upd)
	})
}

// AddRelationshipEvent records a significant event and applies its built-in effect.
func (e *Engine) AddRelationshipEvent(ctx context.Context, id string, in types.EventInput) error {
	return e.mutate(ctx, id, func(_ *types.Character, _ *types.Stats, prog *types.Progression) {
		prog.SignificantEvents = append(prog.SignificantEvents, types.RelationshipEvent{
			ID:          e.newID(),
			Timestamp:   e.now(),
			Type:        in.Type,
			Description: in.Description,
			Impact:      in.Impact,
		})
		switch in.Type {
		case types.EventTrustGain:
			prog.Trust = progression.ClampStat(prog.Trust + 5)
		case types.EventAffectionGain:
			prog.Affection = progression.ClampStat(prog.Affection + 5)
		case types.EventIntimate:
			prog.Intimacy = progression.ClampStat(prog.Intimacy + 10)
		}
	})
}

// AddSexualEvent records a memorable event, raises intimacy and counts the experience.
func (e *Engine) AddSexualEvent(ctx context.Context, id string, in types.EventInput) error {
	return e.mutate(ctx, id, func(_ *types.Character, _ *types.Stats, prog *types.Progression) {
		prog.MemorableEvents = append(prog.MemorableEvents, types.SexualEvent{
			ID:          e.newID(),
			Timestamp:   e.now(),
			Type:        in.Type,
			Description: in.Description,
			Impact:      in.Impact,
		})
		prog.Intimacy = progression.ClampStat(prog.Intimacy + 5)
		prog.SexualExperience++
	})
}

// UpdateRelationshipStatus recomputes the status from the current metrics.
func (e *Engine) UpdateRelationshipStatus(ctx context.Context, id string) error {
	return e.mutate(ctx, id, func(*types.Character, *types.Stats, *types.Progression) {})
}

// UpdateSkills overwrites the provided skills.
func (e *Engine) UpdateSkills(ctx context.Context, id string, upd types.SkillUpdate) error {
	return e.mutate(ctx, id, func(c *types.Character, _ *types.Stats, _ *types.Progression) {
		skills := progression.EnsureSkills(c.Skills)
		set := func(dst *int, v *int) {
			if v != nil {
				*dst = progression.ClampStat(*v)
			}
		}
		set(&skills.Hands, upd.Hands)
		set(&skills.Mouth, upd.Mouth)
		set(&skills.Missionary, upd.Missionary)
		set(&skills.Doggy, upd.Doggy)
		set(&skills.Cowgirl, upd.Cowgirl)
		c.Skills = &skills
	})
}

// GiveGift raises affection by the gift value and happiness by half of it.
func (e *Engine) GiveGift(ctx context.Context, id string, gift types.Gift) error {
	return e.mutate(ctx, id, func(_ *types.Character, stats *types.Stats, prog *types.Progression) {
		prog.Affection = progression.ClampStat(prog.Affection + gift.Value)
		stats.Happiness = progression.ClampStat(stats.Happiness + gift.Value/2)
		prog.SignificantEvents = append(prog.SignificantEvents, types.RelationshipEvent{
			ID:          e.newID(),
			Timestamp:   e.now(),
			Type:        types.EventGift,
			Description: fmt.Sprintf("received %s (%s)", gift.Name, gift.Category),
			Impact:      gift.Value,
		})
	})
}

// AddChronicleEntry appends a chapter to the story chronicle.
func (e *Engine) AddChronicleEntry(ctx context.Context, id string, in types.ChronicleInput) error {
	return e.mutate(ctx, id, func(_ *types.Character, _ *types.Stats, prog *types.Progression) {
		prog.StoryChronicle = append(prog.StoryChronicle, types.ChronicleEntry{
			ID:        e.newID(),
			Timestamp: e.now(),
			Title:     in.Title,
			Content:   in.Content,
			SessionID: in.SessionID,
		})
	})
}

// CheckMilestones marks every newly reached milestone as achieved and unlocks its rewards.
func (e *Engine) CheckMilestones(ctx context.Context, id string) ([]types.SexualMilestone, error) {
	var achieved []types.SexualMilestone
	err := e.mutate(ctx, id, func(_ *types.Character, stats *types.Stats, prog *types.Progression) {
		if len(prog.SexualMilestones) == 0 {
			prog.SexualMilestones = progression.DefaultMilestones()
		}
		for i := range prog.SexualMilestones {
			m := &prog.SexualMilestones[i]
			if m.Achieved || !progression.MilestoneMet(*m, *stats, *prog) {
				continue
			}
			at := e.now()
			m.Achieved = true
			m.AchievedAt = &at
			for _, reward := range m.Rewards {
				prog.UnlockedScenarios = progression.AddTag(prog.UnlockedScenarios, reward)
			}
			prog.RelationshipMilestones = append(prog.RelationshipMilestones, m.Name)
			achieved = append(achieved, *m)
		}
	})
	if err != nil {
		return nil, err
	}
	return achieved, nil
}

// InitializeCharacterDynamics backfills stats, progression and skills and seeds the default
// milestones when none exist. The input is not modified.
func InitializeCharacterDynamics(character types.Character) types.Character {
	stats := progression.NormalizeStats(character.Stats)
	prog := progression.EnsureProgression(character.Progression)
	skills := progression.EnsureSkills(character.Skills)
	if len(prog.SexualMilestones) == 0 {
		prog.SexualMilestones = progression.DefaultMilestones()
	}
	character.Stats = &stats
	character.Progression = &prog
	character.Skills = &skills
	return character
}
