// Package memory extracts long term memories from conversations and recalls them later.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/companion-house/internal/types"
	"github.com/easeaico/companion-house/internal/utils"
)

const (
	DefaultCapacity     = 50
	DefaultContextLimit = 3
	defaultRecallLimit  = 5
	maxExtracted        = 3
)

// CharacterRepo loads and saves whole characters.
type CharacterRepo interface {
	GetCharacter(ctx context.Context, id string) (*types.Character, error)
	UpdateCharacter(ctx context.Context, character *types.Character) error
}

// TextGenerator is the single call the memory service makes to a language model.
type TextGenerator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// MemoryIndex stores memory embeddings for similarity recall.
type MemoryIndex interface {
	IndexMemory(ctx context.Context, characterID string, mem types.CharacterMemory, embedding []float32) error
	SearchSimilar(ctx context.Context, characterID string, embedding []float32, topK int, threshold float64) ([]types.SimilarMemory, error)
	PruneMemories(ctx context.Context, characterID string, keepIDs []string) error
}

// Service owns the memory list of every character.
type Service struct {
	characters   CharacterRepo
	llm          TextGenerator
	embedder     Embedder
	index        MemoryIndex
	locks        *utils.KeyedMutex
	capacity     int
	contextLimit int
	threshold    float64
	now          func() time.Time
	newID        func() string
}

// NewService returns a memory service. Non-positive capacity or contextLimit use the defaults.
func NewService(characters CharacterRepo, llm TextGenerator, capacity, contextLimit int) *Service {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if contextLimit <= 0 {
		contextLimit = DefaultContextLimit
	}
	return &Service{
		characters:   characters,
		llm:          llm,
		locks:        utils.NewKeyedMutex(),
		capacity:     capacity,
		contextLimit: contextLimit,
		threshold:    0.7,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// WithVectorIndex enables similarity recall. Memories kept by AddMemories are embedded and indexed.
func (s *Service) WithVectorIndex(embedder Embedder, index MemoryIndex, threshold float64) *Service {
	s.embedder = embedder
	s.index = index
	if threshold > 0 {
		s.threshold = threshold
	}
	return s
}

// WithLocks shares the per-character write lock with other writers of the same repo.
func (s *Service) WithLocks(locks *utils.KeyedMutex) *Service {
	if locks != nil {
		s.locks = locks
	}
	return s
}

func (s *Service) loadCharacter(ctx context.Context, characterID string) (*types.Character, error) {
	if s.characters == nil {
		return nil, fmt.Errorf("character repo is nil")
	}
	character, err := s.characters.GetCharacter(ctx, characterID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return character, nil
}

// AddMemories merges memories into the character's list, keeps the list ordered by importance
// then recency and evicts everything past the capacity.
func (s *Service) AddMemories(ctx context.Context, characterID string, memories []types.CharacterMemory) error {
	if len(memories) == 0 {
		return nil
	}
	unlock := s.locks.Lock(characterID)
	defer unlock()

	character, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return err
	}
	if character == nil {
		slog.Debug("character not found, dropping memories", "character_id", characterID, "count", len(memories))
		return nil
	}

	merged := make([]types.CharacterMemory, 0, len(character.Memories)+len(memories))
	merged = append(merged, character.Memories...)
	merged = append(merged, memories...)
	SortMemories(merged)
	evicted := len(merged) > s.capacity
	if evicted {
		merged = merged[:s.capacity]
	}

	character.Memories = merged
	character.UpdatedAt = s.now()
	if err := s.characters.UpdateCharacter(ctx, character); err != nil {
		return fmt.Errorf("failed to update character memories: %w", err)
	}

	s.indexMemories(ctx, characterID, memories, merged, evicted)
	return nil
}

// SortMemories orders memories by importance, newest first within the same importance.
func SortMemories(memories []types.CharacterMemory) {
	slices.SortStableFunc(memories, func(a, b types.CharacterMemory) int {
		if c := cmp.Compare(b.Importance.Weight(), a.Importance.Weight()); c != 0 {
			return c
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// ProcessConversationMemories extracts memories from session and stores them. Failures are
// logged and never returned.
func (s *Service) ProcessConversationMemories(ctx context.Context, characterID string, session *types.ChatSession) {
	character, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		slog.Error("failed to load character for memories", "character_id", characterID, "error", err.Error())
		return
	}
	if character == nil {
		return
	}

	memories := s.AnalyzeConversationForMemories(ctx, characterID, session, character)
	if len(memories) == 0 {
		return
	}
	if err := s.AddMemories(ctx, characterID, memories); err != nil {
		slog.Error("failed to store conversation memories", "character_id", characterID, "error", err.Error())
		return
	}
	slog.Info("stored conversation memories", "character_id", characterID, "session_id", session.ID, "count", len(memories))
}
