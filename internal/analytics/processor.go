package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/easeaico/companion-house/internal/dynamics"
	"github.com/easeaico/companion-house/internal/types"
	"github.com/easeaico/companion-house/internal/utils"
)

const (
	previousSummaryLimit = 3
	participantWorkers   = 4
)

// SessionRepo loads a chat session.
type SessionRepo interface {
	GetSession(ctx context.Context, id string) (*types.ChatSession, error)
}

// CharacterReader loads a character.
type CharacterReader interface {
	GetCharacter(ctx context.Context, id string) (*types.Character, error)
}

// SummaryRepo persists conversation summaries. A saved summary marks the
// (session, character) pair as processed.
type SummaryRepo interface {
	ListSummaries(ctx context.Context, characterID string, limit int) ([]types.ConversationSummary, error)
	SaveSummary(ctx context.Context, summary *types.ConversationSummary) error
	HasSummary(ctx context.Context, sessionID, characterID string) (bool, error)
}

// MemoryProcessor extracts memories from a session for one character.
type MemoryProcessor interface {
	ProcessConversationMemories(ctx context.Context, characterID string, session *types.ChatSession)
}

// RelationshipUpdater applies the relationship effects of a conversation.
type RelationshipUpdater interface {
	ApplyConversationTone(ctx context.Context, id string, tone dynamics.Tone) error
	AddChronicleEntry(ctx context.Context, id string, in types.ChronicleInput) error
	CheckMilestones(ctx context.Context, id string) ([]types.SexualMilestone, error)
	UpdateRelationshipStatus(ctx context.Context, id string) error
}

// ConversationProcessor runs summarization, memory extraction and relationship updates for
// every participant of a finished session.
type ConversationProcessor struct {
	sessions     SessionRepo
	characters   CharacterReader
	summaries    SummaryRepo
	summarizer   Summarizer
	memories     MemoryProcessor
	relationship RelationshipUpdater
	inflight     *utils.KeyedMutex
	now          func() time.Time
	newID        func() string
}

// NewConversationProcessor wires the pipeline.
func NewConversationProcessor(sessions SessionRepo, characters CharacterReader, summaries SummaryRepo, summarizer Summarizer, memories MemoryProcessor, relationship RelationshipUpdater) *ConversationProcessor {
	return &ConversationProcessor{
		sessions:     sessions,
		characters:   characters,
		summaries:    summaries,
		summarizer:   summarizer,
		memories:     memories,
		relationship: relationship,
		inflight:     utils.NewKeyedMutex(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Process analyzes the session. A session that no longer exists is treated as done.
// Participants already summarized for this session are skipped, so a retry after a
// partial failure only redoes the characters that failed.
func (p *ConversationProcessor) Process(ctx context.Context, sessionID string) error {
	session, err := p.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, types.ErrNotFound) {
		slog.Info("session gone, skipping analytics", "session_id", sessionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(participantWorkers)
	for _, characterID := range participants(session) {
		g.Go(func() error {
			if err := p.processCharacter(ctx, characterID, session); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("character %s: %w", characterID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// participants returns the session's characters, falling back to the assistant senders.
func participants(session *types.ChatSession) []string {
	if len(session.Participants) > 0 {
		return session.Participants
	}
	var ids []string
	for _, m := range session.Messages {
		if m.Role != types.RoleUser && m.SenderID != "" && !slices.Contains(ids, m.SenderID) {
			ids = append(ids, m.SenderID)
		}
	}
	return ids
}

func (p *ConversationProcessor) processCharacter(ctx context.Context, characterID string, session *types.ChatSession) error {
	unlock := p.inflight.Lock(characterID)
	defer unlock()

	done, err := p.summaries.HasSummary(ctx, session.ID, characterID)
	if err != nil {
		return fmt.Errorf("failed to check summary: %w", err)
	}
	if done {
		slog.Debug("session already processed for character", "character_id", characterID, "session_id", session.ID)
		return nil
	}

	character, err := p.characters.GetCharacter(ctx, characterID)
	if errors.Is(err, types.ErrNotFound) {
		slog.Info("character gone, skipping analytics", "character_id", characterID, "session_id", session.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get character: %w", err)
	}

	var previous []string
	prior, err := p.summaries.ListSummaries(ctx, characterID, previousSummaryLimit)
	if err != nil {
		slog.Warn("failed to load previous summaries", "character_id", characterID, "error", err.Error())
	}
	for _, s := range prior {
		previous = append(previous, s.Summary)
	}

	summary, err := p.summarizer.Summarize(ctx, character, session, previous)
	if err != nil {
		return fmt.Errorf("failed to summarize conversation: %w", err)
	}
	summary.ID = p.newID()
	summary.CreatedAt = p.now()
	if err := p.summaries.SaveSummary(ctx, &summary); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	if p.memories != nil {
		p.memories.ProcessConversationMemories(ctx, characterID, session)
	}

	tone := dynamics.ParseTone(summary.EmotionalTone)
	if summary.EmotionalTone == "" {
		tone = KeywordTone(session.Messages)
	}
	if err := p.relationship.ApplyConversationTone(ctx, characterID, tone); err != nil {
		return fmt.Errorf("failed to apply conversation tone: %w", err)
	}

	if err := p.relationship.AddChronicleEntry(ctx, characterID, types.ChronicleInput{
		Title:     fmt.Sprintf("%s, %s", character.Name, summary.CreatedAt.Format("January 2, 2006")),
		Content:   summary.Summary,
		SessionID: session.ID,
	}); err != nil {
		return fmt.Errorf("failed to add chronicle entry: %w", err)
	}

	achieved, err := p.relationship.CheckMilestones(ctx, characterID)
	if err != nil {
		slog.Warn("failed to check milestones", "character_id", characterID, "error", err.Error())
	}
	for _, m := range achieved {
		slog.Info("milestone achieved", "character_id", characterID, "milestone", m.ID)
	}

	if err := p.relationship.UpdateRelationshipStatus(ctx, characterID); err != nil {
		return fmt.Errorf("failed to update relationship status: %w", err)
	}
	return nil
}
