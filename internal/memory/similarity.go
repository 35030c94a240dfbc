package memory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easeaico/companion-house/internal/types"
)

// SearchSimilarMemories embeds query and returns the character's stored memories closest to it.
// Index hits for memories that were since evicted are skipped.
func (s *Service) SearchSimilarMemories(ctx context.Context, characterID, query string, topK int) ([]types.CharacterMemory, error) {
	if s.embedder == nil || s.index == nil {
		return nil, fmt.Errorf("similarity search not configured")
	}
	if query == "" {
		return []types.CharacterMemory{}, nil
	}
	if topK <= 0 {
		topK = defaultRecallLimit
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	hits, err := s.index.SearchSimilar(ctx, characterID, vec, topK, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}

	character, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return []types.CharacterMemory{}, nil
	}
	byID := make(map[string]types.CharacterMemory, len(character.Memories))
	for _, mem := range character.Memories {
		byID[mem.ID] = mem
	}

	out := make([]types.CharacterMemory, 0, len(hits))
	for _, hit := range hits {
		if mem, ok := byID[hit.MemoryID]; ok {
			out = append(out, mem)
		}
	}
	return out, nil
}

// indexMemories embeds the added memories that survived the cap and drops evicted ones
// from the index. Failures only cost recall quality, so they are logged.
func (s *Service) indexMemories(ctx context.Context, characterID string, added, kept []types.CharacterMemory, evicted bool) {
	if s.embedder == nil || s.index == nil {
		return
	}

	keptIDs := make(map[string]struct{}, len(kept))
	ids := make([]string, 0, len(kept))
	for _, mem := range kept {
		keptIDs[mem.ID] = struct{}{}
		ids = append(ids, mem.ID)
	}

	for _, mem := range added {
		if _, ok := keptIDs[mem.ID]; !ok {
			continue
		}
		vec, err := s.embedder.EmbedDocument(ctx, mem.Content)
		if err != nil {
			slog.Warn("failed to embed memory", "character_id", characterID, "memory_id", mem.ID, "error", err.Error())
			continue
		}
		if err := s.index.IndexMemory(ctx, characterID, mem, vec); err != nil {
			slog.Warn("failed to index memory", "character_id", characterID, "memory_id", mem.ID, "error", err.Error())
		}
	}

	if evicted {
		if err := s.index.PruneMemories(ctx, characterID, ids); err != nil {
			slog.Warn("failed to prune memory index", "character_id", characterID, "error", err.Error())
		}
	}
}
