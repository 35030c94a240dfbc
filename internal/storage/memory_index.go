package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/easeaico/companion-house/internal/types"
)

// MemoryIndex keeps pgvector embeddings of character memories in memory_embeddings.
// The table is created by migrations/001_memory_embeddings.sql.
type MemoryIndex struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMemoryIndex(db *gorm.DB) *MemoryIndex {
	return &MemoryIndex{db: db, now: time.Now}
}

// IndexMemory upserts the embedding of one memory.
func (i *MemoryIndex) IndexMemory(ctx context.Context, characterID string, mem types.CharacterMemory, embedding []float32) error {
	if len(embedding) == 0 {
		return nil
	}
	err := i.db.WithContext(ctx).Exec(`
		INSERT INTO memory_embeddings (memory_id, character_id, content, importance, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (memory_id) DO UPDATE
		SET content = EXCLUDED.content,
		    importance = EXCLUDED.importance,
		    embedding = EXCLUDED.embedding`,
		mem.ID, characterID, mem.Content, string(mem.Importance), pgvector.NewVector(embedding), i.now(),
	).Error
	if err != nil {
		return fmt.Errorf("failed to index memory: %w", err)
	}
	return nil
}

// SearchSimilar returns the character's memories whose cosine similarity exceeds threshold.
func (i *MemoryIndex) SearchSimilar(ctx context.Context, characterID string, embedding []float32, topK int, threshold float64) ([]types.SimilarMemory, error) {
	if len(embedding) == 0 || topK <= 0 {
		return nil, nil
	}

	var results []types.SimilarMemory
	if err := i.db.WithContext(ctx).Raw(`
		SELECT memory_id, content, 1 - (embedding <=> $1) AS similarity
		FROM memory_embeddings
		WHERE character_id = $2 AND 1 - (embedding <=> $1) > $3
		ORDER BY embedding <=> $1
		LIMIT $4`,
		pgvector.NewVector(embedding), characterID, threshold, topK,
	).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar memories: %w", err)
	}
	return results, nil
}

// PruneMemories drops embeddings of memories the character no longer holds.
func (i *MemoryIndex) PruneMemories(ctx context.Context, characterID string, keepIDs []string) error {
	q := i.db.WithContext(ctx)
	var err error
	if len(keepIDs) == 0 {
		err = q.Exec(`DELETE FROM memory_embeddings WHERE character_id = ?`, characterID).Error
	} else {
		err = q.Exec(`DELETE FROM memory_embeddings WHERE character_id = ? AND memory_id NOT IN ?`, characterID, keepIDs).Error
	}
	if err != nil {
		return fmt.Errorf("failed to prune memory embeddings: %w", err)
	}
	return nil
}
