package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/companion-house/internal/types"
)

// HouseRepo loads a house with its roster and applies a cleanup atomically.
type HouseRepo interface {
	GetHouse(ctx context.Context, id string) (*types.House, error)
	ApplyCleanup(ctx context.Context, house *types.House, removedIDs []string) error
}

// Service runs duplicate cleanup against stored houses.
type Service struct {
	houses HouseRepo
	now    func() time.Time
	newID  func() string
}

// NewService returns a cleanup service backed by houses.
func NewService(houses HouseRepo) *Service {
	return &Service{houses: houses, now: time.Now, newID: uuid.NewString}
}

// Cleanup resolves duplicates in the house. With dryRun nothing is written.
func (s *Service) Cleanup(ctx context.Context, houseID string, dryRun bool) (types.DuplicateCleanupResult, error) {
	house, err := s.houses.GetHouse(ctx, houseID)
	if err != nil {
		return types.DuplicateCleanupResult{}, fmt.Errorf("failed to get house: %w", err)
	}

	now := s.now()
	if dryRun {
		return PreviewDuplicateCleanup(*house, now), nil
	}

	cleaned, result := CleanupDuplicateCharactersWithIDs(*house, now, s.newID)
	if result.RemovedCount == 0 {
		return result, nil
	}

	kept := make(map[string]struct{}, len(cleaned.Characters))
	for _, c := range cleaned.Characters {
		kept[c.ID] = struct{}{}
	}
	removed := make([]string, 0, result.RemovedCount)
	for _, group := range result.DuplicateGroups {
		for _, c := range group.RemovedCharacters {
			if !contains(kept, c.ID) && !slices.Contains(removed, c.ID) {
				removed = append(removed, c.ID)
			}
		}
	}
	if err := s.houses.ApplyCleanup(ctx, &cleaned, removed); err != nil {
		return types.DuplicateCleanupResult{}, fmt.Errorf("failed to apply cleanup: %w", err)
	}
	slog.Info("removed duplicate characters", "house_id", houseID, "removed", result.RemovedCount, "kept", result.KeptCount)
	return result, nil
}
