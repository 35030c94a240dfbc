package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/easeaico/companion-house/internal/types"
)

type houseModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Rooms     datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (houseModel) TableName() string {
	return "houses"
}

// HouseRepo stores houses; their rosters live in the characters table.
type HouseRepo struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() string
}

func NewHouseRepo(db *gorm.DB) *HouseRepo {
	return &HouseRepo{db: db, now: time.Now, newID: uuid.NewString}
}

func (r *HouseRepo) CreateHouse(ctx context.Context, house *types.House) error {
	if house == nil {
		return errors.New("house is nil")
	}
	if house.ID == "" {
		house.ID = r.newID()
	}
	now := r.now()
	if house.CreatedAt.IsZero() {
		house.CreatedAt = now
	}
	house.UpdatedAt = now

	rooms, err := marshalJSON(nonNil(house.Rooms))
	if err != nil {
		return fmt.Errorf("failed to encode rooms: %w", err)
	}
	row := houseModel{
		ID:        house.ID,
		Name:      house.Name,
		Rooms:     rooms,
		CreatedAt: house.CreatedAt,
		UpdatedAt: house.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create house: %w", err)
	}
	return nil
}

// GetHouse loads a house with its full roster.
func (r *HouseRepo) GetHouse(ctx context.Context, id string) (*types.House, error) {
	var row houseModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}

	house := types.House{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := unmarshalJSON(row.Rooms, &house.Rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms of %s: %w", row.ID, err)
	}
	house.Rooms = nonNil(house.Rooms)

	var characters []characterModel
	if err := r.db.WithContext(ctx).
		Where("house_id = ?", id).
		Order("created_at ASC").Order("id ASC").
		Find(&characters).Error; err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	roster, err := toCharacters(characters)
	if err != nil {
		return nil, err
	}
	house.Characters = roster
	return &house, nil
}

// ApplyCleanup deletes the removed characters and stores the rewritten rooms in one transaction.
func (r *HouseRepo) ApplyCleanup(ctx context.Context, house *types.House, removedIDs []string) error {
	if house == nil {
		return errors.New("house is nil")
	}
	rooms, err := marshalJSON(nonNil(house.Rooms))
	if err != nil {
		return fmt.Errorf("failed to encode rooms: %w", err)
	}
	updatedAt := house.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(removedIDs) > 0 {
			if err := tx.Where("house_id = ? AND id IN ?", house.ID, removedIDs).
				Delete(&characterModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete duplicates: %w", err)
			}
		}
		res := tx.Model(&houseModel{ID: house.ID}).Updates(map[string]any{
			"rooms":      rooms,
			"updated_at": updatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update house: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}
