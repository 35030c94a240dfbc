// Package storage persists the companion house in PostgreSQL through gorm.
package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store holds the DB handle and repositories.
type Store struct {
	db          *gorm.DB
	Characters  *CharacterRepo
	Sessions    *SessionRepo
	Houses      *HouseRepo
	Summaries   *SummaryRepo
	MemoryIndex *MemoryIndex
}

// NewStore connects to PostgreSQL.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	return Open(ctx, postgres.Open(databaseURL))
}

// Open builds a store on any gorm dialector and checks the connection.
func Open(ctx context.Context, dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:          db,
		Characters:  NewCharacterRepo(db),
		Sessions:    NewSessionRepo(db),
		Houses:      NewHouseRepo(db),
		Summaries:   NewSummaryRepo(db),
		MemoryIndex: NewMemoryIndex(db),
	}, nil
}

// AutoMigrate creates or updates the application tables. The vector index table is managed by
// the SQL migrations because it needs the pgvector extension.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&houseModel{},
		&characterModel{},
		&sessionModel{},
		&summaryModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}

// Exec runs a raw SQL script, used for the SQL migrations.
func (s *Store) Exec(ctx context.Context, sql string) error {
	if err := s.db.WithContext(ctx).Exec(sql).Error; err != nil {
		return fmt.Errorf("failed to exec sql: %w", err)
	}
	return nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
