package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PositionStorage implements the PositionStorage interface for Badger
type PositionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPositionStorage creates a new PositionStorage instance
func NewPositionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PositionStorage {
	return &PositionStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a position by ID
func (s *PositionStorage) Get(ctx context.Context, id string) (*models.Position, error) {
	var pos models.Position
	err := s.db.Store().Get(id, &pos)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &pos, nil
}

// List returns positions ordered by opened date descending
func (s *PositionStorage) List(ctx context.Context, includeClosed bool) ([]models.Position, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("OpenedAt").Reverse()
	if !includeClosed {
		query = badgerhold.Where("Status").Eq(models.PositionStatusOpen).SortBy("OpenedAt").Reverse()
	}

	var positions []models.Position
	if err := s.db.Store().Find(&positions, query); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// Save inserts a new position
func (s *PositionStorage) Save(ctx context.Context, pos *models.Position) error {
	if err := s.db.Store().Insert(pos.ID, pos); err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// Update overwrites an existing position
func (s *PositionStorage) Update(ctx context.Context, pos *models.Position) error {
	err := s.db.Store().Update(pos.ID, pos)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	return nil
}
