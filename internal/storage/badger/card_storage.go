package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CardStorage implements the CardStorage interface for Badger
type CardStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCardStorage creates a new CardStorage instance
func NewCardStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CardStorage {
	return &CardStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a card by ID
func (s *CardStorage) Get(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	err := s.db.Store().Get(id, &card)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// List returns cards ordered by as-of date descending
func (s *CardStorage) List(ctx context.Context, limit, offset int) ([]models.Card, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("AsOf").Reverse()
	if offset > 0 {
		query = query.Skip(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var cards []models.Card
	if err := s.db.Store().Find(&cards, query); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// Save inserts a new card. Card IDs are unique per ingest call; a duplicate
// insert is an error rather than a silent overwrite.
func (s *CardStorage) Save(ctx context.Context, card *models.Card) error {
	now := time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now

	err := s.db.Store().Insert(card.ID, card)
	if err == badgerhold.ErrKeyExists {
		return fmt.Errorf("card %s already exists", card.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// Update overwrites an existing card
func (s *CardStorage) Update(ctx context.Context, card *models.Card) error {
	card.UpdatedAt = time.Now()

	err := s.db.Store().Update(card.ID, card)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

// Delete removes a card by ID
func (s *CardStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Card{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
