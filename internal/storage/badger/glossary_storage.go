package badger

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// GlossaryStorage implements the GlossaryStorage interface for Badger
type GlossaryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewGlossaryStorage creates a new GlossaryStorage instance
func NewGlossaryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.GlossaryStorage {
	return &GlossaryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *GlossaryStorage) normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get retrieves a glossary term by key (case-insensitive)
func (s *GlossaryStorage) Get(ctx context.Context, key string) (*models.GlossaryTerm, error) {
	var term models.GlossaryTerm
	err := s.db.Store().Get("gloss_"+s.normalizeKey(key), &term)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get glossary term: %w", err)
	}
	return &term, nil
}

// List returns all glossary terms
func (s *GlossaryStorage) List(ctx context.Context) ([]models.GlossaryTerm, error) {
	var terms []models.GlossaryTerm
	if err := s.db.Store().Find(&terms, nil); err != nil {
		return nil, fmt.Errorf("failed to list glossary terms: %w", err)
	}
	return terms, nil
}

// Save inserts or updates a glossary term
func (s *GlossaryStorage) Save(ctx context.Context, term *models.GlossaryTerm) error {
	term.Key = s.normalizeKey(term.Key)
	if err := s.db.Store().Upsert("gloss_"+term.Key, term); err != nil {
		return fmt.Errorf("failed to save glossary term: %w", err)
	}
	return nil
}
