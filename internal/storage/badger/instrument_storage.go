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

// InstrumentStorage implements the InstrumentStorage interface for Badger
type InstrumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInstrumentStorage creates a new InstrumentStorage instance
func NewInstrumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InstrumentStorage {
	return &InstrumentStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves an instrument by its SYMBOL:VENUE id
func (s *InstrumentStorage) Get(ctx context.Context, id string) (*models.Instrument, error) {
	var inst models.Instrument
	err := s.db.Store().Get(id, &inst)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}
	return &inst, nil
}

// GetBySymbol retrieves an instrument by bare symbol (case-insensitive)
func (s *InstrumentStorage) GetBySymbol(ctx context.Context, symbol string) (*models.Instrument, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var results []models.Instrument
	err := s.db.Store().Find(&results, badgerhold.Where("Symbol").Eq(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to find instrument by symbol: %w", err)
	}
	if len(results) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &results[0], nil
}

// List returns the full instrument catalog
func (s *InstrumentStorage) List(ctx context.Context) ([]models.Instrument, error) {
	var instruments []models.Instrument
	if err := s.db.Store().Find(&instruments, nil); err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return instruments, nil
}

// ListByAssetClass returns a bounded candidate pool filtered by asset class,
// excluding the given symbols
func (s *InstrumentStorage) ListByAssetClass(ctx context.Context, assetClasses []string, exclude map[string]bool, limit int) ([]models.Instrument, error) {
	classes := make([]interface{}, 0, len(assetClasses))
	for _, ac := range assetClasses {
		classes = append(classes, ac)
	}

	var instruments []models.Instrument
	err := s.db.Store().Find(&instruments, badgerhold.Where("AssetClass").In(classes...))
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments by asset class: %w", err)
	}

	filtered := make([]models.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if exclude[inst.Symbol] {
			continue
		}
		filtered = append(filtered, inst)
		if limit > 0 && len(filtered) >= limit {
			break
		}
	}
	return filtered, nil
}

// Save inserts or updates an instrument keyed by SYMBOL:VENUE
func (s *InstrumentStorage) Save(ctx context.Context, inst *models.Instrument) error {
	if inst.ID == "" {
		inst.ID = fmt.Sprintf("%s:%s", inst.Symbol, inst.Venue)
	}
	if err := s.db.Store().Upsert(inst.ID, inst); err != nil {
		return fmt.Errorf("failed to save instrument: %w", err)
	}
	return nil
}
