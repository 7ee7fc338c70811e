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

// TriggerStorage implements the TriggerStorage interface for Badger
type TriggerStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTriggerStorage creates a new TriggerStorage instance
func NewTriggerStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TriggerStorage {
	return &TriggerStorage{
		db:     db,
		logger: logger,
	}
}

// SaveRule inserts or updates a trigger rule
func (s *TriggerStorage) SaveRule(ctx context.Context, rule *models.TriggerRule) error {
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	if rule.Status == "" {
		rule.Status = models.TriggerStatusActive
	}
	if err := s.db.Store().Upsert(rule.ID, rule); err != nil {
		return fmt.Errorf("failed to save trigger rule: %w", err)
	}
	return nil
}

// GetRule retrieves a trigger rule by ID
func (s *TriggerStorage) GetRule(ctx context.Context, id string) (*models.TriggerRule, error) {
	var rule models.TriggerRule
	err := s.db.Store().Get(id, &rule)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trigger rule: %w", err)
	}
	return &rule, nil
}

// ListActiveRules returns all rules in "active" status
func (s *TriggerStorage) ListActiveRules(ctx context.Context) ([]models.TriggerRule, error) {
	var rules []models.TriggerRule
	err := s.db.Store().Find(&rules, badgerhold.Where("Status").Eq(models.TriggerStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list active trigger rules: %w", err)
	}
	return rules, nil
}

// ListRulesByCard returns all rules attached to a card
func (s *TriggerStorage) ListRulesByCard(ctx context.Context, cardID string) ([]models.TriggerRule, error) {
	var rules []models.TriggerRule
	err := s.db.Store().Find(&rules, badgerhold.Where("CardID").Eq(cardID))
	if err != nil {
		return nil, fmt.Errorf("failed to list trigger rules for card: %w", err)
	}
	return rules, nil
}

// UpdateRule overwrites an existing trigger rule
func (s *TriggerStorage) UpdateRule(ctx context.Context, rule *models.TriggerRule) error {
	err := s.db.Store().Update(rule.ID, rule)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update trigger rule: %w", err)
	}
	return nil
}

// SaveAlert records a fired alert event
func (s *TriggerStorage) SaveAlert(ctx context.Context, alert *models.AlertEvent) error {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	if err := s.db.Store().Upsert(alert.ID, alert); err != nil {
		return fmt.Errorf("failed to save alert event: %w", err)
	}
	return nil
}

// ListAlerts returns alert events newest first
func (s *TriggerStorage) ListAlerts(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []models.AlertEvent
	if err := s.db.Store().Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list alert events: %w", err)
	}
	return alerts, nil
}
