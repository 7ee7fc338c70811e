package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/playbook/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// InstrumentStorage provides access to the tradable instrument catalog.
type InstrumentStorage interface {
	Get(ctx context.Context, id string) (*models.Instrument, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Instrument, error)
	List(ctx context.Context) ([]models.Instrument, error)
	// ListByAssetClass returns a bounded candidate pool, excluding the given
	// symbols. Used by the discovery engine.
	ListByAssetClass(ctx context.Context, assetClasses []string, exclude map[string]bool, limit int) ([]models.Instrument, error)
	Save(ctx context.Context, inst *models.Instrument) error
}

// GlossaryStorage provides read access to the pinned term glossary.
type GlossaryStorage interface {
	Get(ctx context.Context, key string) (*models.GlossaryTerm, error)
	List(ctx context.Context) ([]models.GlossaryTerm, error)
	Save(ctx context.Context, term *models.GlossaryTerm) error
}

// TranslationMemoryStorage caches produced translations. Lookup returns
// ErrNotFound on a miss. InsertIfAbsent must be atomic: if an entry already
// exists for the key the call is a no-op and the stored translation wins.
type TranslationMemoryStorage interface {
	Lookup(ctx context.Context, srcText string, srcLang, dstLang models.Locale) (*models.TranslationMemoryEntry, error)
	IncrementHits(ctx context.Context, srcText string, srcLang, dstLang models.Locale) error
	InsertIfAbsent(ctx context.Context, entry *models.TranslationMemoryEntry) error
}

// CardStorage persists playbook cards.
type CardStorage interface {
	Get(ctx context.Context, id string) (*models.Card, error)
	List(ctx context.Context, limit, offset int) ([]models.Card, error)
	Save(ctx context.Context, card *models.Card) error
	Update(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id string) error
}

// TriggerStorage persists trigger rules and the alert events they fire.
type TriggerStorage interface {
	SaveRule(ctx context.Context, rule *models.TriggerRule) error
	GetRule(ctx context.Context, id string) (*models.TriggerRule, error)
	ListActiveRules(ctx context.Context) ([]models.TriggerRule, error)
	ListRulesByCard(ctx context.Context, cardID string) ([]models.TriggerRule, error)
	UpdateRule(ctx context.Context, rule *models.TriggerRule) error
	SaveAlert(ctx context.Context, alert *models.AlertEvent) error
	ListAlerts(ctx context.Context, limit int) ([]models.AlertEvent, error)
}

// PositionStorage persists paper portfolio positions.
type PositionStorage interface {
	Get(ctx context.Context, id string) (*models.Position, error)
	List(ctx context.Context, includeClosed bool) ([]models.Position, error)
	Save(ctx context.Context, pos *models.Position) error
	Update(ctx context.Context, pos *models.Position) error
}

// StorageManager aggregates all storage interfaces behind one lifecycle.
type StorageManager interface {
	InstrumentStorage() InstrumentStorage
	GlossaryStorage() GlossaryStorage
	TranslationMemoryStorage() TranslationMemoryStorage
	CardStorage() CardStorage
	TriggerStorage() TriggerStorage
	PositionStorage() PositionStorage
	Close() error
}
