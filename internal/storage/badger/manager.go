package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	instrument interfaces.InstrumentStorage
	glossary   interfaces.GlossaryStorage
	memory     interfaces.TranslationMemoryStorage
	card       interfaces.CardStorage
	trigger    interfaces.TriggerStorage
	position   interfaces.PositionStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		instrument: NewInstrumentStorage(db, logger),
		glossary:   NewGlossaryStorage(db, logger),
		memory:     NewMemoryStorage(db, logger),
		card:       NewCardStorage(db, logger),
		trigger:    NewTriggerStorage(db, logger),
		position:   NewPositionStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// InstrumentStorage returns the instrument catalog storage interface
func (m *Manager) InstrumentStorage() interfaces.InstrumentStorage {
	return m.instrument
}

// GlossaryStorage returns the glossary storage interface
func (m *Manager) GlossaryStorage() interfaces.GlossaryStorage {
	return m.glossary
}

// TranslationMemoryStorage returns the translation memory storage interface
func (m *Manager) TranslationMemoryStorage() interfaces.TranslationMemoryStorage {
	return m.memory
}

// CardStorage returns the card storage interface
func (m *Manager) CardStorage() interfaces.CardStorage {
	return m.card
}

// TriggerStorage returns the trigger rule / alert storage interface
func (m *Manager) TriggerStorage() interfaces.TriggerStorage {
	return m.trigger
}

// PositionStorage returns the position storage interface
func (m *Manager) PositionStorage() interfaces.PositionStorage {
	return m.position
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
