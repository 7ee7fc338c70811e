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

// MemoryStorage implements the TranslationMemoryStorage interface for Badger.
// Entries are keyed by (src text, src locale, dst locale); Insert gives the
// insert-if-absent semantics concurrent ingests rely on.
type MemoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMemoryStorage creates a new MemoryStorage instance
func NewMemoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TranslationMemoryStorage {
	return &MemoryStorage{
		db:     db,
		logger: logger,
	}
}

func memoryKey(srcText string, srcLang, dstLang models.Locale) string {
	entry := models.TranslationMemoryEntry{SrcText: srcText, SrcLang: srcLang, DstLang: dstLang}
	return entry.MemoryKey()
}

// Lookup retrieves the cached translation for the exact key
func (s *MemoryStorage) Lookup(ctx context.Context, srcText string, srcLang, dstLang models.Locale) (*models.TranslationMemoryEntry, error) {
	var entry models.TranslationMemoryEntry
	err := s.db.Store().Get(memoryKey(srcText, srcLang, dstLang), &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up translation memory: %w", err)
	}
	return &entry, nil
}

// IncrementHits bumps the hit counter for an existing entry. Hit counts are
// advisory; a lost increment under concurrent ingests is acceptable.
func (s *MemoryStorage) IncrementHits(ctx context.Context, srcText string, srcLang, dstLang models.Locale) error {
	key := memoryKey(srcText, srcLang, dstLang)

	var entry models.TranslationMemoryEntry
	err := s.db.Store().Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get translation memory entry: %w", err)
	}

	entry.Hits++
	if err := s.db.Store().Update(key, &entry); err != nil {
		return fmt.Errorf("failed to update hit count: %w", err)
	}
	return nil
}

// InsertIfAbsent stores a new entry unless one already exists for the key.
// An existing entry's stored translation is never overwritten.
func (s *MemoryStorage) InsertIfAbsent(ctx context.Context, entry *models.TranslationMemoryEntry) error {
	if entry.Hits == 0 {
		entry.Hits = 1
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := s.db.Store().Insert(entry.MemoryKey(), entry)
	if err == badgerhold.ErrKeyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert translation memory entry: %w", err)
	}
	return nil
}
