package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

// InstrumentSeed is the TOML shape of one instrument in the seed file.
// Format:
//
//	[IONQ]
//	venue = "NASDAQ"
//	asset_class = "equity"
//	display_name_en = "IonQ Inc"
//	display_name_cn = "艾恩Q"
//	[IONQ.meta]
//	sector = "Technology"
type InstrumentSeed struct {
	Venue         string                `toml:"venue"`
	AssetClass    string                `toml:"asset_class"`
	DisplayNameEN string                `toml:"display_name_en"`
	DisplayNameCN string                `toml:"display_name_cn"`
	Meta          models.InstrumentMeta `toml:"meta"`
}

// LoadInstrumentsFromFile loads the instrument coverage list from a TOML
// file. Existing catalog entries are left untouched.
func (m *Manager) LoadInstrumentsFromFile(ctx context.Context, filePath string) error {
	m.logger.Debug().Str("file", filePath).Msg("Loading instruments from file")

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read instrument seed file: %w", err)
	}

	var seeds map[string]InstrumentSeed
	if err := toml.Unmarshal(content, &seeds); err != nil {
		return fmt.Errorf("failed to parse instrument seed file: %w", err)
	}

	loaded := 0
	skipped := 0
	for symbol, seed := range seeds {
		id := fmt.Sprintf("%s:%s", symbol, seed.Venue)

		if _, err := m.instrument.Get(ctx, id); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, interfaces.ErrNotFound) {
			m.logger.Warn().Err(err).Str("id", id).Msg("Failed to check existing instrument")
			continue
		}

		inst := &models.Instrument{
			ID:            id,
			Symbol:        symbol,
			Venue:         seed.Venue,
			AssetClass:    seed.AssetClass,
			DisplayNameEN: seed.DisplayNameEN,
			DisplayNameCN: seed.DisplayNameCN,
			Meta:          seed.Meta,
		}
		if err := m.instrument.Save(ctx, inst); err != nil {
			m.logger.Warn().Err(err).Str("id", id).Msg("Failed to seed instrument")
			continue
		}
		loaded++
	}

	m.logger.Info().
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Finished loading instruments from file")

	return nil
}

// GlossarySeed is the TOML shape of one glossary term in the seed file.
// Format:
//
//	[margin]
//	cn = "保证金"
//	en = "margin"
//	pinned = true
//	aliases = ["保證金", "margin requirement"]
type GlossarySeed struct {
	CN      string   `toml:"cn"`
	EN      string   `toml:"en"`
	Pinned  bool     `toml:"pinned"`
	Aliases []string `toml:"aliases"`
}

// LoadGlossaryFromFile loads pinned glossary terms from a TOML file.
// Existing terms are left untouched.
func (m *Manager) LoadGlossaryFromFile(ctx context.Context, filePath string) error {
	m.logger.Debug().Str("file", filePath).Msg("Loading glossary from file")

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read glossary seed file: %w", err)
	}

	var seeds map[string]GlossarySeed
	if err := toml.Unmarshal(content, &seeds); err != nil {
		return fmt.Errorf("failed to parse glossary seed file: %w", err)
	}

	loaded := 0
	skipped := 0
	for key, seed := range seeds {
		if _, err := m.glossary.Get(ctx, key); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, interfaces.ErrNotFound) {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to check existing glossary term")
			continue
		}

		term := &models.GlossaryTerm{
			Key:     key,
			CN:      seed.CN,
			EN:      seed.EN,
			Pinned:  seed.Pinned,
			Aliases: seed.Aliases,
		}
		if err := m.glossary.Save(ctx, term); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to seed glossary term")
			continue
		}
		loaded++
	}

	m.logger.Info().
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Finished loading glossary from file")

	return nil
}
