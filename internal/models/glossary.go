package models

import "time"

// GlossaryTerm is a domain vocabulary entry. Pinned terms must never vary
// from their canonical form when translated.
type GlossaryTerm struct {
	Key     string   `json:"key" toml:"-"`
	CN      string   `json:"cn" toml:"cn"`
	EN      string   `json:"en" toml:"en"`
	Pinned  bool     `json:"pinned" toml:"pinned"`
	Aliases []string `json:"aliases" toml:"aliases"`
}

// TranslationMemoryEntry caches a previously produced translation, keyed by
// (SrcText, SrcLang, DstLang). Hits counts repeat lookups; it is advisory.
type TranslationMemoryEntry struct {
	SrcText   string    `json:"src_text"`
	SrcLang   Locale    `json:"src_lang"`
	DstLang   Locale    `json:"dst_lang"`
	DstText   string    `json:"dst_text"`
	Hits      int       `json:"hits"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryKey returns the unique storage key for the entry.
func (e *TranslationMemoryEntry) MemoryKey() string {
	return string(e.SrcLang) + "|" + string(e.DstLang) + "|" + e.SrcText
}
