package models

import "time"

// Trigger kinds understood by the trigger engine.
const (
	TriggerPriceLevel  = "price_level"
	TriggerDrawdownPct = "drawdown_pct"
	TriggerMACross     = "ma_cross"
	TriggerTimeStop    = "time_stop"
	TriggerEvent       = "event"
)

// TriggerExpr is a trigger or invalidator expression attached to a card.
// The fields used depend on Kind; unused fields stay at their zero value.
type TriggerExpr struct {
	Kind string `json:"kind" validate:"required,oneof=price_level drawdown_pct ma_cross time_stop event"`

	// price_level
	Symbol string  `json:"symbol,omitempty"`
	Op     string  `json:"op,omitempty"` // ">=", "<=", ">", "<"
	Level  float64 `json:"level,omitempty"`

	// drawdown_pct
	Pct        float64 `json:"pct,omitempty"`
	WindowDays int     `json:"window_days,omitempty"`

	// ma_cross
	ShortWindow int    `json:"short_window,omitempty"`
	LongWindow  int    `json:"long_window,omitempty"`
	Direction   string `json:"direction,omitempty"` // "up" or "down"

	// time_stop
	Days int `json:"days,omitempty"`

	// event
	EventType string `json:"event_type,omitempty"`

	// Natural-language renderings for display
	NLCN string `json:"nl_cn,omitempty"`
	NLEN string `json:"nl_en,omitempty"`
}

// QuoteRef is a supporting quote lifted from the transcript, with its 0-based
// sentence index for provenance.
type QuoteRef struct {
	Quote     string `json:"quote"`
	SourceLoc string `json:"source_loc,omitempty"` // p<sentence index>
	GlossCN   string `json:"gloss_cn,omitempty"`
	GlossEN   string `json:"gloss_en,omitempty"`
}

// Card is a trade thesis record. Draft cards come out of the ingest pipeline
// pending human edit; the assembler never mutates a card after creation.
type Card struct {
	ID            string          `json:"id" validate:"required"`
	AsOf          time.Time       `json:"asof"`
	SummaryCN     string          `json:"summary_cn,omitempty"`
	SummaryEN     string          `json:"summary_en,omitempty"`
	Direction     string          `json:"direction" validate:"required,oneof=long short avoid"`
	Horizon       string          `json:"horizon" validate:"required"` // 1w, 1m, 3m, 6m
	Instruments   []InstrumentRef `json:"instruments" validate:"required,min=1,dive"`
	EntryTriggers []TriggerExpr   `json:"entry_triggers" validate:"required,min=1,dive"`
	Invalidators  []TriggerExpr   `json:"invalidators" validate:"required,min=1,dive"`
	Catalysts     []string        `json:"catalysts"`
	Risks         []string        `json:"risks"`
	Why           []QuoteRef      `json:"why"`
	Confidence    float64         `json:"confidence" validate:"gte=0,lte=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DraftCard is a card enriched with extraction metadata from ingest.
type DraftCard struct {
	Card
	ExtractionConfidence float64           `json:"extraction_confidence"`
	Entities             []EntityCandidate `json:"entities"`
	ExpertRef            string            `json:"expert_ref,omitempty"`
}
