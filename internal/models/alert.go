package models

import "time"

// Trigger rule lifecycle states.
const (
	TriggerStatusActive = "active"
	TriggerStatusFired  = "fired"
	TriggerStatusPaused = "paused"
)

// TriggerRule is an armed trigger watching market data on behalf of a card.
type TriggerRule struct {
	ID        string      `json:"id"`
	CardID    string      `json:"card_id"`
	Expr      TriggerExpr `json:"expr"`
	Status    string      `json:"status"` // active, fired, paused
	CreatedAt time.Time   `json:"created_at"`
	FiredAt   *time.Time  `json:"fired_at,omitempty"`
}

// AlertEvent records a fired trigger with the evaluation context that fired it.
type AlertEvent struct {
	ID        string       `json:"id"`
	TriggerID string       `json:"trigger_id"`
	CardID    string       `json:"card_id"`
	Kind      string       `json:"kind"`
	Reason    string       `json:"reason"`
	Payload   AlertPayload `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
}

// AlertPayload carries the market context captured at fire time.
type AlertPayload struct {
	Symbol        string  `json:"symbol,omitempty"`
	CurrentPrice  float64 `json:"current_price,omitempty"`
	Level         float64 `json:"level,omitempty"`
	Op            string  `json:"op,omitempty"`
	HighPrice     float64 `json:"high_price,omitempty"`
	DrawdownPct   float64 `json:"drawdown_pct,omitempty"`
	ShortMA       float64 `json:"short_ma,omitempty"`
	LongMA        float64 `json:"long_ma,omitempty"`
	ElapsedDays   int     `json:"elapsed_days,omitempty"`
	ThresholdDays int     `json:"threshold_days,omitempty"`
}
