package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position lifecycle states.
const (
	PositionStatusOpen   = "open"
	PositionStatusClosed = "closed"
)

// Position is a paper portfolio position opened against a card.
type Position struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	CardID   string          `json:"card_id"`
	OpenedAt time.Time       `json:"opened_at"`
	EntryPx  decimal.Decimal `json:"entry_px"`
	Qty      decimal.Decimal `json:"qty"`
	ClosedAt *time.Time      `json:"closed_at,omitempty"`
	ExitPx   decimal.Decimal `json:"exit_px,omitempty"`
	Status   string          `json:"status"` // open, closed
}

// PositionView is a position enriched with current price and P&L.
type PositionView struct {
	Position
	CurrentPx decimal.Decimal `json:"current_px,omitempty"`
	PnL       decimal.Decimal `json:"pnl,omitempty"`
	PnLPct    float64         `json:"pnl_pct"`
	HasPnL    bool            `json:"has_pnl"`
}

// PortfolioStats summarizes the paper portfolio.
type PortfolioStats struct {
	TotalPositions  int             `json:"total_positions"`
	OpenPositions   int             `json:"open_positions"`
	ClosedPositions int             `json:"closed_positions"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	TotalPnLPct     float64         `json:"total_pnl_pct"`
	WinRate         float64         `json:"win_rate"`
	MaxDrawdown     float64         `json:"max_drawdown"`
	TWR             float64         `json:"twr"`
}
