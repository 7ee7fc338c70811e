// -----------------------------------------------------------------------
// Package portfolio manages paper positions opened against cards and
// computes P&L with exact decimal arithmetic.
// -----------------------------------------------------------------------

package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Service manages the paper portfolio.
type Service struct {
	store  interfaces.PositionStorage
	prices interfaces.PriceSource
	log    arbor.ILogger

	now func() time.Time
}

// NewService wires the position store and the quote source.
func NewService(store interfaces.PositionStorage, prices interfaces.PriceSource) *Service {
	return &Service{
		store:  store,
		prices: prices,
		log:    common.GetLogger(),
		now:    time.Now,
	}
}

// OpenPosition opens a paper position against a card.
func (s *Service) OpenPosition(ctx context.Context, symbol string, entryPx, qty decimal.Decimal, cardID string) (*models.Position, error) {
	if entryPx.Sign() <= 0 {
		return nil, fmt.Errorf("entry price must be positive, got %s", entryPx)
	}
	if qty.Sign() <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %s", qty)
	}

	position := &models.Position{
		ID:       common.NewPositionID(),
		Symbol:   symbol,
		CardID:   cardID,
		OpenedAt: s.now(),
		EntryPx:  entryPx,
		Qty:      qty,
		Status:   models.PositionStatusOpen,
	}

	if err := s.store.Save(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}

	s.log.Info().
		Str("position_id", position.ID).
		Str("symbol", symbol).
		Str("entry_px", entryPx.String()).
		Msg("Position opened")

	return position, nil
}

// ClosePosition closes an open position at the given exit price.
func (s *Service) ClosePosition(ctx context.Context, positionID string, exitPx decimal.Decimal) (*models.Position, error) {
	position, err := s.store.Get(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", positionID, err)
	}
	if position.Status == models.PositionStatusClosed {
		return nil, fmt.Errorf("position %s is already closed", positionID)
	}

	closedAt := s.now()
	position.ClosedAt = &closedAt
	position.ExitPx = exitPx
	position.Status = models.PositionStatusClosed

	if err := s.store.Update(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}

	s.log.Info().
		Str("position_id", position.ID).
		Str("exit_px", exitPx.String()).
		Msg("Position closed")

	return position, nil
}

// ListPositions returns positions enriched with marks and P&L. Open positions
// are marked at the current quote; a failed quote leaves the view unmarked
// rather than failing the listing.
func (s *Service) ListPositions(ctx context.Context, includeClosed bool) ([]models.PositionView, error) {
	positions, err := s.store.List(ctx, includeClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	views := make([]models.PositionView, 0, len(positions))
	for _, position := range positions {
		views = append(views, s.enrich(ctx, position))
	}
	return views, nil
}

// Stats summarizes the whole portfolio, open and closed.
func (s *Service) Stats(ctx context.Context) (*models.PortfolioStats, error) {
	views, err := s.ListPositions(ctx, true)
	if err != nil {
		return nil, err
	}

	stats := &models.PortfolioStats{
		TotalPositions: len(views),
		TotalPnL:       decimal.Zero,
	}

	totalInvested := decimal.Zero
	var pnlPcts []float64
	var closedWithPnL, winners int

	for _, view := range views {
		switch view.Status {
		case models.PositionStatusOpen:
			stats.OpenPositions++
		case models.PositionStatusClosed:
			stats.ClosedPositions++
		}

		totalInvested = totalInvested.Add(view.EntryPx.Mul(view.Qty))

		if !view.HasPnL {
			continue
		}
		stats.TotalPnL = stats.TotalPnL.Add(view.PnL)
		pnlPcts = append(pnlPcts, view.PnLPct)

		if view.Status == models.PositionStatusClosed {
			closedWithPnL++
			if view.PnL.IsPositive() {
				winners++
			}
		}
	}

	if closedWithPnL > 0 {
		stats.WinRate = float64(winners) / float64(closedWithPnL) * 100
	}
	if len(pnlPcts) > 0 {
		minPct, sum := pnlPcts[0], 0.0
		for _, pct := range pnlPcts {
			if pct < minPct {
				minPct = pct
			}
			sum += pct
		}
		stats.MaxDrawdown = minPct
		stats.TWR = sum / float64(len(pnlPcts))
	}
	if totalInvested.IsPositive() {
		pct, _ := stats.TotalPnL.Div(totalInvested).Mul(hundred).Float64()
		stats.TotalPnLPct = pct
	}

	return stats, nil
}

// enrich marks a position and computes P&L. Closed positions use the exit
// price; open ones the live quote.
func (s *Service) enrich(ctx context.Context, position models.Position) models.PositionView {
	view := models.PositionView{Position: position}

	var markPx decimal.Decimal
	switch position.Status {
	case models.PositionStatusClosed:
		if position.ExitPx.IsZero() {
			return view
		}
		markPx = position.ExitPx
	default:
		quote, err := s.prices.CurrentPrice(ctx, position.Symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", position.Symbol).Msg("Quote unavailable, position left unmarked")
			return view
		}
		markPx = decimal.NewFromFloat(quote)
		view.CurrentPx = markPx
	}

	view.PnL = markPx.Sub(position.EntryPx).Mul(position.Qty)
	pct, _ := markPx.Sub(position.EntryPx).Div(position.EntryPx).Mul(hundred).Float64()
	view.PnLPct = pct
	view.HasPnL = true

	return view
}
