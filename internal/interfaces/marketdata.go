package interfaces

import "context"

// PriceSource supplies market prices to the trigger engine and portfolio
// service. Implementations return ErrNotFound when a symbol has no data.
type PriceSource interface {
	// CurrentPrice returns the latest close for the symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	// PriceHistory returns up to days daily closes, oldest first.
	PriceHistory(ctx context.Context, symbol string, days int) ([]float64, error)
}
