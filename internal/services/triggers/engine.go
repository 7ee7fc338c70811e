// -----------------------------------------------------------------------
// Package triggers evaluates armed trigger rules against market data and
// fires alert events. A rule fires at most once; fired rules leave the
// active set.
// -----------------------------------------------------------------------

package triggers

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/models"
)

const (
	defaultDrawdownWindow = 20
	defaultShortWindow    = 10
	defaultLongWindow     = 50
)

// Engine evaluates trigger rules. Price lookups go through the injected
// PriceSource; persistence through the trigger and card stores.
type Engine struct {
	prices interfaces.PriceSource
	cards  interfaces.CardStorage
	store  interfaces.TriggerStorage
	log    arbor.ILogger

	now func() time.Time
}

// NewEngine wires the evaluation dependencies.
func NewEngine(prices interfaces.PriceSource, cards interfaces.CardStorage, store interfaces.TriggerStorage) *Engine {
	return &Engine{
		prices: prices,
		cards:  cards,
		store:  store,
		log:    common.GetLogger(),
		now:    time.Now,
	}
}

// EvaluateAll runs every active rule once and returns the alerts fired.
// Individual rule failures are logged and skipped; the sweep continues.
func (e *Engine) EvaluateAll(ctx context.Context) ([]models.AlertEvent, error) {
	rules, err := e.store.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}

	var alerts []models.AlertEvent
	for i := range rules {
		alert, evalErr := e.Evaluate(ctx, &rules[i])
		if evalErr != nil {
			e.log.Warn().Err(evalErr).Str("trigger_id", rules[i].ID).Msg("Trigger evaluation failed")
			continue
		}
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	e.log.Info().Int("rules", len(rules)).Int("fired", len(alerts)).Msg("Trigger sweep complete")
	return alerts, nil
}

// Evaluate runs a single rule. Returns the fired alert, or nil when the
// condition does not hold. Event triggers are manual and never auto-fire.
func (e *Engine) Evaluate(ctx context.Context, rule *models.TriggerRule) (*models.AlertEvent, error) {
	switch rule.Expr.Kind {
	case models.TriggerPriceLevel:
		return e.evaluatePriceLevel(ctx, rule)
	case models.TriggerDrawdownPct:
		return e.evaluateDrawdown(ctx, rule)
	case models.TriggerMACross:
		return e.evaluateMACross(ctx, rule)
	case models.TriggerTimeStop:
		return e.evaluateTimeStop(ctx, rule)
	case models.TriggerEvent:
		return nil, nil
	default:
		return nil, nil
	}
}

// FireEvent manually fires active event triggers on a card matching the
// given event type. Event triggers cover policy, rating and margin changes
// the engine cannot observe in market data.
func (e *Engine) FireEvent(ctx context.Context, cardID, eventType string) ([]models.AlertEvent, error) {
	rules, err := e.store.ListRulesByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules for card %s: %w", cardID, err)
	}

	var alerts []models.AlertEvent
	for i := range rules {
		rule := &rules[i]
		if rule.Status != models.TriggerStatusActive || rule.Expr.Kind != models.TriggerEvent {
			continue
		}
		if rule.Expr.EventType != "" && rule.Expr.EventType != eventType {
			continue
		}
		alert, fireErr := e.fire(ctx, rule, "Manual event trigger: "+eventType, models.AlertPayload{})
		if fireErr != nil {
			return alerts, fireErr
		}
		alerts = append(alerts, *alert)
	}
	return alerts, nil
}

func (e *Engine) evaluatePriceLevel(ctx context.Context, rule *models.TriggerRule) (*models.AlertEvent, error) {
	expr := rule.Expr
	if expr.Symbol == "" || expr.Op == "" || expr.Level == 0 {
		return nil, nil
	}

	price, err := e.prices.CurrentPrice(ctx, expr.Symbol)
	if err != nil {
		return nil, fmt.Errorf("price lookup for %s: %w", expr.Symbol, err)
	}

	var triggered bool
	switch expr.Op {
	case ">=":
		triggered = price >= expr.Level
	case "<=":
		triggered = price <= expr.Level
	case ">":
		triggered = price > expr.Level
	case "<":
		triggered = price < expr.Level
	}
	if !triggered {
		return nil, nil
	}

	return e.fire(ctx, rule,
		fmt.Sprintf("%s crossed %s %g", expr.Symbol, expr.Op, expr.Level),
		models.AlertPayload{
			Symbol:       expr.Symbol,
			CurrentPrice: price,
			Level:        expr.Level,
			Op:           expr.Op,
		})
}

func (e *Engine) evaluateDrawdown(ctx context.Context, rule *models.TriggerRule) (*models.AlertEvent, error) {
	expr := rule.Expr
	if expr.Symbol == "" || expr.Pct == 0 {
		return nil, nil
	}
	window := expr.WindowDays
	if window <= 0 {
		window = defaultDrawdownWindow
	}

	prices, err := e.prices.PriceHistory(ctx, expr.Symbol, window)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", expr.Symbol, err)
	}
	if len(prices) == 0 {
		return nil, nil
	}

	high := prices[0]
	for _, p := range prices[1:] {
		if p > high {
			high = p
		}
	}
	current := prices[len(prices)-1]
	drawdown := ((current - high) / high) * 100

	if drawdown > -expr.Pct {
		return nil, nil
	}

	return e.fire(ctx, rule,
		fmt.Sprintf("%s down %.1f%% from %dD high", expr.Symbol, math.Abs(drawdown), window),
		models.AlertPayload{
			Symbol:       expr.Symbol,
			CurrentPrice: current,
			HighPrice:    high,
			DrawdownPct:  drawdown,
		})
}

func (e *Engine) evaluateMACross(ctx context.Context, rule *models.TriggerRule) (*models.AlertEvent, error) {
	expr := rule.Expr
	if expr.Symbol == "" {
		return nil, nil
	}
	short := expr.ShortWindow
	if short <= 0 {
		short = defaultShortWindow
	}
	long := expr.LongWindow
	if long <= 0 {
		long = defaultLongWindow
	}
	direction := expr.Direction
	if direction == "" {
		direction = "up"
	}

	prices, err := e.prices.PriceHistory(ctx, expr.Symbol, long+5)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", expr.Symbol, err)
	}
	if len(prices) < long+1 {
		return nil, nil
	}

	shortMA := sma(prices[len(prices)-short:])
	longMA := sma(prices[len(prices)-long:])
	prevShortMA := sma(prices[len(prices)-short-1 : len(prices)-1])
	prevLongMA := sma(prices[len(prices)-long-1 : len(prices)-1])

	var triggered bool
	switch direction {
	case "up":
		triggered = prevShortMA <= prevLongMA && shortMA > longMA
	case "down":
		triggered = prevShortMA >= prevLongMA && shortMA < longMA
	}
	if !triggered {
		return nil, nil
	}

	return e.fire(ctx, rule,
		fmt.Sprintf("%s %dD MA crossed %s %dD MA", expr.Symbol, short, direction, long),
		models.AlertPayload{
			Symbol:       expr.Symbol,
			CurrentPrice: prices[len(prices)-1],
			ShortMA:      shortMA,
			LongMA:       longMA,
		})
}

func (e *Engine) evaluateTimeStop(ctx context.Context, rule *models.TriggerRule) (*models.AlertEvent, error) {
	expr := rule.Expr
	if expr.Days <= 0 {
		return nil, nil
	}

	card, err := e.cards.Get(ctx, rule.CardID)
	if err != nil {
		return nil, fmt.Errorf("card lookup for %s: %w", rule.CardID, err)
	}

	elapsed := int(e.now().Sub(card.AsOf).Hours() / 24)
	if elapsed < expr.Days {
		return nil, nil
	}

	return e.fire(ctx, rule,
		fmt.Sprintf("Time stop triggered after %d days", elapsed),
		models.AlertPayload{
			ElapsedDays:   elapsed,
			ThresholdDays: expr.Days,
		})
}

// fire persists the alert, marks the rule fired and returns the event.
func (e *Engine) fire(ctx context.Context, rule *models.TriggerRule, reason string, payload models.AlertPayload) (*models.AlertEvent, error) {
	firedAt := e.now()

	alert := &models.AlertEvent{
		ID:        common.NewAlertID(),
		TriggerID: rule.ID,
		CardID:    rule.CardID,
		Kind:      rule.Expr.Kind,
		Reason:    reason,
		Payload:   payload,
		CreatedAt: firedAt,
	}
	if err := e.store.SaveAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to save alert: %w", err)
	}

	rule.Status = models.TriggerStatusFired
	rule.FiredAt = &firedAt
	if err := e.store.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to mark rule fired: %w", err)
	}

	e.log.Info().
		Str("trigger_id", rule.ID).
		Str("kind", rule.Expr.Kind).
		Str("reason", reason).
		Msg("Trigger fired")

	return alert, nil
}

func sma(prices []float64) float64 {
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}
