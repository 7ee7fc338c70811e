package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewCardID generates a card ID from an as-of date and a per-ingest sequence
// number. Format: card_<yyyymmdd>_<3-digit-sequence>
func NewCardID(asof time.Time, seq int) string {
	return fmt.Sprintf("card_%s_%03d", asof.Format("20060102"), seq)
}

// NewPositionID generates a unique position ID with the "pos_" prefix
func NewPositionID() string {
	return "pos_" + uuid.New().String()
}

// NewAlertID generates a unique alert event ID with the "alert_" prefix
func NewAlertID() string {
	return "alert_" + uuid.New().String()
}

// NewTriggerID generates a unique trigger rule ID with the "trig_" prefix
func NewTriggerID() string {
	return "trig_" + uuid.New().String()
}
