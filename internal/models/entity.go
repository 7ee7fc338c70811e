package models

// EntityType classifies a recognized text span.
type EntityType string

const (
	EntityCompany      EntityType = "Company"
	EntityCommodity    EntityType = "Commodity"
	EntityExchange     EntityType = "Exchange"
	EntityCountry      EntityType = "Country"
	EntityPolicyActor  EntityType = "Policy_Actor"
	EntityRatingAgency EntityType = "Rating_Agency"
)

// Entity is a recognized text span with its category, pattern confidence and
// exact character offsets into the source transcript. Immutable once created.
type Entity struct {
	Text       string     `json:"text"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// EntityCandidate is an extracted entity annotated with its ranked ticker
// candidates, ready for card assembly.
type EntityCandidate struct {
	Text             string            `json:"text"`
	Type             EntityType        `json:"type"`
	Confidence       float64           `json:"confidence"`
	TickerCandidates []TickerCandidate `json:"ticker_candidates"`
}
