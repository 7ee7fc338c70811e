package models

// IngestRequest asks the pipeline to turn a transcript into draft cards.
type IngestRequest struct {
	Text      string `json:"text" validate:"required"`
	ExpertRef string `json:"expert_ref,omitempty"`
	Locale    string `json:"locale,omitempty"` // hint only; detection is authoritative
}

// IngestResponse returns the assembled draft cards plus pipeline stats.
type IngestResponse struct {
	Cards                  []DraftCard `json:"cards"`
	ProcessingTime         float64     `json:"processing_time"` // seconds
	TotalEntitiesExtracted int         `json:"total_entities_extracted"`
	LanguageDetected       Locale      `json:"language_detected"`
}
