package models

// SimilarityCandidate is a proposed similar-logic ticker for an existing card.
type SimilarityCandidate struct {
	CardID          string  `json:"card_id"`
	CandidateSymbol string  `json:"candidate_symbol"`
	Score           float64 `json:"score"`
	Explanation     string  `json:"explanation"`
	ExplanationCN   string  `json:"explanation_cn"`
	ExplanationEN   string  `json:"explanation_en"`
}
