package models

// InstrumentMeta holds the fixed metadata tag set carried by catalog entries.
type InstrumentMeta struct {
	Sector          string   `json:"sector,omitempty" toml:"sector"`
	Industry        string   `json:"industry,omitempty" toml:"industry"`
	Themes          []string `json:"themes,omitempty" toml:"themes"`
	Catalysts       []string `json:"catalysts,omitempty" toml:"catalysts"`
	Geo             string   `json:"geo,omitempty" toml:"geo"`
	Stage           string   `json:"stage,omitempty" toml:"stage"`
	SupplyChainRole string   `json:"supply_chain_role,omitempty" toml:"supply_chain_role"`
}

// Instrument is a tradable instrument in the coverage catalog.
type Instrument struct {
	ID            string         `json:"id"` // SYMBOL:VENUE
	Symbol        string         `json:"symbol"`
	Venue         string         `json:"venue"`
	AssetClass    string         `json:"asset_class"` // equity, etf, future
	DisplayNameEN string         `json:"display_name_en"`
	DisplayNameCN string         `json:"display_name_cn"`
	Meta          InstrumentMeta `json:"meta"`
}

// TickerCandidate is a ranked proposed mapping from an entity to a tradable
// instrument symbol. Derived from the catalog at resolution time; ephemeral.
type TickerCandidate struct {
	Symbol        string         `json:"symbol"`
	Venue         string         `json:"venue"`
	DisplayNameEN string         `json:"display_name_en"`
	DisplayNameCN string         `json:"display_name_cn"`
	Confidence    float64        `json:"confidence"`
	AssetClass    string         `json:"asset_class"`
	Meta          InstrumentMeta `json:"meta"`
}

// InstrumentRef references an instrument from a card.
type InstrumentRef struct {
	Symbol        string `json:"symbol" validate:"required"`
	Venue         string `json:"venue" validate:"required"`
	Role          string `json:"role"` // primary, proxy, hedge
	DisplayNameEN string `json:"display_name_en,omitempty"`
	DisplayNameCN string `json:"display_name_cn,omitempty"`
}
