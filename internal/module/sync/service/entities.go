package service

import "time"

// APYStatus is read from the listing source's own classification field,
// never derived locally.
type APYStatus string

const (
	APYNormal APYStatus = "normal"
	APYNew    APYStatus = "new"
	APYError  APYStatus = "error"
)

// LedgerIntegration tracks the two ledger-plugin integration lists a vault
// can appear in.
type LedgerIntegration struct {
	Incoming bool `json:"incoming"`
	Deployed bool `json:"deployed"`
}

// VaultTokenRef is the underlying token as reported by the vault listing.
type VaultTokenRef struct {
	Address     Address `json:"address"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
}

// VaultStrategyRef is one constituent strategy of a vault, with the risk
// fields the listing source attaches to it.
type VaultStrategyRef struct {
	Address     Address      `json:"address"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	RiskGroup   string       `json:"riskGroup"`
	RiskDetails *RiskDetails `json:"riskDetails,omitempty"`
}

// VaultRecord is the fully-derived aggregate record for one vault contract.
// Once built it is only modified through the two icon-status mutations.
type VaultRecord struct {
	Address Address `json:"address"`
	Name    string  `json:"name"`
	Icon    string  `json:"icon"`
	Version string  `json:"version"`

	Token      VaultTokenRef      `json:"token"`
	Strategies []VaultStrategyRef `json:"strategies"`

	LedgerIntegration LedgerIntegration `json:"hasLedgerIntegration"`

	HasValidIcon                   bool      `json:"hasValidIcon"`
	HasValidTokenIcon              bool      `json:"hasValidTokenIcon"`
	HasValidPrice                  bool      `json:"hasValidPrice"`
	HasYearnMetaFile               bool      `json:"hasYearnMetaFile"`
	HasValidRetirement             bool      `json:"hasValidRetirement"`
	HasValidStrategiesDescriptions bool      `json:"hasValidStrategiesDescriptions"`
	HasValidStrategiesRisk         bool      `json:"hasValidStrategiesRisk"`
	HasValidStrategiesRiskScore    bool      `json:"hasValidStrategiesRiskScore"`
	APYStatus                      APYStatus `json:"apyStatus"`

	// MissingTranslations maps each strategy address to the language codes
	// whose localized description is absent or untranslated.
	MissingTranslations map[Address][]string `json:"missingTranslations"`
}

// HasAnomalies reports whether any derived signal on the record indicates a
// data-quality problem.
func (v *VaultRecord) HasAnomalies() bool {
	return !v.HasValidIcon ||
		!v.HasValidTokenIcon ||
		!v.HasValidPrice ||
		!v.HasYearnMetaFile ||
		!v.HasValidRetirement ||
		!v.LedgerIntegration.Deployed ||
		!v.HasValidStrategiesDescriptions ||
		!v.HasValidStrategiesRisk ||
		!v.HasValidStrategiesRiskScore ||
		v.APYStatus != APYNormal ||
		len(v.MissingTranslations) > 0
}

// TokenRecord is the aggregate record for one underlying token.
type TokenRecord struct {
	Address             Address  `json:"address"`
	Name                string   `json:"name"`
	Symbol              string   `json:"symbol"`
	Price               float64  `json:"price"`
	MissingTranslations []string `json:"missingTranslations"`
	HasValidTokenIcon   bool     `json:"hasValidTokenIcon"`
	HasValidPrice       bool     `json:"hasValidPrice"`
}

// ProtocolRecord is the aggregate record for one protocol slug.
type ProtocolRecord struct {
	Name                string   `json:"name"`
	MissingTranslations []string `json:"missingTranslations"`
	MissingProtocolFile bool     `json:"missingProtocolFile"`
}

// StrategyRecord is the lightweight projection of the strategy metadata
// source. Risk and translation signals live on the owning VaultRecord.
type StrategyRecord struct {
	Address     Address  `json:"address"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Protocols   []string `json:"protocols"`
}

// PartnerObservation is one sighting of a partner name in one source.
// A partner reported by fewer than two distinct sources is anomalous.
type PartnerObservation struct {
	Source string `json:"source"`
	Name   string `json:"name"`
}

// Snapshot is the merged output of one refresh cycle for one chain. It is
// replaced wholesale on every successful refresh, never partially updated.
type Snapshot struct {
	ChainID    int                             `json:"chainID"`
	Vaults     map[Address]*VaultRecord        `json:"vaults"`
	Tokens     map[Address]*TokenRecord        `json:"tokens"`
	Protocols  map[string]*ProtocolRecord      `json:"protocols"`
	Strategies map[Address]*StrategyRecord     `json:"strategies"`
	Partners   map[string][]PartnerObservation `json:"partners"`
	UpdatedAt  time.Time                       `json:"updatedAt"`
}
