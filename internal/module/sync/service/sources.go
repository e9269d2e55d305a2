package service

// Source payload shapes. Each fetcher decodes into one of these at the
// boundary so nothing untyped flows into the reconcilers.

// LocalizedContent is one language entry of a localization map.
type LocalizedContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Localization maps a language code to its localized content.
type Localization map[string]LocalizedContent

// APIVault is one vault object from the vault listing endpoint.
type APIVault struct {
	Address     string         `json:"address"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Icon        string         `json:"icon"`
	Version     string         `json:"version"`
	Endorsed    bool           `json:"endorsed"`
	Token       APIVaultToken  `json:"token"`
	TVL         APIVaultTVL    `json:"tvl"`
	APY         APIVaultAPY    `json:"apy"`
	Details     APIVaultDetail `json:"details"`
	Strategies  []APIStrategy  `json:"strategies"`
}

type APIVaultToken struct {
	Address     string  `json:"address"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type APIVaultTVL struct {
	TotalAssets string  `json:"total_assets"`
	TVL         float64 `json:"tvl"`
	Price       float64 `json:"price"`
}

type APIVaultAPY struct {
	Type   string  `json:"type"`
	Error  string  `json:"error"`
	NetAPY float64 `json:"net_apy"`
}

type APIVaultDetail struct {
	DepositLimit string `json:"depositLimit"`
	Retired      bool   `json:"retired"`
}

// APIStrategy is one strategy nested in a vault listing entry.
type APIStrategy struct {
	Address     string   `json:"address"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Risk        *APIRisk `json:"risk,omitempty"`
}

type APIRisk struct {
	RiskGroup   string       `json:"riskGroup"`
	RiskDetails *RiskDetails `json:"riskDetails,omitempty"`
}

// LedgerContract is one entry of a ledger-plugin integration file.
type LedgerContract struct {
	Address      string `json:"address"`
	ContractName string `json:"contractName"`
}

// RepoContent is one filesystem entry from the GitHub repository-contents
// API. The file name minus its extension is the downstream join key.
type RepoContent struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// StrategyMeta is one entry of the strategy metadata source. A single meta
// entry can cover several deployed strategy addresses.
type StrategyMeta struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Addresses    []string     `json:"addresses"`
	Protocols    []string     `json:"protocols"`
	Localization Localization `json:"localization,omitempty"`
}

// TokenMeta is one entry of the token metadata source.
type TokenMeta struct {
	Address      string       `json:"address"`
	Name         string       `json:"name"`
	Symbol       string       `json:"symbol"`
	Description  string       `json:"description"`
	Price        float64      `json:"price"`
	Localization Localization `json:"localization,omitempty"`
}

// ProtocolMeta is one entry of the protocol metadata source.
type ProtocolMeta struct {
	Name         string       `json:"name"`
	Localization Localization `json:"localization,omitempty"`
}

// NetworkPartners is the parsed exporter-partner contribution for one
// network section of the exporter registry script.
type NetworkPartners struct {
	Network  string
	ChainID  int
	Partners []string
}
