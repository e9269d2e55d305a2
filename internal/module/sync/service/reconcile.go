package service

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CleanName strips non-alphanumeric characters and uppercases, so that
// differently-formatted spellings of the same name compare equal. Used for
// protocol slugs, meta-file stems and partner names.
func CleanName(name string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(name, ""))
}

// upsertVault is the single merge primitive shared by every vault source:
// create the record if the address is unseen, otherwise patch only the
// named fields the source is allowed to touch.
func upsertVault(records map[Address]*VaultRecord, address Address, seed func() *VaultRecord, patch func(*VaultRecord)) {
	record, ok := records[address]
	if !ok {
		record = seed()
		records[address] = record
	}
	patch(record)
}

// ReconcileVaults merges the vault listing, the two ledger integration
// lists and the vault meta-file listing into one derived record per vault
// address. The listing is authoritative for existence; ledger sources may
// only create placeholders or raise their own integration sub-flag.
func ReconcileVaults(logger zerolog.Logger, chainID int, vaults []APIVault, deployed, incoming []LedgerContract, metaFiles []RepoContent, strategyMetas []StrategyMeta) map[Address]*VaultRecord {
	records := make(map[Address]*VaultRecord, len(vaults))
	metaFileSet := metaFileStems(metaFiles)
	metaByAddress := strategyMetaIndex(strategyMetas)
	languages := ResolveLanguages(strategyLocalizations(strategyMetas))

	// The ledger plugin only ships on mainnet. Elsewhere the integration
	// check does not apply and must not show up as an anomaly.
	ledgerDefault := chainID != 1

	for _, vault := range vaults {
		address, err := NormalizeAddress(vault.Address)
		if err != nil {
			logger.Warn().Err(err).Msgf("Skipping vault with malformed address %q", vault.Address)
			continue
		}
		if _, exists := records[address]; exists {
			continue
		}

		name := vault.DisplayName
		if name == "" {
			name = vault.Name
		}

		record := &VaultRecord{
			Address:           address,
			Name:              name,
			Icon:              vault.Icon,
			Version:           vault.Version,
			Token:             vaultTokenRef(logger, vault.Token),
			LedgerIntegration: LedgerIntegration{Incoming: ledgerDefault, Deployed: ledgerDefault},

			HasValidIcon:       true,
			HasValidTokenIcon:  true,
			HasValidPrice:      vault.TVL.Price > 0,
			HasYearnMetaFile:   metaFileSet[address],
			HasValidRetirement: hasValidRetirement(vault.Details),
			APYStatus:          apyStatus(vault.APY),

			HasValidStrategiesDescriptions: true,
			HasValidStrategiesRisk:         true,
			HasValidStrategiesRiskScore:    true,
			MissingTranslations:            make(map[Address][]string),
		}

		for _, strategy := range vault.Strategies {
			strategyAddress, err := NormalizeAddress(strategy.Address)
			if err != nil {
				logger.Warn().Err(err).Msgf("Skipping strategy with malformed address %q on vault %s", strategy.Address, address)
				continue
			}

			ref := VaultStrategyRef{
				Address:     strategyAddress,
				Name:        strategy.Name,
				Description: strategy.Description,
			}
			if strategy.Risk != nil {
				ref.RiskGroup = strategy.Risk.RiskGroup
				ref.RiskDetails = strategy.Risk.RiskDetails
			}
			record.Strategies = append(record.Strategies, ref)

			if ref.Description == "" {
				record.HasValidStrategiesDescriptions = false
			}
			if !HasValidRiskGroup(ref.RiskGroup) {
				record.HasValidStrategiesRisk = false
			}
			if !EvaluateRiskScore(ref.RiskDetails).IsValid {
				record.HasValidStrategiesRiskScore = false
			}

			var localization Localization
			if meta := metaByAddress[strategyAddress]; meta != nil {
				localization = meta.Localization
			}
			if missing := MissingLanguages(localization, languages); len(missing) > 0 {
				record.MissingTranslations[strategyAddress] = missing
			}
		}

		records[address] = record
	}

	mergeLedgerContracts(logger, records, deployed, ledgerDefault, func(integration *LedgerIntegration) {
		integration.Deployed = true
	})
	mergeLedgerContracts(logger, records, incoming, ledgerDefault, func(integration *LedgerIntegration) {
		integration.Incoming = true
	})
	return records
}

// mergeLedgerContracts applies one ledger integration list. Unseen
// addresses become minimal placeholder records; already-present records
// only get the relevant sub-flag raised, never any flag lowered.
func mergeLedgerContracts(logger zerolog.Logger, records map[Address]*VaultRecord, contracts []LedgerContract, ledgerDefault bool, raise func(*LedgerIntegration)) {
	for _, contract := range contracts {
		address, err := NormalizeAddress(contract.Address)
		if err != nil {
			logger.Warn().Err(err).Msgf("Skipping ledger contract with malformed address %q", contract.Address)
			continue
		}
		name := contract.ContractName
		upsertVault(records, address, func() *VaultRecord {
			return &VaultRecord{
				Address:             address,
				Name:                name,
				Version:             "Unknown",
				LedgerIntegration:   LedgerIntegration{Incoming: ledgerDefault, Deployed: ledgerDefault},
				APYStatus:           APYNormal,
				MissingTranslations: make(map[Address][]string),
			}
		}, func(record *VaultRecord) {
			raise(&record.LedgerIntegration)
		})
	}
}

// ReconcileTokens projects the token metadata source into derived token
// records keyed by normalized address.
func ReconcileTokens(logger zerolog.Logger, tokens []TokenMeta) map[Address]*TokenRecord {
	records := make(map[Address]*TokenRecord, len(tokens))
	languages := ResolveLanguages(tokenLocalizations(tokens))

	for _, token := range tokens {
		address, err := NormalizeAddress(token.Address)
		if err != nil {
			logger.Warn().Err(err).Msgf("Skipping token with malformed address %q", token.Address)
			continue
		}
		if _, exists := records[address]; exists {
			continue
		}
		records[address] = &TokenRecord{
			Address:             address,
			Name:                token.Name,
			Symbol:              token.Symbol,
			Price:               token.Price,
			MissingTranslations: MissingLanguages(token.Localization, languages),
			HasValidTokenIcon:   true,
			HasValidPrice:       token.Price > 0,
		}
	}
	return records
}

// ReconcileProtocols cross-references the protocol metadata source with the
// protocol meta-file listing. File stems and slugs are both passed through
// CleanName so the two spellings compare.
func ReconcileProtocols(protocols []ProtocolMeta, files []RepoContent) map[string]*ProtocolRecord {
	stems := make(map[string]bool, len(files))
	for _, file := range files {
		stems[CleanName(fileStem(file.Name))] = true
	}

	languages := ResolveLanguages(protocolLocalizations(protocols))
	records := make(map[string]*ProtocolRecord, len(protocols))
	for _, protocol := range protocols {
		if protocol.Name == "" {
			continue
		}
		if _, exists := records[protocol.Name]; exists {
			continue
		}
		records[protocol.Name] = &ProtocolRecord{
			Name:                protocol.Name,
			MissingTranslations: MissingLanguages(protocol.Localization, languages),
			MissingProtocolFile: !stems[CleanName(protocol.Name)],
		}
	}
	return records
}

// ReconcileStrategies is a pass-through projection of the strategy metadata
// source; one record per deployed address a meta entry covers.
func ReconcileStrategies(logger zerolog.Logger, metas []StrategyMeta) map[Address]*StrategyRecord {
	records := make(map[Address]*StrategyRecord)
	for _, meta := range metas {
		for _, raw := range meta.Addresses {
			address, err := NormalizeAddress(raw)
			if err != nil {
				logger.Warn().Err(err).Msgf("Skipping strategy meta with malformed address %q", raw)
				continue
			}
			if _, exists := records[address]; exists {
				continue
			}
			records[address] = &StrategyRecord{
				Address:     address,
				Name:        meta.Name,
				Description: meta.Description,
				Protocols:   meta.Protocols,
			}
		}
	}
	return records
}

const (
	partnerSourceExporter = "exporter"
	partnerSourceYDaemon  = "yDaemon"
)

// ReconcilePartners merges the exporter registry section for the current
// chain with the partner file listing into a multi-map keyed by cleaned
// partner name. Chains outside the designated partner networks simply have
// no partner data.
func ReconcilePartners(chainID int, exporter []NetworkPartners, partnerFiles []RepoContent, partnerNetworks map[int]bool) map[string][]PartnerObservation {
	partners := make(map[string][]PartnerObservation)
	if !partnerNetworks[chainID] {
		return partners
	}

	seen := make(map[string]map[string]bool)
	observe := func(source, name string) {
		key := CleanName(name)
		if key == "" {
			return
		}
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if seen[key][source] {
			return
		}
		seen[key][source] = true
		partners[key] = append(partners[key], PartnerObservation{Source: source, Name: name})
	}

	for _, section := range exporter {
		if section.ChainID != chainID {
			continue
		}
		for _, name := range section.Partners {
			observe(partnerSourceExporter, name)
		}
	}
	for _, file := range partnerFiles {
		observe(partnerSourceYDaemon, fileStem(file.Name))
	}
	return partners
}

func vaultTokenRef(logger zerolog.Logger, token APIVaultToken) VaultTokenRef {
	ref := VaultTokenRef{
		Name:        token.Name,
		Symbol:      token.Symbol,
		Icon:        token.Icon,
		Description: token.Description,
	}
	address, err := NormalizeAddress(token.Address)
	if err != nil {
		logger.Warn().Err(err).Msgf("Vault underlying token has malformed address %q", token.Address)
		return ref
	}
	ref.Address = address
	return ref
}

// hasValidRetirement flags the one inconsistent combination: a vault capped
// to zero deposits that is not explicitly marked retired.
func hasValidRetirement(details APIVaultDetail) bool {
	return !(isZeroAmount(details.DepositLimit) && !details.Retired)
}

func isZeroAmount(amount string) bool {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return false
	}
	return strings.Trim(amount, "0") == ""
}

func apyStatus(apy APIVaultAPY) APYStatus {
	switch {
	case apy.Error != "" || apy.Type == "error":
		return APYError
	case apy.Type == "new":
		return APYNew
	default:
		return APYNormal
	}
}

func fileStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func metaFileStems(files []RepoContent) map[Address]bool {
	stems := make(map[Address]bool, len(files))
	for _, file := range files {
		address, err := NormalizeAddress(fileStem(file.Name))
		if err != nil {
			continue
		}
		stems[address] = true
	}
	return stems
}

func strategyMetaIndex(metas []StrategyMeta) map[Address]*StrategyMeta {
	index := make(map[Address]*StrategyMeta)
	for i := range metas {
		for _, raw := range metas[i].Addresses {
			address, err := NormalizeAddress(raw)
			if err != nil {
				continue
			}
			if _, exists := index[address]; !exists {
				index[address] = &metas[i]
			}
		}
	}
	return index
}

func strategyLocalizations(metas []StrategyMeta) []Localization {
	localizations := make([]Localization, 0, len(metas))
	for _, meta := range metas {
		localizations = append(localizations, meta.Localization)
	}
	return localizations
}

func tokenLocalizations(tokens []TokenMeta) []Localization {
	localizations := make([]Localization, 0, len(tokens))
	for _, token := range tokens {
		localizations = append(localizations, token.Localization)
	}
	return localizations
}

func protocolLocalizations(protocols []ProtocolMeta) []Localization {
	localizations := make([]Localization, 0, len(protocols))
	for _, protocol := range protocols {
		localizations = append(localizations, protocol.Localization)
	}
	return localizations
}
