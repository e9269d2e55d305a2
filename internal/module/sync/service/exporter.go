package service

import (
	"regexp"
	"strings"
	"unicode"
)

// The exporter publishes its partner registry as a python module, not as
// data. Sections are introduced by `network=Network.<NAME>` and partner
// declarations inside a section look like `Partner(name='someone', ...)`.
const exporterSectionDelimiter = "network=Network."

var partnerNamePattern = regexp.MustCompile(`Partner\(name='([^']+)'`)

// exporterChainIDs maps the exporter's symbolic network names to chain IDs.
// Sections with an unlisted name are still parsed but never match a chain
// during reconciliation.
var exporterChainIDs = map[string]int{
	"MAINNET":  1,
	"OPTIMISM": 10,
	"GNOSIS":   100,
	"FANTOM":   250,
	"BASE":     8453,
	"ARBITRUM": 42161,
}

// ParseExporterPartners extracts partner names grouped by network section
// from the raw exporter registry script. Zero matches across all sections
// is a degraded parse, not an error; the caller decides how loudly to
// complain.
func ParseExporterPartners(raw string) []NetworkPartners {
	sections := strings.Split(raw, exporterSectionDelimiter)
	if len(sections) < 2 {
		return nil
	}

	parsed := make([]NetworkPartners, 0, len(sections)-1)
	for _, section := range sections[1:] {
		network := leadingNetworkToken(section)

		compact := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, section)

		var partners []string
		for _, match := range partnerNamePattern.FindAllStringSubmatch(compact, -1) {
			partners = append(partners, match[1])
		}

		parsed = append(parsed, NetworkPartners{
			Network:  network,
			ChainID:  exporterChainIDs[network],
			Partners: partners,
		})
	}
	return parsed
}

func leadingNetworkToken(section string) string {
	end := strings.IndexFunc(section, func(r rune) bool {
		return !unicode.IsUpper(r) && !unicode.IsDigit(r) && r != '_'
	})
	if end == -1 {
		return section
	}
	return section[:end]
}
