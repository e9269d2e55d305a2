package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearn/ySync/internal/module/sync/service"
)

const exporterSample = `
registry = [
    network=Network.MAINNET,
    partners=[
        Partner(name='abracadabra', treasury='0x...'),
        Partner(
            name='alchemix',
            wrappers=[],
        ),
        Partner(name='abracadabra', treasury='0x...'),
    ],
    network=Network.FANTOM,
    partners=[
        Partner(name='beethovenx'),
    ],
    network=Network.MOONBEAM,
    partners=[
        Partner(name='someone'),
    ],
]
`

func TestParseExporterPartners(t *testing.T) {
	sections := service.ParseExporterPartners(exporterSample)
	require.Len(t, sections, 3)

	assert.Equal(t, "MAINNET", sections[0].Network)
	assert.Equal(t, 1, sections[0].ChainID)
	// declarations spanning several lines are matched, duplicates kept as-is
	assert.Equal(t, []string{"abracadabra", "alchemix", "abracadabra"}, sections[0].Partners)

	assert.Equal(t, "FANTOM", sections[1].Network)
	assert.Equal(t, 250, sections[1].ChainID)
	assert.Equal(t, []string{"beethovenx"}, sections[1].Partners)

	// unknown network names parse but never map to a chain
	assert.Equal(t, "MOONBEAM", sections[2].Network)
	assert.Equal(t, 0, sections[2].ChainID)
}

func TestParseExporterPartnersNoSections(t *testing.T) {
	assert.Nil(t, service.ParseExporterPartners("no delimiter anywhere"))
	assert.Nil(t, service.ParseExporterPartners(""))
}

func TestParseExporterPartnersEmptySection(t *testing.T) {
	sections := service.ParseExporterPartners("network=Network.MAINNET, partners=[]")
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Partners)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "BEETHOVENX", service.CleanName("beethoven-x"))
	assert.Equal(t, "YEARNFINANCE", service.CleanName("Yearn Finance"))
	assert.Equal(t, "ABRACADABRA", service.CleanName("abracadabra"))
	assert.Equal(t, "", service.CleanName("!!!"))
}
