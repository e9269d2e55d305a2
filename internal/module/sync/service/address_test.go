package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearn/ySync/internal/module/sync/service"
)

func TestNormalizeAddress(t *testing.T) {
	address, err := service.NormalizeAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	require.NoError(t, err)
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", address.String())

	// surrounding whitespace is tolerated
	address, err = service.NormalizeAddress("  0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2\n")
	require.NoError(t, err)
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", address.String())
}

func TestNormalizeAddressIsIdempotent(t *testing.T) {
	first, err := service.NormalizeAddress("0xC02AAA39B223FE8D0A0E5C4F27EAD9083C756CC2")
	require.NoError(t, err)

	second, err := service.NormalizeAddress(first.String())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeAddressCaseInsensitiveEquality(t *testing.T) {
	lower, err := service.NormalizeAddress("0x0bc529c00c6401aef6d220be8c6ea1667f6ad93e")
	require.NoError(t, err)
	upper, err := service.NormalizeAddress("0x0BC529C00C6401AEF6D220BE8C6EA1667F6AD93E")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestNormalizeAddressRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{
		"",
		"0x123",
		"not-an-address",
		"0xZZZaaa39b223fe8d0a0e5c4f27ead9083c756cc2",
	} {
		_, err := service.NormalizeAddress(raw)
		assert.ErrorIs(t, err, service.ErrInvalidAddress, raw)
	}
}
