package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is the canonical, comparison-ready form of an on-chain address.
// It is the join key for every entity collection in the aggregate.
type Address string

var ErrInvalidAddress = errors.New("invalid address")

// NormalizeAddress canonicalizes a raw address string into its EIP-55
// checksummed form. Normalization is idempotent and two inputs differing
// only by case normalize to the same Address.
func NormalizeAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	return Address(common.HexToAddress(trimmed).Hex()), nil
}

func (a Address) String() string {
	return string(a)
}
