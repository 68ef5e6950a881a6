package types

import (
	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ParseAddress parses a hex address string into its canonical form.
// Parsing is case-insensitive; the returned address prints checksummed.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(commonerrors.ErrInvalidAddress, "not a hex address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseTxHash parses a 32-byte transaction hash string.
func ParseTxHash(s string) (common.Hash, error) {
	if len(s) != 66 || s[:2] != "0x" {
		return common.Hash{}, errors.Wrapf(commonerrors.ErrInvalidAddress, "not a transaction hash: %q", s)
	}
	for _, c := range s[2:] {
		if !isHexDigit(c) {
			return common.Hash{}, errors.Wrapf(commonerrors.ErrInvalidAddress, "not a transaction hash: %q", s)
		}
	}
	return common.HexToHash(s), nil
}

func isHexDigit(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
