package dbconfig

import "github.com/pkg/errors"

var (
	ErrInvalidChainID = errors.New("invalid chain id")
)
