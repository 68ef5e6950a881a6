package models

import "time"

// Token is one row of the tokens table: an ERC20 registry entry.
type Token struct {
	ID        int64
	ChainID   uint64
	Address   string
	Symbol    string
	Name      string
	Decimals  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
