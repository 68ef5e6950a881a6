package models

import "time"

// Endpoint is one row of the endpoints table: an RPC URL for a chain
// with its position in the failover order.
type Endpoint struct {
	ID        int64
	ChainID   uint64
	URL       string
	Provider  string
	Priority  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
