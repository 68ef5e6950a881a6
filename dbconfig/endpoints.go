package dbconfig

import (
	"context"
	"database/sql"

	"github.com/ClipFinance/defi-gateway/dbconfig/models"
	"github.com/pkg/errors"
)

// GetEndpointsByChainID returns all RPC endpoints for a given chain ID,
// optionally filtering by active status. Endpoints come back in failover
// order: ascending priority, ties broken by insertion time.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the unique identifier for the chain.
// - activeOnly: a boolean flag to filter only active endpoints.
//
// Returns:
// - []models.Endpoint: a slice of endpoint models.
// - error: an error if the database operation fails.
func (r *DBConfig) GetEndpointsByChainID(ctx context.Context, chainID uint64, activeOnly bool) ([]models.Endpoint, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	query := `
		SELECT
			id,
			chain_id,
			url,
			provider,
			priority,
			active,
			created_at,
			updated_at
		FROM endpoints
		WHERE chain_id = $1
	`

	args := []interface{}{chainID}

	if activeOnly {
		query += " AND active = $2"
		args = append(args, true)
	}

	query += " ORDER BY priority ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query endpoints")
	}
	defer rows.Close()

	var endpoints []models.Endpoint
	for rows.Next() {
		var endpoint models.Endpoint
		var provider sql.NullString
		var priority sql.NullInt64

		err := rows.Scan(
			&endpoint.ID,
			&endpoint.ChainID,
			&endpoint.URL,
			&provider,
			&priority,
			&endpoint.Active,
			&endpoint.CreatedAt,
			&endpoint.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan endpoint row")
		}

		if provider.Valid {
			endpoint.Provider = provider.String
		}
		if priority.Valid {
			endpoint.Priority = int(priority.Int64)
		}

		endpoints = append(endpoints, endpoint)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate endpoint rows")
	}

	return endpoints, nil
}
