package dbconfig

import (
	"context"
	"database/sql"

	"github.com/ClipFinance/defi-gateway/dbconfig/models"
	"github.com/pkg/errors"
)

// GetTokensByChainID returns all active registry tokens for a given
// chain ID.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the unique identifier for the chain.
//
// Returns:
// - []models.Token: a slice of token models.
// - error: an error if the database operation fails.
func (r *DBConfig) GetTokensByChainID(ctx context.Context, chainID uint64) ([]models.Token, error) {
	if chainID == 0 {
		return nil, ErrInvalidChainID
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id,
			chain_id,
			address,
			symbol,
			name,
			decimals,
			active,
			created_at,
			updated_at
		FROM tokens
		WHERE chain_id = $1 AND active = true
		ORDER BY symbol ASC
	`, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tokens")
	}
	defer rows.Close()

	var tokens []models.Token
	for rows.Next() {
		var token models.Token
		var name sql.NullString

		err := rows.Scan(
			&token.ID,
			&token.ChainID,
			&token.Address,
			&token.Symbol,
			&name,
			&token.Decimals,
			&token.Active,
			&token.CreatedAt,
			&token.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan token row")
		}

		if name.Valid {
			token.Name = name.String
		}

		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate token rows")
	}

	return tokens, nil
}
