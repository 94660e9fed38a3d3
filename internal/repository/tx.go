package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type txBeginner struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTxBeginner creates a TxBeginner over the pool.
func NewTxBeginner(pool *pgxpool.Pool, logger zerolog.Logger) TxBeginner {
	return &txBeginner{
		pool:   pool,
		logger: logger.With().Str("repository", "tx").Logger(),
	}
}

// BeginTx starts a new read-committed transaction.
func (b *txBeginner) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}
