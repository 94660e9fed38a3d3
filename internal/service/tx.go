package service

import (
	"context"
	"fmt"

	"pizza-maniac/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// inTx runs fn inside a transaction, committing on success and rolling back
// when fn fails. Errors returned by fn are passed through unwrapped.
func inTx(ctx context.Context, txs repository.TxBeginner, logger zerolog.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := txs.BeginTx(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
