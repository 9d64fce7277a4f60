package service

import (
	"context"
	"fmt"

	"lotto/events"
	"lotto/models"
)

// RecordBalanceChange records a ledger entry and emits the balance change
// event. This is the single entry point for all balance changes in the
// system; the event is flushed only after the enclosing transaction commits.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, txn *models.BalanceTransaction) error {
	if err := uow.LedgerRepository().Record(ctx, txn); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:  txn.AccountID,
		OldBalance: txn.BalanceBefore,
		NewBalance: txn.BalanceAfter,
		Kind:       txn.Kind,
		Amount:     txn.Amount,
	})

	return nil
}
