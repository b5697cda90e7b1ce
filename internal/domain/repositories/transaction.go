package repositories

import "context"

// TxFn runs inside a transaction. The transaction rides in the context and
// the repositories pick it up transparently.
type TxFn func(ctx context.Context) error

// TransactionManager groups repository calls into one transaction. The
// history delete path uses it so the ownership check and the row removal
// see the same snapshot.
type TransactionManager interface {
	// ExecTx runs fn in a transaction, committing on nil and rolling back
	// on error or panic.
	ExecTx(ctx context.Context, fn TxFn) error
}
