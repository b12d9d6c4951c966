package quadstore

import "github.com/aleksaelezovic/ligature/pkg/store"

// readTx is a snapshot taken when the transaction was opened
type readTx struct {
	*view
}

var _ store.ReadTx = (*readTx)(nil)

// Cancel releases the snapshot
func (tx *readTx) Cancel() error {
	return tx.cancel()
}
