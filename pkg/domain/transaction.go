package domain

import (
	"errors"
	"time"
)

// ErrTransactionNotFound is returned when a journal record cannot be
// found for a transaction id.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRecord is one committed transaction in the journal: a
// single undoable unit of host-model mutation, bounded by the
// created -> execute -> destroy command lifecycle.
type TransactionRecord struct {
	// ID is the process-unique transaction identifier.
	ID string `json:"id"`
	// Label is the human-readable transaction name shown in the
	// host's undo history.
	Label string `json:"label"`
	// Output is the captured output of the executed work, including
	// any captured trace for scripts that failed.
	Output string `json:"output"`
	// Err is the bridge-level error text, empty when the transaction
	// chain completed normally. A failing script is NOT a bridge
	// error and leaves Err empty.
	Err string `json:"error,omitempty"`
	// Started is when the transaction was triggered on the host.
	Started time.Time `json:"started"`
	// Duration covers trigger to destroy-phase completion.
	Duration time.Duration `json:"duration"`
}
