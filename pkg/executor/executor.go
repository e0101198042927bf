// Package executor converts the host's asynchronous, callback-based
// command API into a synchronous call.
//
// The host only runs command callbacks on its own dispatch goroutine
// inside its event pump. A call arriving on any other goroutine (the
// HTTP handler) cannot touch host objects directly; it schedules a
// command, lets the host drain its queue through the created ->
// execute -> destroy chain, and blocks on the per-invocation
// ExecutionState until the destroy phase publishes completion.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// DefaultLabel names transactions whose caller gave no name. The label
// is what the host shows in its undo history.
const DefaultLabel = "Script Execution"

// Executor runs units of work as single undoable host transactions.
type Executor struct {
	host    ports.Host
	runner  ports.ScriptRunner
	journal ports.JournalStore
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithJournal records every completed transaction into the store.
func WithJournal(store ports.JournalStore) Option {
	return func(x *Executor) {
		x.journal = store
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Executor) {
		x.logger = logger
	}
}

// New creates an Executor bound to a host and a script runner.
func New(host ports.Host, runner ports.ScriptRunner, opts ...Option) *Executor {
	x := &Executor{
		host:   host,
		runner: runner,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute runs work as one undoable transaction labeled label and
// returns its captured output once the command chain has fully
// completed.
//
// A failing script is a normal outcome: its output documents the
// failure (prior prints, trace marker, trace). The returned error is
// reserved for the bridge itself: empty work, a host that cannot be
// reached, or a command environment that cannot be constructed.
//
// There is no executor-side timeout. An infinite host hang surfaces
// as the remote client's own timeout; ctx exists so tests and CLI
// callers can still bound the wait.
func (x *Executor) Execute(ctx context.Context, work, label string) (string, error) {
	if strings.TrimSpace(work) == "" {
		return "", domain.NewInvalidUserInput("transaction work payload cannot be empty")
	}
	if label == "" {
		label = DefaultLabel
	}

	ws := x.workspace()
	state := newExecutionState()
	started := time.Now()

	// Process-unique id so the temporary definition never collides
	// with any other registered command on the host.
	txID := "fusionlink_tx_" + uuid.NewString()

	def, err := x.host.CommandDefinitions().Add(txID, label)
	if err != nil {
		return "", domain.NewExecutionError(label, fmt.Errorf("could not register transaction command: %w", err))
	}

	scriptFailed := false

	def.CommandCreated(func(cmd ports.Command) {
		// Setup failure must record the error and finish
		// immediately, or the caller would wait forever.
		defer func() {
			if r := recover(); r != nil {
				state.fail(domain.NewExecutionError(label, fmt.Errorf("command setup failed: %v", r)))
				state.finish()
			}
		}()
		if cmd == nil {
			panic("host delivered no command object")
		}

		cmd.OnExecute(func() error {
			output, failed := x.runner.Run(ws, work)
			scriptFailed = failed
			state.setResult(output)
			return nil
		})

		cmd.OnDestroy(func() {
			// Drop the temporary definition so repeated calls
			// never leak registered commands, then publish
			// completion unconditionally.
			if err := def.DeleteMe(); err != nil {
				x.logger.Warn("failed to delete transaction command", "id", txID, "err", err)
			}
			state.finish()
		})

		cmd.SetAutoExecute(true)
	})

	if err := def.Execute(); err != nil {
		if delErr := def.DeleteMe(); delErr != nil {
			x.logger.Warn("failed to delete transaction command", "id", txID, "err", delErr)
		}
		return "", domain.NewExecutionError(label, fmt.Errorf("could not trigger transaction command: %w", err))
	}

	if err := state.Wait(ctx); err != nil {
		return "", domain.NewExecutionError(label, fmt.Errorf("wait for transaction aborted: %w", err))
	}

	hostErr := state.HostErr()
	result := state.Result()
	x.record(domain.TransactionRecord{
		ID:       txID,
		Label:    label,
		Output:   result,
		Err:      errText(hostErr),
		Started:  started,
		Duration: time.Since(started),
	})

	if hostErr != nil {
		return "", hostErr
	}

	x.logger.Debug("transaction completed",
		"id", txID, "label", label, "script_failed", scriptFailed,
		"duration", time.Since(started))
	return result, nil
}

// workspace builds the capability namespace. A headless host or a
// missing document just leaves bindings absent; the work decides what
// it needs.
func (x *Executor) workspace() ports.Workspace {
	ws := ports.Workspace{App: x.host}
	doc, err := x.host.ActiveDocument()
	if err != nil {
		x.logger.Debug("no active document for workspace", "err", err)
		return ws
	}
	ws.Doc = doc
	ws.Root = doc.RootComponent()
	return ws
}

func (x *Executor) record(rec domain.TransactionRecord) {
	if x.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := x.journal.Append(ctx, rec); err != nil {
		x.logger.Warn("failed to journal transaction", "id", rec.ID, "err", err)
	}
}

func errText(err *domain.Error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
