// Package actions maps action names to handlers and classifies every
// handler failure into the bridge error taxonomy. No error may escape
// Dispatch unconverted.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/executor"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// Handler executes one named action. It returns a JSON-serializable
// result, a *domain.Error for classified failures, or any other error
// for the dispatcher to classify.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Deps carries the collaborators the built-in actions need.
type Deps struct {
	Host     ports.Host
	Executor *executor.Executor
	Journal  ports.JournalStore
	Logger   *slog.Logger
}

// Registry is the static action table. It is built once at
// construction and never mutated afterwards, so lookups need no lock.
type Registry struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry builds the registry with the built-in actions.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	r := &Registry{
		handlers: make(map[string]Handler),
		logger:   deps.Logger,
	}
	r.handlers["execute_code"] = executeCode(deps)
	r.handlers["get_viewport_screenshot"] = getViewportScreenshot(deps)
	r.handlers["get_user_parameters"] = getUserParameters(deps)
	r.handlers["set_parameter"] = setParameter(deps)
	if deps.Journal != nil {
		r.handlers["list_transactions"] = listTransactions(deps)
	}
	return r
}

// Names lists the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch invokes the named action. The returned error is always a
// *domain.Error: unknown names are invalid input, classified errors
// pass through, anything else is wrapped as an execution error naming
// the action.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (result any, derr *domain.Error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, domain.NewInvalidUserInput(fmt.Sprintf("Action '%s' not found.", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("action handler panicked", "action", name, "panic", rec)
			result = nil
			derr = domain.NewExecutionError(name, fmt.Errorf("handler panicked: %v", rec))
		}
	}()

	result, err := handler(ctx, params)
	if err == nil {
		return result, nil
	}
	if be, ok := domain.AsError(err); ok {
		return nil, be
	}
	return nil, domain.NewExecutionError(name,
		fmt.Errorf("an error occurred during execution in the CAD host: %w", err))
}
