package actions_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionlink/fusionlink/pkg/actions"
	"github.com/fusionlink/fusionlink/pkg/adapters/memhost"
	"github.com/fusionlink/fusionlink/pkg/adapters/memory"
	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/executor"
	"github.com/fusionlink/fusionlink/pkg/script"
)

type fixture struct {
	host     *memhost.Host
	journal  *memory.Journal
	registry *actions.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	host := memhost.New(memhost.WithDocument(memhost.NewDocument("Bracket",
		domain.Parameter{Name: "width", Value: 10, Unit: "mm", Expression: "10 mm"},
	)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go host.Run(ctx)

	journal := memory.NewJournal()
	x := executor.New(host, script.New(), executor.WithJournal(journal))
	registry := actions.NewRegistry(actions.Deps{
		Host:     host,
		Executor: x,
		Journal:  journal,
	})
	return &fixture{host: host, journal: journal, registry: registry}
}

func TestRegistryNames(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{
		"execute_code",
		"get_user_parameters",
		"get_viewport_screenshot",
		"list_transactions",
		"set_parameter",
	}, f.registry.Names())
}

func TestRegistryWithoutJournalHasNoListAction(t *testing.T) {
	host := memhost.New()
	registry := actions.NewRegistry(actions.Deps{
		Host:     host,
		Executor: executor.New(host, script.New()),
	})
	assert.NotContains(t, registry.Names(), "list_transactions")
}

func TestDispatchUnknownAction(t *testing.T) {
	f := newFixture(t)

	_, derr := f.registry.Dispatch(context.Background(), "unknown_action", nil)
	require.NotNil(t, derr)
	assert.Equal(t, domain.TypeInvalidUserInput, derr.Type)
	assert.Equal(t, "Action 'unknown_action' not found.", derr.Message)
}

func TestDispatchExecuteCode(t *testing.T) {
	f := newFixture(t)

	t.Run("runs and returns output", func(t *testing.T) {
		result, derr := f.registry.Dispatch(context.Background(), "execute_code",
			map[string]any{"code": "print(1+1)"})
		require.Nil(t, derr)
		assert.Equal(t, "2\n", result)
	})

	t.Run("empty code", func(t *testing.T) {
		_, derr := f.registry.Dispatch(context.Background(), "execute_code",
			map[string]any{"code": ""})
		require.NotNil(t, derr)
		assert.Equal(t, domain.TypeInvalidUserInput, derr.Type)
		assert.Equal(t, "Parameter 'code' cannot be empty for action 'execute_code'", derr.Message)
	})

	t.Run("unknown parameter key", func(t *testing.T) {
		_, derr := f.registry.Dispatch(context.Background(), "execute_code",
			map[string]any{"code": "print(1)", "cod": "typo"})
		require.NotNil(t, derr)
		assert.Equal(t, domain.TypeInvalidUserInput, derr.Type)
	})

	t.Run("failing script is a successful dispatch", func(t *testing.T) {
		result, derr := f.registry.Dispatch(context.Background(), "execute_code",
			map[string]any{"code": `error("nope")`})
		require.Nil(t, derr)
		assert.Contains(t, result.(string), script.TracebackMarker)
	})
}

func TestDispatchGetViewportScreenshot(t *testing.T) {
	f := newFixture(t)

	t.Run("writes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shot.png")
		result, derr := f.registry.Dispatch(context.Background(), "get_viewport_screenshot",
			map[string]any{"filepath": path})
		require.Nil(t, derr)
		assert.Equal(t, map[string]string{"filepath": path}, result)

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("empty filepath", func(t *testing.T) {
		_, derr := f.registry.Dispatch(context.Background(), "get_viewport_screenshot",
			map[string]any{"filepath": ""})
		require.NotNil(t, derr)
		assert.Equal(t, domain.TypeInvalidUserInput, derr.Type)
	})

	t.Run("unwritable path is an execution error", func(t *testing.T) {
		_, derr := f.registry.Dispatch(context.Background(), "get_viewport_screenshot",
			map[string]any{"filepath": filepath.Join(t.TempDir(), "missing", "dir", "shot.png")})
		require.NotNil(t, derr)
		assert.Equal(t, domain.TypeExecutionError, derr.Type)
		assert.Contains(t, derr.Message, "get_viewport_screenshot")
	})
}

func TestDispatchParameters(t *testing.T) {
	f := newFixture(t)

	t.Run("get_user_parameters", func(t *testing.T) {
		result, derr := f.registry.Dispatch(context.Background(), "get_user_parameters", nil)
		require.Nil(t, derr)

		params, ok := result.([]domain.Parameter)
		require.True(t, ok)
		require.Len(t, params, 1)
		assert.Equal(t, "width", params[0].Name)
	})

	t.Run("set_parameter", func(t *testing.T) {
		result, derr := f.registry.Dispatch(context.Background(), "set_parameter",
			map[string]any{"param_name": "width", "expression": "42 mm"})
		require.Nil(t, derr)

		p, ok := result.(domain.Parameter)
		require.True(t, ok)
		assert.Equal(t, 42.0, p.Value)
	})

	t.Run("set_parameter missing name", func(t *testing.T) {
		_, derr := f.registry.Dispatch(context.Background(), "set_parameter",
			map[string]any{"expression": "42 mm"})
		require.NotNil(t, derr)
		assert.Equal(t, domain.TypeInvalidUserInput, derr.Type)
		assert.Equal(t, "Parameter 'param_name' cannot be empty", derr.Message)
	})

	t.Run("set_parameter unknown name", func(t *testing.T) {
		_, derr := f.registry.Dispatch(context.Background(), "set_parameter",
			map[string]any{"param_name": "missing", "expression": "1 mm"})
		require.NotNil(t, derr)
		assert.Equal(t, domain.TypeExecutionError, derr.Type)
	})
}

func TestDispatchListTransactions(t *testing.T) {
	f := newFixture(t)

	for _, code := range []string{"print(1)", "print(2)", "print(3)"} {
		_, derr := f.registry.Dispatch(context.Background(), "execute_code",
			map[string]any{"code": code})
		require.Nil(t, derr)
	}

	result, derr := f.registry.Dispatch(context.Background(), "list_transactions",
		map[string]any{"limit": 2})
	require.Nil(t, derr)

	recs, ok := result.([]domain.TransactionRecord)
	require.True(t, ok)
	require.Len(t, recs, 2)
	assert.Equal(t, "3\n", recs[0].Output)
	assert.Equal(t, "2\n", recs[1].Output)
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	// Exercise the dispatcher's panic guard through a handler whose
	// collaborator panics: a nil executor dereference inside
	// execute_code.
	registry := actions.NewRegistry(actions.Deps{
		Host:     memhost.New(),
		Executor: nil,
	})

	_, derr := registry.Dispatch(context.Background(), "execute_code",
		map[string]any{"code": "print(1)"})
	require.NotNil(t, derr)
	assert.Equal(t, domain.TypeExecutionError, derr.Type)
	assert.Contains(t, derr.Message, "execute_code")
}
