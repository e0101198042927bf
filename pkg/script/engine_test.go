package script_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionlink/fusionlink/pkg/adapters/memhost"
	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
	"github.com/fusionlink/fusionlink/pkg/script"
)

func testWorkspace(t *testing.T, params ...domain.Parameter) ports.Workspace {
	t.Helper()

	host := memhost.New(
		memhost.WithName("fusionlink-host"),
		memhost.WithVersion("1.2.3"),
		memhost.WithDocument(memhost.NewDocument("Bracket", params...)),
	)
	doc, err := host.ActiveDocument()
	require.NoError(t, err)

	return ports.Workspace{App: host, Doc: doc, Root: doc.RootComponent()}
}

func TestRunCapturesPrint(t *testing.T) {
	eng := script.New()

	out, failed := eng.Run(testWorkspace(t), "print(1+1)")
	assert.False(t, failed)
	assert.Equal(t, "2\n", out)
}

func TestRunPrintSemantics(t *testing.T) {
	eng := script.New()

	out, failed := eng.Run(testWorkspace(t), `print("a", 1, true)`)
	assert.False(t, failed)
	assert.Equal(t, "a\t1\ttrue\n", out)
}

func TestRunFailureKeepsOutputAndTrace(t *testing.T) {
	eng := script.New()

	out, failed := eng.Run(testWorkspace(t), `print("before")
error("boom")`)
	assert.True(t, failed)

	// Output printed before the failure survives, then the marker,
	// then the trace.
	before, trace, found := strings.Cut(out, script.TracebackMarker)
	require.True(t, found, "trace marker missing in %q", out)
	assert.Equal(t, "before\n", before)
	assert.Contains(t, trace, "boom")
}

func TestRunSyntaxErrorIsATrace(t *testing.T) {
	eng := script.New()

	out, failed := eng.Run(testWorkspace(t), "print(")
	assert.True(t, failed)
	assert.Contains(t, out, script.TracebackMarker)
}

func TestRunStateDoesNotLeakBetweenInvocations(t *testing.T) {
	eng := script.New()
	ws := testWorkspace(t)

	_, failed := eng.Run(ws, "leaked = 42")
	require.False(t, failed)

	out, failed := eng.Run(ws, "print(leaked)")
	assert.False(t, failed)
	assert.Equal(t, "nil\n", out)
}

func TestWorkspaceBindings(t *testing.T) {
	eng := script.New()
	ws := testWorkspace(t, domain.Parameter{
		Name:       "width",
		Value:      12.5,
		Unit:       "mm",
		Expression: "12.5 mm",
	})

	t.Run("app and design", func(t *testing.T) {
		out, failed := eng.Run(ws, `print(app.name, app.version, design.name, root.name)`)
		assert.False(t, failed)
		assert.Equal(t, "fusionlink-host\t1.2.3\tBracket\tBracket\n", out)
	})

	t.Run("params.value", func(t *testing.T) {
		out, failed := eng.Run(ws, `print(params.value("width"))`)
		assert.False(t, failed)
		assert.Equal(t, "12.5\n", out)
	})

	t.Run("params.list", func(t *testing.T) {
		out, failed := eng.Run(ws, `local p = params.list()[1]
print(p.name, p.unit, p.expression)`)
		assert.False(t, failed)
		assert.Equal(t, "width\tmm\t12.5 mm\n", out)
	})

	t.Run("params.set", func(t *testing.T) {
		out, failed := eng.Run(ws, `local p = params.set("width", "20 mm")
print(p.value, p.unit)`)
		assert.False(t, failed)
		assert.Equal(t, "20\tmm\n", out)

		got, ok := ws.Doc.AllParameters().ItemByName("width")
		assert.True(t, ok)
		assert.Equal(t, 20.0, got.Value)
	})

	t.Run("unknown parameter raises", func(t *testing.T) {
		out, failed := eng.Run(ws, `params.value("missing")`)
		assert.True(t, failed)
		assert.Contains(t, out, "parameter 'missing' not found")
	})
}
