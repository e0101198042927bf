package fusionlink_test

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionlink/fusionlink"
	"github.com/fusionlink/fusionlink/pkg/adapters/memhost"
	"github.com/fusionlink/fusionlink/pkg/client"
	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/script"
)

// startBridge runs a full bridge on an ephemeral loopback port and
// returns a client pointed at it.
func startBridge(t *testing.T, opts ...fusionlink.Option) (*fusionlink.Bridge, *client.Client) {
	t.Helper()

	opts = append([]fusionlink.Option{fusionlink.WithAddr("127.0.0.1", 0)}, opts...)
	b, err := fusionlink.New(opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Run starts the server before pumping; wait for the listener.
	require.Eventually(t, b.Server.Running, 2*time.Second, 5*time.Millisecond)

	host, portStr, err := net.SplitHostPort(b.Server.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return b, client.New(client.WithAddr(host, port))
}

func TestBridgeEndToEnd(t *testing.T) {
	_, c := startBridge(t, fusionlink.WithHostOptions(
		memhost.WithUserParameters(domain.Parameter{
			Name: "width", Value: 10, Unit: "mm", Expression: "10 mm",
		}),
	))
	ctx := context.Background()

	t.Run("execute_code", func(t *testing.T) {
		env := c.CallAction(ctx, "execute_code", map[string]any{"code": "print(1+1)"})
		require.True(t, env.Success, "error: %+v", env.Error)

		var out string
		require.NoError(t, env.DecodeResult(&out))
		assert.Equal(t, "2\n", out)
	})

	t.Run("failing script is successful with trace payload", func(t *testing.T) {
		env := c.CallAction(ctx, "execute_code", map[string]any{"code": `error("broken")`})
		require.True(t, env.Success)

		var out string
		require.NoError(t, env.DecodeResult(&out))
		assert.Contains(t, out, script.TracebackMarker)
		assert.Contains(t, out, "broken")
	})

	t.Run("unknown action", func(t *testing.T) {
		env := c.CallAction(ctx, "unknown_action", nil)
		require.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, domain.TypeInvalidUserInput, env.Error.Type)
		assert.Equal(t, "Action 'unknown_action' not found.", env.Error.Message)
	})

	t.Run("parameters round trip", func(t *testing.T) {
		env := c.CallAction(ctx, "set_parameter",
			map[string]any{"param_name": "width", "expression": "25 mm"})
		require.True(t, env.Success, "error: %+v", env.Error)

		env = c.CallAction(ctx, "get_user_parameters", nil)
		require.True(t, env.Success)

		var params []domain.Parameter
		require.NoError(t, env.DecodeResult(&params))
		require.Len(t, params, 1)
		assert.Equal(t, 25.0, params[0].Value)
		assert.Equal(t, "25 mm", params[0].Expression)
	})

	t.Run("screenshot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "view.png")
		env := c.CallAction(ctx, "get_viewport_screenshot", map[string]any{"filepath": path})
		require.True(t, env.Success, "error: %+v", env.Error)
		assert.FileExists(t, path)
	})

	t.Run("list_transactions", func(t *testing.T) {
		env := c.CallAction(ctx, "list_transactions", map[string]any{"limit": 1})
		require.True(t, env.Success)

		var recs []domain.TransactionRecord
		require.NoError(t, env.DecodeResult(&recs))
		require.Len(t, recs, 1)
		assert.NotEmpty(t, recs[0].ID)
	})
}

func TestBridgeScriptSeesHostState(t *testing.T) {
	_, c := startBridge(t, fusionlink.WithHostOptions(
		memhost.WithDocument(memhost.NewDocument("GearBox",
			domain.Parameter{Name: "teeth", Value: 24, Unit: "", Expression: "24"},
		)),
	))

	env := c.CallAction(context.Background(), "execute_code",
		map[string]any{"code": `print(design.name, params.value("teeth"))`})
	require.True(t, env.Success, "error: %+v", env.Error)

	var out string
	require.NoError(t, env.DecodeResult(&out))
	assert.Equal(t, "GearBox\t24\n", out)
}

func TestBridgeJournalRecordsLabel(t *testing.T) {
	b, c := startBridge(t)

	env := c.CallAction(context.Background(), "execute_code",
		map[string]any{"code": "print(1)", "transaction_name": "Make Gear"})
	require.True(t, env.Success)

	recs, err := b.Journal.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Make Gear", recs[0].Label)
	assert.Equal(t, "1\n", recs[0].Output)
}
