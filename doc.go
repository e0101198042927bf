/*
Package fusionlink bridges remote agents into a long-running,
single-threaded, event-driven CAD host.

The host only executes work through queued, asynchronously dispatched
events on its own dispatch thread. fusionlink turns that into a
synchronous call surface: an HTTP server inside the host process maps
POST /{action} onto named actions, and a transactional executor wraps
each unit of work in a create -> execute -> destroy command chain on
the host's event pump, blocking the calling goroutine until the chain
has fully completed.

# Architecture

  - pkg/domain: error taxonomy and the response envelope (the wire contract).
  - pkg/ports: host, script-engine and journal interfaces.
  - pkg/executor: the synchronous-execution-over-event-loop adapter.
  - pkg/script: Lua engine running user code against the capability namespace.
  - pkg/actions: static action registry and the built-in handlers.
  - pkg/bridge: the loopback HTTP server.
  - pkg/client: the remote-side client with transport-failure classification.
  - pkg/adapters/memhost: in-memory reference host (event pump, commands, document, viewport).
  - pkg/adapters/memory, pkg/adapters/redis: transaction journal stores.
  - pkg/adapters/mcp: Model Context Protocol server over the client.

# Usage

	b, err := fusionlink.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Run starts the HTTP server and drives the host event pump on
	// the calling goroutine until ctx is canceled.
	if err := b.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package fusionlink
