/*
Package ports defines the driven ports (interfaces) of the bridge.

These interfaces decouple the bridge from the concrete CAD host, the
script engine, and the journal backend. The real CAD application is an
external collaborator; pkg/adapters/memhost ships a reference
implementation with the same single-threaded command lifecycle.

# Key Interfaces

  - Host: the application handle (documents, command definitions, viewport).
  - EventPump: the host's cooperative single-threaded event loop.
  - ScriptRunner: invokes an opaque unit of work against a fixed capability namespace.
  - JournalStore: persists one record per committed transaction.
*/
package ports
