package ports

// Workspace is the fixed capability namespace a unit of work runs
// against. It is not a sandbox: the work has the full capability of
// every binding in it.
type Workspace struct {
	App  Host
	Doc  Document
	Root Component
}

// ScriptRunner invokes an opaque unit of work against a workspace.
//
// Output carries everything the work printed. When the work itself
// fails, the failure is part of Output (prior prints, a trace marker,
// then the trace) and failed is true; callers must treat that as a
// normal, successful outcome whose payload documents the failure,
// never as a bridge error.
type ScriptRunner interface {
	Run(ws Workspace, src string) (output string, failed bool)
}
