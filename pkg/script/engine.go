// Package script runs user-supplied Lua against the host's capability
// namespace. It implements ports.ScriptRunner.
//
// The namespace is not a sandbox: scripts get full use of everything
// bound into it. What the package does guarantee is the output
// contract: everything printed is captured, and a failing script
// yields its prior output followed by a trace marker and the trace,
// as data, not as an error.
package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// TracebackMarker separates captured output from the captured trace in
// the result of a failed script. Part of the wire contract.
const TracebackMarker = "--- TRACEBACK ---"

// Engine executes Lua scripts. A fresh interpreter state is built per
// Run so no bindings or globals leak between invocations.
type Engine struct{}

// New creates a script engine.
func New() *Engine {
	return &Engine{}
}

var _ ports.ScriptRunner = (*Engine)(nil)

// Run executes src against the workspace. See ports.ScriptRunner for
// the output contract.
func (e *Engine) Run(ws ports.Workspace, src string) (string, bool) {
	var buf strings.Builder

	L := lua.NewState()
	defer L.Close()

	bindPrint(L, &buf)
	bindWorkspace(L, ws)

	if err := L.DoString(src); err != nil {
		buf.WriteString(TracebackMarker)
		buf.WriteString("\n")
		buf.WriteString(formatTrace(err))
		return buf.String(), true
	}

	return buf.String(), false
}

// bindPrint replaces the global print with one writing into buf,
// keeping Lua's print semantics (tostring each value, tab separated,
// trailing newline).
func bindPrint(L *lua.LState, buf *strings.Builder) {
	L.SetGlobal("print", L.NewFunction(func(ls *lua.LState) int {
		top := ls.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				buf.WriteString("\t")
			}
			buf.WriteString(ls.ToStringMeta(ls.Get(i)).String())
		}
		buf.WriteString("\n")
		return 0
	}))
}

// bindWorkspace exposes the fixed capability namespace:
//
//	app.name, app.version
//	design.name
//	root.name
//	params.list() -> { {name=..., value=..., unit=..., expression=..., comment=...}, ... }
//	params.value(name) -> number
//	params.set(name, expression) -> updated parameter table
//
// Bindings for absent collaborators (no open document, headless host)
// are simply left out; scripts touching them fail with a normal Lua
// error that the trace contract captures.
func bindWorkspace(L *lua.LState, ws ports.Workspace) {
	if ws.App != nil {
		app := L.NewTable()
		L.SetField(app, "name", lua.LString(ws.App.Name()))
		L.SetField(app, "version", lua.LString(ws.App.Version()))
		L.SetGlobal("app", app)
	}

	if ws.Root != nil {
		root := L.NewTable()
		L.SetField(root, "name", lua.LString(ws.Root.Name()))
		L.SetGlobal("root", root)
	}

	if ws.Doc == nil {
		return
	}
	doc := ws.Doc

	design := L.NewTable()
	L.SetField(design, "name", lua.LString(doc.Name()))
	L.SetGlobal("design", design)

	params := L.NewTable()

	L.SetField(params, "list", L.NewFunction(func(ls *lua.LState) int {
		list := ls.NewTable()
		for _, p := range doc.UserParameters().List() {
			list.Append(parameterTable(ls, p))
		}
		ls.Push(list)
		return 1
	}))

	L.SetField(params, "value", L.NewFunction(func(ls *lua.LState) int {
		name := ls.CheckString(1)
		p, ok := doc.AllParameters().ItemByName(name)
		if !ok {
			ls.RaiseError("parameter '%s' not found", name)
			return 0
		}
		ls.Push(lua.LNumber(p.Value))
		return 1
	}))

	L.SetField(params, "set", L.NewFunction(func(ls *lua.LState) int {
		name := ls.CheckString(1)
		expression := ls.CheckString(2)
		p, err := doc.AllParameters().SetExpression(name, expression)
		if err != nil {
			ls.RaiseError("%v", err)
			return 0
		}
		ls.Push(parameterTable(ls, p))
		return 1
	}))

	L.SetGlobal("params", params)
}

func parameterTable(ls *lua.LState, p domain.Parameter) *lua.LTable {
	t := ls.NewTable()
	ls.SetField(t, "name", lua.LString(p.Name))
	ls.SetField(t, "value", lua.LNumber(p.Value))
	ls.SetField(t, "unit", lua.LString(p.Unit))
	ls.SetField(t, "expression", lua.LString(p.Expression))
	ls.SetField(t, "comment", lua.LString(p.Comment))
	return t
}

// formatTrace renders a script failure as trace text. gopher-lua
// carries the Lua stack trace on its ApiError.
func formatTrace(err error) string {
	if apiErr, ok := err.(*lua.ApiError); ok {
		msg := apiErr.Object.String()
		if apiErr.StackTrace != "" {
			return fmt.Sprintf("%s\n%s", msg, apiErr.StackTrace)
		}
		return msg
	}
	return err.Error()
}
