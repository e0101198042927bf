package ports

import "github.com/fusionlink/fusionlink/pkg/domain"

// EventPump is the host's cooperative event loop. The host runs every
// posted event serially on its single dispatch goroutine; Post is safe
// to call from any goroutine and returns without waiting.
//
// All host objects (documents, commands, viewport) may only be touched
// from inside posted events. Touching them from another goroutine
// bypasses the command mechanism and is unsafe.
type EventPump interface {
	Post(event func())
}

// Host is the application handle exposed to the bridge: the minimal
// surface of the CAD application the executor and the actions need.
type Host interface {
	// Name identifies the application (shown to scripts as app.name).
	Name() string
	// Version is the application version string.
	Version() string
	// Pump returns the host's event pump.
	Pump() EventPump
	// ActiveDocument returns the currently open document.
	ActiveDocument() (Document, error)
	// ActiveViewport returns the viewport of the active document.
	ActiveViewport() (Viewport, error)
	// CommandDefinitions is the host-wide command registry.
	CommandDefinitions() CommandDefinitions
}

// CommandDefinitions registers and resolves command definitions.
// A definition registered by the executor is temporary: it is deleted
// in the destroy phase so repeated calls never leak commands.
type CommandDefinitions interface {
	// Add registers a new definition. Fails if the id is taken.
	Add(id, label string) (CommandDefinition, error)
	// Item resolves a definition by id.
	Item(id string) (CommandDefinition, bool)
}

// CommandDefinition is one registered command. Execute schedules the
// created event on the pump; the created handler receives the live
// Command to attach its phase handlers to.
type CommandDefinition interface {
	ID() string
	// CommandCreated registers the created handler. Must be called
	// before Execute.
	CommandCreated(handler func(Command))
	// Execute triggers the command on the host.
	Execute() error
	// DeleteMe unregisters this definition.
	DeleteMe() error
}

// Command is the live command object handed to the created handler.
// All three phase handlers run on the pump goroutine.
type Command interface {
	// OnExecute registers the execute-phase handler. The handler's
	// error marks the transaction as failed at the bridge level; a
	// failing user script must NOT be reported here.
	OnExecute(handler func() error)
	// OnDestroy registers the destroy-phase handler, invoked when the
	// host tears the command down, even after an execute failure.
	OnDestroy(handler func())
	// SetAutoExecute marks the command for immediate execution with
	// no user interaction.
	SetAutoExecute(auto bool)
}

// Document is the active design document.
type Document interface {
	Name() string
	RootComponent() Component
	// UserParameters lists the user-defined parameters.
	UserParameters() ParameterSet
	// AllParameters spans user and model parameters.
	AllParameters() ParameterSet
}

// Component is a component of the design. Scripts receive the root
// component as `root`.
type Component interface {
	Name() string
}

// ParameterSet is a named collection of design parameters.
type ParameterSet interface {
	List() []domain.Parameter
	ItemByName(name string) (domain.Parameter, bool)
	// SetExpression updates a parameter from an expression such as
	// "12.5 mm" and returns the updated parameter.
	SetExpression(name, expression string) (domain.Parameter, error)
}

// Viewport is the drawable area of the active document.
type Viewport interface {
	// SaveAsImageFile renders the viewport to an image file. Zero
	// width/height means the viewport's on-screen size.
	SaveAsImageFile(filepath string, width, height int) error
}
