package memhost

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fusionlink/fusionlink/pkg/ports"
)

// commandDefinitions implements ports.CommandDefinitions. The map is
// locked because definitions are registered from caller goroutines but
// resolved and deleted from pump events.
type commandDefinitions struct {
	mu     sync.Mutex
	items  map[string]*commandDefinition
	pump   *Pump
	logger *slog.Logger
}

func newCommandDefinitions(pump *Pump, logger *slog.Logger) *commandDefinitions {
	return &commandDefinitions{
		items:  make(map[string]*commandDefinition),
		pump:   pump,
		logger: logger,
	}
}

func (d *commandDefinitions) Add(id, label string) (ports.CommandDefinition, error) {
	if id == "" {
		return nil, fmt.Errorf("command definition id cannot be empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.items[id]; exists {
		return nil, fmt.Errorf("command definition '%s' already registered", id)
	}
	def := &commandDefinition{id: id, label: label, owner: d}
	d.items[id] = def
	return def, nil
}

func (d *commandDefinitions) Item(id string) (ports.CommandDefinition, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	def, ok := d.items[id]
	return def, ok
}

func (d *commandDefinitions) remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[id]; !ok {
		return false
	}
	delete(d.items, id)
	return true
}

// commandDefinition implements ports.CommandDefinition.
type commandDefinition struct {
	id    string
	label string
	owner *commandDefinitions

	mu      sync.Mutex
	created func(ports.Command)
	deleted bool
}

func (c *commandDefinition) ID() string { return c.id }

func (c *commandDefinition) CommandCreated(handler func(ports.Command)) {
	c.mu.Lock()
	c.created = handler
	c.mu.Unlock()
}

// Execute posts the created event. The command object is built on the
// pump goroutine; if the created handler marks it auto-execute, the
// execute and destroy events are queued behind it in order, modelling
// the host processing one command's events before the next is created.
func (c *commandDefinition) Execute() error {
	c.mu.Lock()
	if c.deleted {
		c.mu.Unlock()
		return fmt.Errorf("command definition '%s' has been deleted", c.id)
	}
	created := c.created
	c.mu.Unlock()

	c.owner.pump.Post(func() {
		cmd := &command{}
		if created != nil {
			created(cmd)
		}
		if cmd.autoExecute {
			c.owner.pump.Post(func() {
				if cmd.execute != nil {
					if err := cmd.execute(); err != nil {
						c.owner.logger.Error("command execute failed", "id", c.id, "err", err)
					}
				}
				c.owner.pump.Post(func() {
					if cmd.destroy != nil {
						cmd.destroy()
					}
				})
			})
		} else {
			// Without auto-execute there is no user to drive the
			// dialog; the host tears the command straight down.
			c.owner.pump.Post(func() {
				if cmd.destroy != nil {
					cmd.destroy()
				}
			})
		}
	})
	return nil
}

func (c *commandDefinition) DeleteMe() error {
	c.mu.Lock()
	if c.deleted {
		c.mu.Unlock()
		return fmt.Errorf("command definition '%s' already deleted", c.id)
	}
	c.deleted = true
	c.mu.Unlock()

	if !c.owner.remove(c.id) {
		return fmt.Errorf("command definition '%s' not registered", c.id)
	}
	return nil
}

// command implements ports.Command. Only ever touched on the pump
// goroutine, no locking needed.
type command struct {
	execute     func() error
	destroy     func()
	autoExecute bool
}

func (c *command) OnExecute(handler func() error) { c.execute = handler }
func (c *command) OnDestroy(handler func())       { c.destroy = handler }
func (c *command) SetAutoExecute(auto bool)       { c.autoExecute = auto }
