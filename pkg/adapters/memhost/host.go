// Package memhost is an in-memory reference implementation of the
// host ports: a single-goroutine cooperative event pump, a command
// registry with the created -> execute -> destroy lifecycle, a design
// document with user parameters, and a viewport that renders to PNG.
//
// It exists so the bridge is runnable and testable without the real
// CAD application, while preserving the property the bridge is built
// around: host objects are only touched on the pump goroutine.
package memhost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// Host implements ports.Host.
type Host struct {
	name     string
	version  string
	pump     *Pump
	defs     *commandDefinitions
	doc      *Document
	viewport *Viewport
	logger   *slog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithName sets the application name scripts see as app.name.
func WithName(name string) Option {
	return func(h *Host) { h.name = name }
}

// WithVersion sets the application version.
func WithVersion(version string) Option {
	return func(h *Host) { h.version = version }
}

// WithDocument sets the active document.
func WithDocument(doc *Document) Option {
	return func(h *Host) { h.doc = doc }
}

// WithUserParameters seeds the default document's user parameters.
// Ignored when WithDocument is also given.
func WithUserParameters(params ...domain.Parameter) Option {
	return func(h *Host) {
		if h.doc == nil {
			h.doc = NewDocument("Untitled", params...)
		}
	}
}

// WithViewport sets the active viewport.
func WithViewport(v *Viewport) Option {
	return func(h *Host) { h.viewport = v }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// New creates a host with an idle pump, a default "Untitled" document
// and a default viewport. Call Run (or keep calling Drain in tests)
// to dispatch events.
func New(opts ...Option) *Host {
	h := &Host{
		name:    "fusionlink-host",
		version: "0.0.0",
		pump:    NewPump(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.doc == nil {
		h.doc = NewDocument("Untitled")
	}
	if h.viewport == nil {
		h.viewport = NewViewport(0, 0)
	}
	h.defs = newCommandDefinitions(h.pump, h.logger)
	return h
}

var _ ports.Host = (*Host)(nil)

func (h *Host) Name() string          { return h.name }
func (h *Host) Version() string       { return h.version }
func (h *Host) Pump() ports.EventPump { return h.pump }

// Run drives the event pump on the calling goroutine until ctx is
// canceled. This goroutine is the host's dispatch thread.
func (h *Host) Run(ctx context.Context) {
	h.logger.Info("host event pump running", "name", h.name)
	h.pump.Run(ctx)
	h.logger.Info("host event pump stopped")
}

// Drain synchronously dispatches all queued events. Test helper.
func (h *Host) Drain() { h.pump.Drain() }

func (h *Host) ActiveDocument() (ports.Document, error) {
	if h.doc == nil {
		return nil, fmt.Errorf("no active document")
	}
	return h.doc, nil
}

func (h *Host) ActiveViewport() (ports.Viewport, error) {
	if h.viewport == nil {
		return nil, fmt.Errorf("no active viewport")
	}
	return h.viewport, nil
}

func (h *Host) CommandDefinitions() ports.CommandDefinitions { return h.defs }
