package memhost

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// Document is an in-memory design document. Like the real host's
// objects it is pump-confined: it carries no locks and must only be
// used from events running on the pump goroutine.
type Document struct {
	name   string
	root   *Component
	params *parameterSet
}

// NewDocument creates a document with a root component and the given
// user parameters.
func NewDocument(name string, params ...domain.Parameter) *Document {
	return &Document{
		name:   name,
		root:   &Component{name: name},
		params: newParameterSet(params),
	}
}

func (d *Document) Name() string                       { return d.name }
func (d *Document) RootComponent() ports.Component     { return d.root }
func (d *Document) UserParameters() ports.ParameterSet { return d.params }

// AllParameters spans user and model parameters. The reference host
// has no modeled features, so the sets coincide.
func (d *Document) AllParameters() ports.ParameterSet { return d.params }

// Component is a named design component.
type Component struct {
	name string
}

func (c *Component) Name() string { return c.name }

type parameterSet struct {
	order  []string
	byName map[string]*domain.Parameter
}

func newParameterSet(params []domain.Parameter) *parameterSet {
	s := &parameterSet{byName: make(map[string]*domain.Parameter)}
	for _, p := range params {
		if _, dup := s.byName[p.Name]; dup {
			continue
		}
		cp := p
		s.order = append(s.order, p.Name)
		s.byName[p.Name] = &cp
	}
	return s
}

func (s *parameterSet) List() []domain.Parameter {
	out := make([]domain.Parameter, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.byName[name])
	}
	return out
}

func (s *parameterSet) ItemByName(name string) (domain.Parameter, bool) {
	p, ok := s.byName[name]
	if !ok {
		return domain.Parameter{}, false
	}
	return *p, true
}

// SetExpression updates a parameter from an expression of the form
// "<value> <unit>" or a bare number (keeping the current unit).
func (s *parameterSet) SetExpression(name, expression string) (domain.Parameter, error) {
	p, ok := s.byName[name]
	if !ok {
		return domain.Parameter{}, fmt.Errorf("parameter '%s' not found", name)
	}

	value, unit, err := parseExpression(expression)
	if err != nil {
		return domain.Parameter{}, fmt.Errorf("invalid expression for '%s': %w", name, err)
	}
	if unit == "" {
		unit = p.Unit
	}

	p.Value = value
	p.Unit = unit
	p.Expression = expression
	return *p, nil
}

func parseExpression(expression string) (float64, string, error) {
	fields := strings.Fields(expression)
	switch len(fields) {
	case 1:
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, "", fmt.Errorf("not a numeric expression: %q", expression)
		}
		return value, "", nil
	case 2:
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, "", fmt.Errorf("not a numeric expression: %q", expression)
		}
		return value, fields[1], nil
	default:
		return 0, "", fmt.Errorf("expected '<value> <unit>', got %q", expression)
	}
}
