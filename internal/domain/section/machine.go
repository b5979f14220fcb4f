// Package section implements the request/validation/render state machine that
// drives every interactive section, and the section definitions built on it.
package section

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/hackwreck/internal/domain/validate"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// Field describes one input of a section.
type Field struct {
	Name     string
	Label    string
	Required bool
	Default  string
	// Validate is the predicate used both live and at submit; nil accepts anything.
	Validate validate.Func
	// Live re-validates on every edit once the field has ever been non-empty.
	Live bool
}

// check runs the field's predicates against value.
func (f Field) check(value string) string {
	if f.Validate != nil {
		if msg := f.Validate(value); msg != "" {
			return msg
		}
	}
	if f.Required && strings.TrimSpace(value) == "" {
		return validate.Required(f.Label)(value)
	}
	return ""
}

// Definition parameterizes a Machine.
type Definition[Req, Res any] struct {
	Name   string
	Fields []Field
	// Build turns field values into the request body.
	Build func(values map[string]string) Req
	// Call issues exactly one network request.
	Call func(ctx context.Context, req Req) (Res, error)
	// ResetOnSuccess restores field defaults after a successful call.
	ResetOnSuccess bool
	// OnSuccess runs after the machine has entered Succeeded.
	OnSuccess func(ctx context.Context, res Res)
}

// Transition is reported to observers for every phase change.
type Transition func(section string, from, to Phase)

// Machine owns the form state, phase and result of one section.
// It is safe for concurrent use.
type Machine[Req, Res any] struct {
	def Definition[Req, Res]
	log logger.Logger

	mu        sync.Mutex
	values    map[string]string
	errs      map[string]string
	touched   map[string]bool
	phase     Phase
	result    Res
	hasResult bool
	errMsg    string
	observers []Transition
}

// New builds a machine in Idle with default field values.
func New[Req, Res any](def Definition[Req, Res]) *Machine[Req, Res] {
	m := &Machine[Req, Res]{
		def: def,
		log: logger.GetOrNop().Named("section"),
	}
	m.resetFieldsLocked()
	return m
}

// Name returns the section name.
func (m *Machine[Req, Res]) Name() string { return m.def.Name }

// Fields returns the field descriptors in display order.
func (m *Machine[Req, Res]) Fields() []Field {
	out := make([]Field, len(m.def.Fields))
	copy(out, m.def.Fields)
	return out
}

// OnTransition registers an observer. Observers run outside the machine lock.
func (m *Machine[Req, Res]) OnTransition(fn Transition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Edit sets one field. Unknown fields are ignored. The phase never changes.
func (m *Machine[Req, Res]) Edit(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.field(name)
	if !ok {
		return
	}
	m.values[name] = value
	if value != "" {
		m.touched[name] = true
	}
	if f.Live && m.touched[name] {
		if msg := f.check(value); msg != "" {
			m.errs[name] = msg
			return
		}
	}
	delete(m.errs, name)
}

// CanSubmit reports whether a submit attempt would reach the network.
func (m *Machine[Req, Res]) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase != Submitting && len(m.invalidLocked()) == 0
}

// Submit validates and, when valid, issues one call and blocks until it
// settles. It returns false without any phase change when a required field is
// empty, a field is invalid, or a call is already in flight.
func (m *Machine[Req, Res]) Submit(ctx context.Context) bool {
	m.mu.Lock()
	if m.phase == Submitting {
		m.mu.Unlock()
		return false
	}
	if invalid := m.invalidLocked(); len(invalid) > 0 {
		for name, msg := range invalid {
			m.errs[name] = msg
		}
		m.mu.Unlock()
		return false
	}

	var pending []Phase
	pending = append(pending, m.phase)
	m.phase = Validating
	pending = append(pending, m.phase)

	req := m.def.Build(m.copyValuesLocked())
	var zero Res
	m.result, m.hasResult, m.errMsg = zero, false, ""
	m.phase = Submitting
	pending = append(pending, m.phase)
	m.mu.Unlock()
	m.notify(pending)

	res, err := m.call(ctx, req)

	m.mu.Lock()
	from := m.phase
	if err != nil {
		m.phase = Failed
		m.errMsg = Message(err)
	} else {
		m.phase = Succeeded
		m.result, m.hasResult = res, true
		if m.def.ResetOnSuccess {
			m.resetFieldsLocked()
		}
	}
	to := m.phase
	m.mu.Unlock()

	if err != nil {
		m.log.Debug(ctx, "section call failed",
			logger.String("section", m.def.Name),
			logger.Error(err),
		)
	}
	m.notify([]Phase{from, to})

	if err == nil && m.def.OnSuccess != nil {
		m.def.OnSuccess(ctx, res)
	}
	return true
}

// call runs Definition.Call, converting a panic into an error so the machine
// always leaves Submitting.
func (m *Machine[Req, Res]) call(ctx context.Context, req Req) (res Res, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return m.def.Call(ctx, req)
}

// Phase returns the current phase.
func (m *Machine[Req, Res]) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// InFlight reports whether a call is outstanding. The submit control is
// disabled exactly while this is true.
func (m *Machine[Req, Res]) InFlight() bool {
	return m.Phase() == Submitting
}

// Values returns a copy of the field values.
func (m *Machine[Req, Res]) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyValuesLocked()
}

// Value returns one field value.
func (m *Machine[Req, Res]) Value(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name]
}

// Errors returns a copy of the visible field errors.
func (m *Machine[Req, Res]) Errors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.errs))
	for k, v := range m.errs {
		out[k] = v
	}
	return out
}

// FieldError returns the visible error for one field.
func (m *Machine[Req, Res]) FieldError(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs[name]
}

// Result returns the last successful result.
func (m *Machine[Req, Res]) Result() (Res, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.hasResult
}

// Err returns the failure message of the last call, or "".
func (m *Machine[Req, Res]) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

func (m *Machine[Req, Res]) field(name string) (Field, bool) {
	for _, f := range m.def.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// invalidLocked evaluates every field with the same predicates as live validation.
func (m *Machine[Req, Res]) invalidLocked() map[string]string {
	invalid := map[string]string{}
	for _, f := range m.def.Fields {
		if msg := f.check(m.values[f.Name]); msg != "" {
			invalid[f.Name] = msg
		}
	}
	return invalid
}

func (m *Machine[Req, Res]) copyValuesLocked() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *Machine[Req, Res]) resetFieldsLocked() {
	m.values = make(map[string]string, len(m.def.Fields))
	m.errs = map[string]string{}
	m.touched = map[string]bool{}
	for _, f := range m.def.Fields {
		m.values[f.Name] = f.Default
	}
}

// notify reports consecutive phase pairs from path to metrics and observers.
func (m *Machine[Req, Res]) notify(path []Phase) {
	m.mu.Lock()
	observers := append([]Transition(nil), m.observers...)
	m.mu.Unlock()

	for i := 1; i < len(path); i++ {
		metrics.RecordSectionTransition(m.def.Name, path[i].String())
		for _, fn := range observers {
			fn(m.def.Name, path[i-1], path[i])
		}
	}
}
