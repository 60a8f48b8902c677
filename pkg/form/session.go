package form

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-productform/pkg/navigation"
	"github.com/goliatone/go-productform/pkg/render"
	"github.com/goliatone/go-productform/pkg/schema"
	"github.com/goliatone/go-productform/pkg/validation"
)

// DefaultPictureField is the field-array whose items become pictures.
const DefaultPictureField = "photos"

// State is the lifecycle position of a Session.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateSubmittingParent
	StateSubmittingChildren
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmittingParent:
		return "submitting-parent"
	case StateSubmittingChildren:
		return "submitting-children"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Busy reports whether a submission is in flight.
func (s State) Busy() bool {
	return s == StateValidating || s == StateSubmittingParent || s == StateSubmittingChildren
}

// Option configures a Session.
type Option func(*Session)

// WithValidator replaces the rule-based validator derived from the schema.
func WithValidator(v Validator) Option {
	return func(s *Session) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithNavigator registers the navigation callback invoked after success.
func WithNavigator(n Navigator) Option {
	return func(s *Session) {
		s.navigator = n
	}
}

// WithRoutes overrides the navigation route table.
func WithRoutes(routes *navigation.Routes) Option {
	return func(s *Session) {
		if routes != nil {
			s.routes = routes
		}
	}
}

// WithPictureField selects the field-array whose items become pictures.
func WithPictureField(name string) Option {
	return func(s *Session) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.pictureField = trimmed
		}
	}
}

// WithWebShopPictures sets the web-shop visibility flag stamped on every
// created picture.
func WithWebShopPictures(enabled bool) Option {
	return func(s *Session) {
		s.webShop = enabled
	}
}

// WithLogger sends phase transitions to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides how submission ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Session owns the values of one open form and drives its submission. All
// methods are safe for concurrent use; at most one submission runs at a time.
type Session struct {
	schema     schema.Schema
	fields     map[string]schema.Field
	directives []render.Directive

	creator      Creator
	validator    Validator
	navigator    Navigator
	routes       *navigation.Routes
	pictureField string
	webShop      bool
	logger       *log.Logger
	newID        func() string

	mu      sync.Mutex
	values  map[string]any
	errors  map[string]string
	dirty   bool
	state   State
	failure Failure
	result  *Result
}

// NewSession opens a session over s. Every descriptor is resolved up front
// so a broken schema is reported as a *schema.ConfigurationError before any
// value is edited.
func NewSession(s schema.Schema, creator Creator, options ...Option) (*Session, error) {
	directives, err := render.ResolveAll(s)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, fmt.Errorf("form: creator is required")
	}

	session := &Session{
		schema:       s,
		fields:       make(map[string]schema.Field),
		directives:   directives,
		creator:      creator,
		routes:       navigation.DefaultRoutes(),
		pictureField: DefaultPictureField,
		webShop:      true,
		logger:       log.New(io.Discard, "", 0),
		newID:        uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(session)
	}
	if session.validator == nil {
		session.validator = validation.New(s)
	}

	data := s.DataFields()
	for _, field := range data {
		session.fields[field.Name] = field
	}
	picture, ok := session.fields[session.pictureField]
	if !ok || picture.Kind != schema.KindFieldArray {
		return nil, &schema.ConfigurationError{
			Field:  session.pictureField,
			Reason: "picture field must be a field-array",
		}
	}

	session.values = initialValues(data)
	session.errors = make(map[string]string)
	return session, nil
}

// Schema returns the schema the session was opened with.
func (s *Session) Schema() schema.Schema {
	return s.schema
}

// Directives returns the resolved render plan in schema order.
func (s *Session) Directives() []render.Directive {
	return append([]render.Directive(nil), s.directives...)
}

// Bound returns the render plan bound to the current state.
func (s *Session) Bound() []render.Bound {
	return render.Bind(s.directives, s)
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether any value changed since the session opened.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Values returns a deep copy of the current values.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.values)
}

// Value returns a copy of the value bound to name.
func (s *Session) Value(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[name]
	return cloneValue(value), ok
}

// FieldErrors returns the errors recorded by the last validation.
func (s *Session) FieldErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// FieldError returns the validation message for name, if any.
func (s *Session) FieldError(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[name]
}

// LastFailure returns the failure of the latest submission, or nil.
func (s *Session) LastFailure() Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// SetValue replaces the value of a scalar or field-array field. It marks the
// session dirty and does not revalidate.
func (s *Session) SetValue(name string, value any) error {
	field, ok := s.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	coerced, err := coerce(field, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginEditLocked(); err != nil {
		return err
	}
	s.values[name] = coerced
	s.dirty = true
	return nil
}

// SetItemValue replaces sub of the item at index in a field-array.
func (s *Session) SetItemValue(name string, index int, sub string, value any) error {
	field, err := s.arrayField(name)
	if err != nil {
		return err
	}
	if sub != field.ItemName {
		return fmt.Errorf("%w: %q.%d.%q", ErrUnknownField, name, index, sub)
	}
	coerced, err := coerce(field.Item(), value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginEditLocked(); err != nil {
		return err
	}
	items, _ := s.values[name].([]Item)
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %q[%d]", ErrIndexOutOfRange, name, index)
	}
	updated := make([]Item, len(items))
	copy(updated, items)
	item := cloneItem(items[index])
	item[sub] = coerced
	updated[index] = item
	s.values[name] = updated
	s.dirty = true
	return nil
}

// AddArrayItem appends a blank item to a field-array.
func (s *Session) AddArrayItem(name string) error {
	field, err := s.arrayField(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginEditLocked(); err != nil {
		return err
	}
	items, _ := s.values[name].([]Item)
	updated := make([]Item, 0, len(items)+1)
	updated = append(updated, items...)
	updated = append(updated, blankItem(field))
	s.values[name] = updated
	s.dirty = true
	return nil
}

// RemoveArrayItem deletes the item at index; later items shift down. The
// sequence may become empty.
func (s *Session) RemoveArrayItem(name string, index int) error {
	if _, err := s.arrayField(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginEditLocked(); err != nil {
		return err
	}
	items, _ := s.values[name].([]Item)
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %q[%d]", ErrIndexOutOfRange, name, index)
	}
	updated := make([]Item, 0, len(items)-1)
	updated = append(updated, items[:index]...)
	updated = append(updated, items[index+1:]...)
	s.values[name] = updated
	s.dirty = true
	return nil
}

func (s *Session) arrayField(name string) (schema.Field, error) {
	field, ok := s.fields[name]
	if !ok {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if field.Kind != schema.KindFieldArray {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrNotArrayField, name)
	}
	return field, nil
}

// beginEditLocked guards mutations. A failed session returns to editing.
func (s *Session) beginEditLocked() error {
	switch {
	case s.state.Busy():
		return ErrSubmitInProgress
	case s.state == StateSucceeded:
		return ErrSessionClosed
	case s.state == StateFailed:
		s.state = StateEditing
	}
	return nil
}
