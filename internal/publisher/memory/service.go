// Package memory contains an in-memory publisher.Service for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/bbw-directory/internal/publisher"
)

// Operation names recorded in Calls.
const (
	OpSchema        = "schema"
	OpUpdateOptions = "update_options"
	OpCreateEntry   = "create_entry"
)

// Call captures one service invocation.
type Call struct {
	Op       string
	Property string
	Options  []publisher.Option
	Entry    publisher.Entry
}

// Service keeps a schema and created entries in memory.
type Service struct {
	mu      sync.RWMutex
	schema  publisher.Schema
	entries []publisher.Entry
	calls   []Call

	// Fail, when set, is consulted before each operation; a non-nil error aborts it.
	Fail func(op string) error
}

// New returns a Service seeded with schema.
func New(schema publisher.Schema) *Service {
	s := &Service{schema: publisher.Schema{}}
	for name, prop := range schema {
		s.schema[name] = copyProperty(prop)
	}
	return s
}

// NewWithDefaultSchema returns a Service whose schema holds every property named in names.
func NewWithDefaultSchema(names publisher.PropertyNames) *Service {
	return New(publisher.Schema{
		names.Title:           {Kind: "title"},
		names.Website:         {Kind: "url"},
		names.Address:         {Kind: "rich_text"},
		names.Carrier:         {Kind: "rich_text"},
		names.Region:          {Kind: publisher.KindSelect},
		names.Specializations: {Kind: publisher.KindMultiSelect},
		names.Contacts:        {Kind: "rich_text"},
	})
}

// Schema returns a copy of the current schema.
func (s *Service) Schema(_ context.Context) (publisher.Schema, error) {
	if err := s.record(Call{Op: OpSchema}); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(publisher.Schema, len(s.schema))
	for name, prop := range s.schema {
		out[name] = copyProperty(prop)
	}
	return out, nil
}

// UpdateOptions replaces the options of property.
func (s *Service) UpdateOptions(_ context.Context, property string, kind publisher.Kind, options []publisher.Option) error {
	if err := s.record(Call{Op: OpUpdateOptions, Property: property, Options: append([]publisher.Option(nil), options...)}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prop, ok := s.schema[property]
	if !ok {
		return fmt.Errorf("%w: %q", publisher.ErrPropertyNotFound, property)
	}
	if prop.Kind != kind {
		return fmt.Errorf("%w: %q", publisher.ErrPropertyKind, property)
	}
	opts := append([]publisher.Option(nil), options...)
	for i := range opts {
		if opts[i].ID == "" {
			opts[i].ID = fmt.Sprintf("opt-%s-%d", property, i+1)
		}
	}
	prop.Options = opts
	s.schema[property] = prop
	return nil
}

// CreateEntry stores entry and returns a pseudo ID.
func (s *Service) CreateEntry(_ context.Context, entry publisher.Entry) (string, error) {
	if err := s.record(Call{Op: OpCreateEntry, Entry: entry}); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return fmt.Sprintf("memory-%d", len(s.entries)), nil
}

// Entries returns the created entries.
func (s *Service) Entries() []publisher.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]publisher.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Calls returns every recorded invocation in order.
func (s *Service) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Service) record(call Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	fail := s.Fail
	s.mu.Unlock()
	if fail != nil {
		if err := fail(call.Op); err != nil {
			return err
		}
	}
	return nil
}

func copyProperty(p publisher.Property) publisher.Property {
	return publisher.Property{Kind: p.Kind, Options: append([]publisher.Option(nil), p.Options...)}
}
