// Package publisher pushes stored records into an external structured database,
// extending its categorical options on demand.
package publisher

import (
	"context"
	"errors"
)

// Errors returned while syncing schema options.
var (
	ErrPropertyNotFound = errors.New("property not found in schema")
	ErrPropertyKind     = errors.New("property has unexpected kind")
)

// Kind identifies the type of a schema property.
type Kind string

// Property kinds the publisher cares about. Other kinds pass through as-is.
const (
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi_select"
)

// Option is one permitted value of a categorical property.
type Option struct {
	ID    string
	Name  string
	Color string
}

// Property describes one schema property.
type Property struct {
	Kind    Kind
	Options []Option
}

// Schema maps property names to their definitions.
type Schema map[string]Property

// Entry is one row to create, already mapped to display values.
type Entry struct {
	Title           string
	Website         string
	Address         string
	Carrier         string
	Region          string
	Specializations []string
	Contacts        string
}

// PropertyNames maps Entry fields onto the target database's property names.
type PropertyNames struct {
	Title           string `mapstructure:"title"`
	Website         string `mapstructure:"website"`
	Address         string `mapstructure:"address"`
	Carrier         string `mapstructure:"carrier"`
	Region          string `mapstructure:"region"`
	Specializations string `mapstructure:"specializations"`
	Contacts        string `mapstructure:"contacts"`
}

// DefaultPropertyNames returns the property names of the reference database.
func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		Title:           "Title",
		Website:         "Website",
		Address:         "Address",
		Carrier:         "Carrier",
		Region:          "Region",
		Specializations: "Specializations",
		Contacts:        "Contacts",
	}
}

// Service is the external structured database.
type Service interface {
	// Schema retrieves the current property definitions.
	Schema(ctx context.Context) (Schema, error)
	// UpdateOptions replaces the option list of a categorical property.
	UpdateOptions(ctx context.Context, property string, kind Kind, options []Option) error
	// CreateEntry adds one row and returns its identifier.
	CreateEntry(ctx context.Context, entry Entry) (string, error)
}
