package publisher

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

// RecordSource loads the records to publish.
type RecordSource interface {
	Load(ctx context.Context) ([]directory.Record, error)
}

// Observer is notified about schema changes and created entries.
type Observer interface {
	ObserveOptionsAdded(property string, count int)
	ObservePublished()
}

// Publisher pushes every stored record to a Service, one at a time.
//
// Nothing tracks which records were already published, so running it twice
// against the same file creates every entry twice.
type Publisher struct {
	source   RecordSource
	service  Service
	names    PropertyNames
	observer Observer
	logger   *zap.Logger
}

// New constructs a Publisher. observer may be nil.
func New(source RecordSource, service Service, names PropertyNames, observer Observer, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		source:   source,
		service:  service,
		names:    names,
		observer: observer,
		logger:   logger,
	}
}

// Run publishes every stored record in order. The first failure aborts the
// remaining batch.
func (p *Publisher) Run(ctx context.Context) error {
	records, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(records) == 0 {
		p.logger.Info("no records to publish")
		return nil
	}

	for i, rec := range records {
		if err := p.Publish(ctx, rec); err != nil {
			return fmt.Errorf("publish record %d (%s): %w", i, rec.Title, err)
		}
	}
	p.logger.Info("all records published", zap.Int("count", len(records)))
	return nil
}

// Publish syncs the schema options a record needs and then creates its entry.
func (p *Publisher) Publish(ctx context.Context, rec directory.Record) error {
	if err := p.EnsureSelectOption(ctx, p.names.Region, rec.Address.Region); err != nil {
		return err
	}
	if err := p.EnsureMultiSelectOptions(ctx, p.names.Specializations, rec.Specializations); err != nil {
		return err
	}

	id, err := p.service.CreateEntry(ctx, NewEntry(rec))
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if p.observer != nil {
		p.observer.ObservePublished()
	}
	p.logger.Info("added new entry", zap.String("title", rec.Title), zap.String("id", id))
	return nil
}

// EnsureSelectOption adds value to a single-select property unless it is already permitted.
func (p *Publisher) EnsureSelectOption(ctx context.Context, property, value string) error {
	return p.ensureOptions(ctx, property, KindSelect, []string{value})
}

// EnsureMultiSelectOptions adds every missing value to a multi-select property in one update.
func (p *Publisher) EnsureMultiSelectOptions(ctx context.Context, property string, values []string) error {
	return p.ensureOptions(ctx, property, KindMultiSelect, values)
}

func (p *Publisher) ensureOptions(ctx context.Context, property string, kind Kind, values []string) error {
	schema, err := p.service.Schema(ctx)
	if err != nil {
		return fmt.Errorf("retrieve schema: %w", err)
	}
	prop, ok := schema[property]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPropertyNotFound, property)
	}
	if prop.Kind != kind {
		return fmt.Errorf("%w: %q is %s, want %s", ErrPropertyKind, property, prop.Kind, kind)
	}

	missing := missingOptions(prop.Options, values)
	if len(missing) == 0 {
		return nil
	}

	options := make([]Option, 0, len(prop.Options)+len(missing))
	options = append(options, prop.Options...)
	for _, name := range missing {
		options = append(options, Option{Name: name})
	}
	if err := p.service.UpdateOptions(ctx, property, kind, options); err != nil {
		return fmt.Errorf("update %s options: %w", property, err)
	}
	if p.observer != nil {
		p.observer.ObserveOptionsAdded(property, len(missing))
	}
	p.logger.Info("added new options",
		zap.String("property", property),
		zap.String("options", strings.Join(missing, ", ")),
	)
	return nil
}

// missingOptions returns the values not yet present among options, without repeats.
func missingOptions(options []Option, values []string) []string {
	known := make(map[string]struct{}, len(options))
	for _, o := range options {
		known[o.Name] = struct{}{}
	}
	var missing []string
	for _, v := range values {
		if _, ok := known[v]; ok {
			continue
		}
		known[v] = struct{}{}
		missing = append(missing, v)
	}
	return missing
}

// NewEntry maps a record onto the entry layout of the target database.
func NewEntry(rec directory.Record) Entry {
	contacts := make([]string, 0, len(rec.Contacts))
	for _, c := range rec.Contacts {
		contacts = append(contacts, fmt.Sprintf("%s - %s - %s", c.Name, c.Phone, c.Email))
	}
	return Entry{
		Title:           rec.Title,
		Website:         rec.Website,
		Address:         fmt.Sprintf("%s, %s", rec.Address.Street, rec.Address.City),
		Carrier:         rec.Carrier,
		Region:          rec.Address.Region,
		Specializations: append([]string{}, rec.Specializations...),
		Contacts:        strings.Join(contacts, "\n"),
	}
}
