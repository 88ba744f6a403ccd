package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/bbw-directory/internal/publisher"
)

func TestServiceRecordsCallsAndCopies(t *testing.T) {
	t.Parallel()

	svc := NewWithDefaultSchema(publisher.DefaultPropertyNames())
	ctx := context.Background()

	require.NoError(t, svc.UpdateOptions(ctx, "Region", publisher.KindSelect, []publisher.Option{{Name: "Berlin"}}))
	schema, err := svc.Schema(ctx)
	require.NoError(t, err)
	require.Len(t, schema["Region"].Options, 1)
	assert.Equal(t, "Berlin", schema["Region"].Options[0].Name)
	assert.NotEmpty(t, schema["Region"].Options[0].ID)

	schema["Region"].Options[0].Name = "modified"
	again, err := svc.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", again["Region"].Options[0].Name)

	id, err := svc.CreateEntry(ctx, publisher.Entry{Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, "memory-1", id)

	ops := []string{}
	for _, c := range svc.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{OpUpdateOptions, OpSchema, OpSchema, OpCreateEntry}, ops)

	entries := svc.Entries()
	entries[0].Title = "modified"
	assert.Equal(t, "A", svc.Entries()[0].Title)
}

func TestServiceRejectsUnknownOrMismatchedProperty(t *testing.T) {
	t.Parallel()

	svc := NewWithDefaultSchema(publisher.DefaultPropertyNames())
	ctx := context.Background()

	err := svc.UpdateOptions(ctx, "Missing", publisher.KindSelect, nil)
	assert.ErrorIs(t, err, publisher.ErrPropertyNotFound)

	err = svc.UpdateOptions(ctx, "Region", publisher.KindMultiSelect, nil)
	assert.ErrorIs(t, err, publisher.ErrPropertyKind)
}

func TestServiceFailHook(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	svc := New(nil)
	svc.Fail = func(op string) error {
		if op == OpCreateEntry {
			return boom
		}
		return nil
	}

	_, err := svc.CreateEntry(context.Background(), publisher.Entry{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, svc.Entries())
	assert.Len(t, svc.Calls(), 1)
}
