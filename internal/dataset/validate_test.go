package dataset_test

import (
	"context"
	"errors"
	"testing"

	"winnow/internal/dataset"
	"winnow/internal/testsupport"
)

func TestValidatorAcceptsCompleteDataset(t *testing.T) {
	schema := &testsupport.SchemaValidator{}
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 2, "rec-2": 1})
	validator := dataset.NewValidator(schema, lowlevel)

	ds := testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1"}},
		dataset.Class{Name: "sad", Recordings: []string{"rec-2"}},
	)

	if err := validator.Validate(context.Background(), ds); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if schema.Calls != 1 {
		t.Fatalf("expected one schema validation, got %d", schema.Calls)
	}
	if !schema.Complete {
		t.Fatal("expected complete schema variant to be requested")
	}
}

func TestValidatorReportsFirstMissingRecording(t *testing.T) {
	schema := &testsupport.SchemaValidator{}
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	validator := dataset.NewValidator(schema, lowlevel)

	ds := testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1", "rec-2", "rec-3"}},
	)

	err := validator.Validate(context.Background(), ds)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !errors.Is(err, dataset.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	var missing *dataset.MissingDataError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDataError, got %T", err)
	}
	if missing.RecordingID != "rec-2" {
		t.Fatalf("expected first offender rec-2, got %q", missing.RecordingID)
	}
	if lowlevel.Calls("rec-3") != 0 {
		t.Fatal("expected validation to stop at the first missing recording")
	}
}

func TestValidatorSkipsRepeatedRecordings(t *testing.T) {
	schema := &testsupport.SchemaValidator{}
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1, "rec-2": 1})
	validator := dataset.NewValidator(schema, lowlevel)

	ds := testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1", "rec-1", "rec-2"}},
		dataset.Class{Name: "sad", Recordings: []string{"rec-1", "rec-2"}},
	)

	if err := validator.Validate(context.Background(), ds); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := lowlevel.Calls("rec-1"); got != 1 {
		t.Fatalf("expected single lookup for rec-1, got %d", got)
	}
	if got := lowlevel.Calls("rec-2"); got != 1 {
		t.Fatalf("expected single lookup for rec-2, got %d", got)
	}
}

func TestValidatorPropagatesSchemaFailure(t *testing.T) {
	schemaErr := errors.New("classes must not be empty")
	schema := &testsupport.SchemaValidator{Err: schemaErr}
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	validator := dataset.NewValidator(schema, lowlevel)

	ds := testsupport.NewDataset("d1")

	err := validator.Validate(context.Background(), ds)
	if !errors.Is(err, schemaErr) {
		t.Fatalf("expected schema error to propagate, got %v", err)
	}
	if lowlevel.Calls("rec-1") != 0 {
		t.Fatal("expected no lookups after schema failure")
	}
}

func TestValidatorPropagatesLookupFailure(t *testing.T) {
	lookupErr := errors.New("feature database offline")
	schema := &testsupport.SchemaValidator{}
	lowlevel := testsupport.NewLowLevel(nil)
	lowlevel.Err = lookupErr
	validator := dataset.NewValidator(schema, lowlevel)

	ds := testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1"}},
	)

	if err := validator.Validate(context.Background(), ds); !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error to propagate, got %v", err)
	}
}

func TestValidatorRejectsNilDataset(t *testing.T) {
	validator := dataset.NewValidator(&testsupport.SchemaValidator{}, testsupport.NewLowLevel(nil))
	if err := validator.Validate(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil dataset")
	}
}
