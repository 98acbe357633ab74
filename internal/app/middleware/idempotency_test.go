package middleware

import (
	"context"
	"errors"
	"testing"

	"vendibook/internal/app/commands"
)

type echoResult struct {
	Value string `json:"value"`
}

type echoCommand struct {
	Value string
	IDKey string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IDKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type failCommand struct {
	IDKey string
}

func (c failCommand) Key() string            { return "test.fail" }
func (c failCommand) IdempotencyKey() string { return c.IDKey }
func (c failCommand) ResultPrototype() any   { return &echoResult{} }

type memoryIdempotencyStore struct {
	records map[string]IdempotencyRecord
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{records: map[string]IdempotencyRecord{}}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *memoryIdempotencyStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

func buildEchoBus(t *testing.T, store IdempotencyStore, calls *int) commands.Bus {
	t.Helper()
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, "test.echo", commands.HandlerFunc[echoCommand, *echoResult](
		func(_ context.Context, cmd echoCommand) (*echoResult, error) {
			*calls++
			return &echoResult{Value: cmd.Value}, nil
		}))
	commands.RegisterHandler(base, "test.fail", commands.HandlerFunc[failCommand, *echoResult](
		func(_ context.Context, _ failCommand) (*echoResult, error) {
			*calls++
			return nil, errors.New("handler blew up")
		}))
	return ChainCommands(base, Idempotency(store, nil))
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	ctx := context.Background()
	var calls int
	bus := buildEchoBus(t, newMemoryIdempotencyStore(), &calls)

	first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "one", IDKey: "k1"})
	if err != nil {
		t.Fatal(err)
	}
	// Same key replays the stored result even when the payload differs.
	second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "two", IDKey: "k1"})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if first.Value != "one" || second.Value != "one" {
		t.Fatalf("results = %q, %q; want both %q", first.Value, second.Value, "one")
	}

	// A different key runs the handler again.
	third, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "three", IDKey: "k2"})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
	if third.Value != "three" {
		t.Fatalf("third result = %q, want %q", third.Value, "three")
	}
}

func TestIdempotencyEmptyKeyBypasses(t *testing.T) {
	ctx := context.Background()
	var calls int
	bus := buildEchoBus(t, newMemoryIdempotencyStore(), &calls)

	for range [3]struct{}{} {
		if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "v"}); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Fatalf("handler calls = %d, want 3 without a key", calls)
	}
}

func TestIdempotencyReplaysStoredError(t *testing.T) {
	ctx := context.Background()
	var calls int
	bus := buildEchoBus(t, newMemoryIdempotencyStore(), &calls)

	if _, err := commands.Dispatch[failCommand, *echoResult](ctx, bus, failCommand{IDKey: "k1"}); err == nil {
		t.Fatal("expected handler error")
	}
	_, err := commands.Dispatch[failCommand, *echoResult](ctx, bus, failCommand{IDKey: "k1"})
	if err == nil || err.Error() != "handler blew up" {
		t.Fatalf("replayed error = %v, want the stored message", err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

type rejectAll struct{}

func (rejectAll) Validate() error { return errors.New("rejected") }

type alwaysInvalidCommand struct{ rejectAll }

func (alwaysInvalidCommand) Key() string { return "test.invalid" }

func TestValidationBlocksInvalidCommands(t *testing.T) {
	base := commands.NewInMemoryBus()
	var calls int
	commands.RegisterHandler(base, "test.invalid", commands.HandlerFunc[alwaysInvalidCommand, string](
		func(_ context.Context, _ alwaysInvalidCommand) (string, error) {
			calls++
			return "ran", nil
		}))
	bus := ChainCommands(base, Validation(SelfValidator{}))

	if _, err := bus.Dispatch(context.Background(), alwaysInvalidCommand{}); err == nil {
		t.Fatal("invalid command should not dispatch")
	}
	if calls != 0 {
		t.Fatalf("handler calls = %d, want 0", calls)
	}
}
