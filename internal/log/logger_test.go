package log

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithSessionID(ctx, "sess-1")
	if v := ctx.Value(SessionIDKey); v != "sess-1" {
		t.Errorf("Expected session_id to be 'sess-1', got %v", v)
	}

	ctx = WithCarID(ctx, "car-001")
	if v := ctx.Value(CarIDKey); v != "car-001" {
		t.Errorf("Expected car_id to be 'car-001', got %v", v)
	}

	ctx = WithCustomerID(ctx, "cust-9")
	if v := ctx.Value(CustomerIDKey); v != "cust-9" {
		t.Errorf("Expected customer_id to be 'cust-9', got %v", v)
	}
}

func TestL_AddsContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetGlobal(&Logger{Logger: zap.New(core)})
	t.Cleanup(func() { SetGlobal(NewNop()) })

	ctx := WithCarID(WithSessionID(context.Background(), "sess-1"), "car-001")
	Info(ctx, "session opened")
	Debug(ctx, "dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["session_id"] != "sess-1" || fields["car_id"] != "car-001" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if _, ok := fields["customer_id"]; ok {
		t.Errorf("customer_id should be absent: %v", fields)
	}
}

func TestNewProduction_FallsBackToInfo(t *testing.T) {
	l, err := NewProduction("not-a-level")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be disabled")
	}
	if !l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be enabled")
	}
}
