package services_test

import (
	"context"
	"testing"

	"marquee/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithQuery(ctx, "Avatar")
	ctx = services.WithRequestID(ctx, "req-123")

	if q, ok := services.QueryFromContext(ctx); !ok || q != "Avatar" {
		t.Fatalf("unexpected query: %v %v", q, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithQuery(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.QueryFromContext(ctx); ok {
		t.Fatal("expected no query value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
