package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"powercars-survey-service/internal/domain"
)

func TestExportStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewExportStore(client, time.Minute)
	ctx := context.Background()

	if err := store.SaveExport(ctx, "responses_test.csv", []byte("ID,Área\n1,Ventas\n")); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := store.Export(ctx, "responses_test.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "ID,Área\n1,Ventas\n" {
		t.Fatalf("unexpected content %q", data)
	}

	if mr.TTL("survey:export:responses_test.csv") != time.Minute {
		t.Fatalf("expected TTL set, got %v", mr.TTL("survey:export:responses_test.csv"))
	}
}

func TestExportStoreMissing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewExportStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	if _, err := store.Export(context.Background(), "ghost.csv"); err != domain.ErrExportNotFound {
		t.Fatalf("expected ErrExportNotFound, got %v", err)
	}
}

func TestExportExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewExportStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Second)
	ctx := context.Background()

	if err := store.SaveExport(ctx, "short.csv", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if _, err := store.Export(ctx, "short.csv"); err != domain.ErrExportNotFound {
		t.Fatalf("expected expiry, got %v", err)
	}
}
