package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/skillforge-app/skillforge/internal/events"
)

func TestPostgresLogger_LogEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("skillforge_events"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	testcontainers.CleanupContainer(t, ctr)

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, events.Schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	logger := events.NewPostgresLogger(pool)

	err = logger.LogEvent(events.Event{
		Type:      "exam_submitted",
		Data:      map[string]any{"topic_id": 42, "answers": 5},
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var count int
	var eventType string
	err = pool.QueryRow(ctx,
		`SELECT count(*), max(event_type) FROM activity_events`,
	).Scan(&count, &eventType)
	if err != nil {
		t.Fatalf("querying events: %v", err)
	}
	if count != 1 {
		t.Errorf("event count = %d, want 1", count)
	}
	if eventType != "exam_submitted" {
		t.Errorf("event_type = %q, want exam_submitted", eventType)
	}
}

func TestPostgresLogger_RequiresType(t *testing.T) {
	logger := events.NewPostgresLogger(nil)
	if err := logger.LogEvent(events.Event{}); err == nil {
		t.Error("LogEvent() should fail with nil pool")
	}
}
