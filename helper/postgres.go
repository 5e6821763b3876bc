package helper

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MustStartPostgresContainer starts a pgvector-enabled PostgreSQL container for
// tests and examples. It returns a teardown function and the mapped host port.
func MustStartPostgresContainer() (func(context.Context) error, int, error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase("database"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to start postgres container: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		teardownErr := container.Terminate(ctx)
		return nil, 0, fmt.Errorf("failed to get mapped port: %w (teardown: %v)", err, teardownErr)
	}

	return func(ctx context.Context) error {
		return container.Terminate(ctx)
	}, mappedPort.Int(), nil
}
