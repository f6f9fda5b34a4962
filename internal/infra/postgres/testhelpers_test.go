package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a disposable PostgreSQL container, applies the
// schema migrations and returns a connected pool. Tests are skipped
// when no container runtime is available.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("workrank"),
		tcpostgres.WithUsername("workrank"),
		tcpostgres.WithPassword("workrank"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := applyTestMigrations(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	return pool
}

// applyTestMigrations runs the up migrations from the migrations directory.
func applyTestMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	migrationsDir := filepath.Join(cwd, "migrations")
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(migrationsDir); err == nil {
			break
		}
		cwd = filepath.Dir(cwd)
		migrationsDir = filepath.Join(cwd, "migrations")
	}

	files := []string{
		filepath.Join(migrationsDir, "000001_create_works.up.sql"),
		filepath.Join(migrationsDir, "000002_create_click_events.up.sql"),
		filepath.Join(migrationsDir, "000003_create_rankings.up.sql"),
	}
	for _, file := range files {
		if err := executeSQLFile(ctx, pool, file); err != nil {
			return err
		}
	}
	return nil
}

// executeSQLFile reads and executes a SQL file.
func executeSQLFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, stmt := range splitStatements(string(content)) {
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %s: %w", path, err)
		}
	}
	return nil
}

// splitStatements splits SQL content into individual statements.
func splitStatements(sql string) []string {
	var builder strings.Builder
	var statements []string
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSpace(builder.String()))
			builder.Reset()
		}
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

// insertWork seeds one catalog work for join tests.
func insertWork(t *testing.T, pool *pgxpool.Pool, id int64, title string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
INSERT INTO works (id, external_id, title, affiliate_url, is_published)
VALUES ($1, $2, $3, $4, TRUE)`,
		id, fmt.Sprintf("ext-%d", id), title, fmt.Sprintf("https://affiliate.example.com/%d", id),
	)
	if err != nil {
		t.Fatalf("insert work: %v", err)
	}
}
