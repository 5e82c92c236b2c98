// Package cache provides SQLite-backed storage for compiled artifacts.
//
// Artifacts are content-addressed: the key is the canonical hash of the
// source program together with the optimize flag, so an unchanged program
// never compiles twice for the same flag. The cache is an append-only
// table with:
//   - seq: logical insertion order, used for all listing
//   - (program_hash, optimized): UNIQUE, the idempotency key
//   - both renderings of the compiled module plus its source map
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on artifacts.program_name
// 2 - Rekeyed artifacts by (program_hash, optimized)
const currentSchemaVersion = 2

// Artifact is one cached compilation result.
type Artifact struct {
	ID          string // build id, a v7 UUID
	ProgramHash string
	ProgramName string
	Wat         string
	Wasm        []byte
	SourceMap   string
	Optimized   bool
	CreatedAt   time.Time
}

// ErrNotFound is returned by Get for an unknown program hash.
var ErrNotFound = fmt.Errorf("artifact not found")

// Cache provides durable storage for compiled artifacts.
// Uses SQLite with WAL mode for concurrent read access.
type Cache struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically. Idempotent.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// NewBuildID allocates a time-ordered build id.
func NewBuildID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Put stores an artifact. A second Put with the same program hash and
// optimize flag is a no-op: the first compilation wins and the stored
// row is returned unchanged by later Gets.
func (c *Cache) Put(ctx context.Context, a Artifact) error {
	if a.ProgramHash == "" {
		return fmt.Errorf("artifact has no program hash")
	}
	if a.ID == "" {
		a.ID = NewBuildID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, program_hash, program_name, wat, wasm, source_map, optimized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(program_hash, optimized) DO NOTHING
	`, a.ID, a.ProgramHash, a.ProgramName, a.Wat, a.Wasm, a.SourceMap, boolToInt(a.Optimized), a.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	return nil
}

// Get retrieves the artifact for a program hash and optimize flag.
// Returns ErrNotFound if that build variant is not cached.
func (c *Cache) Get(ctx context.Context, programHash string, optimized bool) (Artifact, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, program_hash, program_name, wat, wasm, source_map, optimized, created_at
		FROM artifacts
		WHERE program_hash = ? AND optimized = ?
	`, programHash, boolToInt(optimized))

	a, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return Artifact{}, ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("get artifact: %w", err)
	}
	return a, nil
}

// List returns all cached artifacts in insertion order.
func (c *Cache) List(ctx context.Context) ([]Artifact, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, program_hash, program_name, wat, wasm, source_map, optimized, created_at
		FROM artifacts
		ORDER BY seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (Artifact, error) {
	var a Artifact
	var optimized int
	var created string
	err := row.Scan(&a.ID, &a.ProgramHash, &a.ProgramName, &a.Wat, &a.Wasm, &a.SourceMap, &optimized, &created)
	if err != nil {
		return Artifact{}, err
	}
	a.Optimized = optimized != 0
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		a.CreatedAt = t
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// Idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < 2 {
		// v2 rekeyed artifacts by (program_hash, optimized). Builds are
		// reproducible, so a pre-v2 table is dropped, not rebuilt.
		if _, err := db.Exec("DROP TABLE IF EXISTS artifacts"); err != nil {
			return fmt.Errorf("drop pre-v2 artifacts: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (c *Cache) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := c.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
