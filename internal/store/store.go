// Package store persists avatar metadata in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/pipeline"
)

// ErrNotFound is returned when no avatar has the requested ID.
var ErrNotFound = errors.New("avatar not found")

// Record is a stored avatar: its metadata and where the GLB was written.
type Record struct {
	pipeline.Metadata
	Path string `json:"path"`
}

// Store manages the PostgreSQL connection. A single pgx.Conn is not safe for
// concurrent use, so every call holds mu.
type Store struct {
	mu   sync.Mutex
	conn *pgx.Conn
	log  *zap.Logger
}

// New connects to the database and ensures the schema exists.
func New(ctx context.Context, connString string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.Debug("store ready")
	return &Store{conn: conn, log: log}, nil
}

// initSchema creates the avatars table if it does not exist.
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS avatars (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL DEFAULT '',
			vertex_count INT NOT NULL,
			face_count INT NOT NULL,
			generation_time_ms DOUBLE PRECISION NOT NULL,
			inference_time_ms DOUBLE PRECISION NOT NULL,
			model_version TEXT NOT NULL,
			face_shape TEXT NOT NULL,
			style TEXT NOT NULL,
			texture_embedded BOOLEAN NOT NULL,
			glb_size INT NOT NULL,
			warnings TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS avatars_created_at_idx ON avatars (created_at DESC);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.Close(ctx)
}

// SaveAvatar inserts or replaces the record for meta.ID.
func (s *Store) SaveAvatar(ctx context.Context, meta pipeline.Metadata, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings := meta.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO avatars (id, path, vertex_count, face_count, generation_time_ms, inference_time_ms,
			model_version, face_shape, style, texture_embedded, glb_size, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			path = EXCLUDED.path,
			vertex_count = EXCLUDED.vertex_count,
			face_count = EXCLUDED.face_count,
			generation_time_ms = EXCLUDED.generation_time_ms,
			inference_time_ms = EXCLUDED.inference_time_ms,
			model_version = EXCLUDED.model_version,
			face_shape = EXCLUDED.face_shape,
			style = EXCLUDED.style,
			texture_embedded = EXCLUDED.texture_embedded,
			glb_size = EXCLUDED.glb_size,
			warnings = EXCLUDED.warnings,
			created_at = EXCLUDED.created_at
	`, meta.ID, path, meta.VertexCount, meta.FaceCount, meta.GenerationTimeMs, meta.InferenceTimeMs,
		meta.ModelVersion, meta.FaceShape, meta.Style, meta.TextureEmbedded, meta.GLBSize, warnings, meta.CreatedAt)
	if err != nil {
		return fmt.Errorf("save avatar %s: %w", meta.ID, err)
	}
	s.log.Debug("avatar saved", zap.String("id", meta.ID))
	return nil
}

const selectColumns = `id, path, vertex_count, face_count, generation_time_ms, inference_time_ms,
	model_version, face_shape, style, texture_embedded, glb_size, warnings, created_at`

// GetAvatar returns the record with the given ID.
func (s *Store) GetAvatar(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.conn.QueryRow(ctx, `SELECT `+selectColumns+` FROM avatars WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAvatars returns up to limit records, newest first. A limit <= 0 returns
// every record.
func (s *Store) ListAvatars(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM avatars ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// DeleteAvatar removes the record with the given ID.
func (s *Store) DeleteAvatar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.conn.Exec(ctx, `DELETE FROM avatars WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec       Record
		createdAt time.Time
	)
	err := row.Scan(&rec.ID, &rec.Path, &rec.VertexCount, &rec.FaceCount, &rec.GenerationTimeMs,
		&rec.InferenceTimeMs, &rec.ModelVersion, &rec.FaceShape, &rec.Style, &rec.TextureEmbedded,
		&rec.GLBSize, &rec.Warnings, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = createdAt
	if len(rec.Warnings) == 0 {
		rec.Warnings = nil
	}
	return &rec, nil
}
