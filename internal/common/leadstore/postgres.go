// Package leadstore is the PostgreSQL data-store provider for lead records.
package leadstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/models"
)

const serviceName = "postgres"

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	fields       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	insertSQL = `INSERT INTO leads (id, fields) VALUES ($1, $2) RETURNING created_time`
	updateSQL = `UPDATE leads SET fields = fields || $2::jsonb WHERE id = $1 RETURNING fields, created_time`
	listSQL   = `SELECT id, fields, created_time FROM leads ORDER BY created_time DESC`
)

// PostgresStore keeps each lead as a JSONB field map keyed by a generated record id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the leads table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return apperrors.NewTransportError(serviceName, err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, fields map[string]interface{}) (*models.Record, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, apperrors.NewValidationError("lead fields are not serializable", err.Error())
	}

	id := "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	var created time.Time
	if err := s.db.QueryRowContext(ctx, insertSQL, id, raw).Scan(&created); err != nil {
		return nil, apperrors.NewTransportError(serviceName, err)
	}

	return &models.Record{ID: id, Fields: fields, CreatedTime: created.UTC().Format(time.RFC3339)}, nil
}

// Update merges fields into the stored map.
func (s *PostgresStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Record, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("record id is required", "")
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, apperrors.NewValidationError("lead fields are not serializable", err.Error())
	}

	var (
		merged  []byte
		created time.Time
	)
	err = s.db.QueryRowContext(ctx, updateSQL, id, raw).Scan(&merged, &created)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewProtocolError(serviceName, http.StatusNotFound, "record "+id+" not found")
	}
	if err != nil {
		return nil, apperrors.NewTransportError(serviceName, err)
	}

	rec := &models.Record{ID: id, CreatedTime: created.UTC().Format(time.RFC3339)}
	if err := json.Unmarshal(merged, &rec.Fields); err != nil {
		return nil, apperrors.NewParseError(serviceName, err.Error())
	}
	return rec, nil
}

// List returns records newest first.
func (s *PostgresStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, listSQL)
	if err != nil {
		return nil, apperrors.NewTransportError(serviceName, err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var (
			rec     models.Record
			raw     []byte
			created time.Time
		)
		if err := rows.Scan(&rec.ID, &raw, &created); err != nil {
			return nil, apperrors.NewParseError(serviceName, err.Error())
		}
		if err := json.Unmarshal(raw, &rec.Fields); err != nil {
			return nil, apperrors.NewParseError(serviceName, err.Error())
		}
		rec.CreatedTime = created.UTC().Format(time.RFC3339)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransportError(serviceName, err)
	}
	return records, nil
}

func (s *PostgresStore) CheckConnectivity(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewTransportError(serviceName, err)
	}
	return nil
}
