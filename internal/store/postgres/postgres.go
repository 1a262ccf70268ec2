// Package postgres stores engine documents as JSONB rows in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/store"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS candidate_profiles (
		id         TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS job_requirements (
		id         TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS interview_sessions (
		id           TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL,
		job_id       TEXT NOT NULL DEFAULT '',
		state        TEXT NOT NULL,
		doc          JSONB NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS assessment_reports (
		session_id TEXT PRIMARY KEY,
		job_id     TEXT NOT NULL DEFAULT '',
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS assessment_reports_job_id_idx ON assessment_reports (job_id)`,
}

// DB wraps a PostgreSQL connection pool and implements every store contract.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables when they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

func (db *DB) Stores() store.Stores {
	return store.Stores{Profiles: db, Jobs: db, Sessions: db, Reports: db}
}

func (db *DB) GetProfile(ctx context.Context, id model.CandidateID) (*model.CandidateProfile, error) {
	var p model.CandidateProfile
	if err := db.getDoc(ctx, `SELECT doc FROM candidate_profiles WHERE id = $1`, id.String(), &p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return &p, nil
}

func (db *DB) PutProfile(ctx context.Context, profile *model.CandidateProfile) error {
	if profile == nil || profile.ID.IsEmpty() {
		return errors.New("profile id is required")
	}
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO candidate_profiles (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = $2, updated_at = NOW()`,
		profile.ID.String(), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.ID, err)
	}
	return nil
}

func (db *DB) ListProfiles(ctx context.Context) ([]*model.CandidateProfile, error) {
	rows, err := db.pool.Query(ctx, `SELECT doc FROM candidate_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]*model.CandidateProfile, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var p model.CandidateProfile
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (db *DB) GetRequirement(ctx context.Context, id model.JobID) (*model.JobRequirement, error) {
	var req model.JobRequirement
	if err := db.getDoc(ctx, `SELECT doc FROM job_requirements WHERE id = $1`, id.String(), &req); err != nil {
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	return &req, nil
}

func (db *DB) PutRequirement(ctx context.Context, req *model.JobRequirement) error {
	if req == nil || req.ID.IsEmpty() {
		return errors.New("job id is required")
	}
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO job_requirements (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = $2, updated_at = NOW()`,
		req.ID.String(), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", req.ID, err)
	}
	return nil
}

func (db *DB) ListRequirements(ctx context.Context) ([]*model.JobRequirement, error) {
	rows, err := db.pool.Query(ctx, `SELECT doc FROM job_requirements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	out := make([]*model.JobRequirement, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		var req model.JobRequirement
		if err := json.Unmarshal(doc, &req); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}

func (db *DB) GetSession(ctx context.Context, id model.SessionID) (*model.InterviewSession, error) {
	var s model.InterviewSession
	if err := db.getDoc(ctx, `SELECT doc FROM interview_sessions WHERE id = $1`, id.String(), &s); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return &s, nil
}

func (db *DB) SaveSession(ctx context.Context, session *model.InterviewSession) error {
	if session == nil || session.ID.IsEmpty() {
		return errors.New("session id is required")
	}
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO interview_sessions (id, candidate_id, job_id, state, doc) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET state = $4, doc = $5, updated_at = NOW()`,
		session.ID.String(), session.CandidateID.String(), session.JobID.String(), string(session.State), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

func (db *DB) GetReport(ctx context.Context, sessionID model.SessionID) (*model.AssessmentReport, error) {
	var r model.AssessmentReport
	if err := db.getDoc(ctx, `SELECT doc FROM assessment_reports WHERE session_id = $1`, sessionID.String(), &r); err != nil {
		return nil, fmt.Errorf("report for session %s: %w", sessionID, err)
	}
	return &r, nil
}

func (db *DB) PutReport(ctx context.Context, report *model.AssessmentReport) error {
	if report == nil || report.SessionID.IsEmpty() {
		return errors.New("report session id is required")
	}
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO assessment_reports (session_id, job_id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO NOTHING`,
		report.SessionID.String(), report.JobID.String(), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", report.SessionID, store.ErrReportExists)
	}
	return nil
}

func (db *DB) ListReportsByJob(ctx context.Context, jobID model.JobID) ([]*model.AssessmentReport, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT doc FROM assessment_reports WHERE job_id = $1 ORDER BY session_id`,
		jobID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	out := make([]*model.AssessmentReport, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var r model.AssessmentReport
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (db *DB) getDoc(ctx context.Context, query, id string, dst any) error {
	var doc []byte
	if err := db.pool.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
