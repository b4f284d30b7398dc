package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/model/photo"
)

// LibSQL implements Store on an embedded libsql database file.
type LibSQL struct {
	db *sql.DB
}

// OpenLibSQL opens (creating if needed) the database file and brings the
// schema up to date.
func OpenLibSQL(path string) (*LibSQL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open libsql database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping libsql database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &LibSQL{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *LibSQL) Close() error {
	return s.db.Close()
}

func (s *LibSQL) Create(ctx context.Context, p interview.Project) (interview.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO projects (id, owner_id, pet_name, pet_type, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.OwnerID, p.PetName, p.PetType, p.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return interview.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *LibSQL) Get(ctx context.Context, id string) (interview.Project, error) {
	const q = `SELECT id, owner_id, pet_name, pet_type, created_at FROM projects WHERE id = ?`

	var p interview.Project
	var createdAt string
	err := s.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.OwnerID, &p.PetName, &p.PetType, &createdAt)
	if err == sql.ErrNoRows {
		return interview.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return interview.Project{}, fmt.Errorf("query project: %w", err)
	}
	p.CreatedAt = parseStoredTime(createdAt)
	return p, nil
}

func (s *LibSQL) Delete(ctx context.Context, id string) error {
	// Foreign keys cascade to interview_messages and photo_analyses.
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *LibSQL) Append(ctx context.Context, msg interview.Message) (interview.Message, error) {
	if _, err := s.Get(ctx, msg.ProjectID); err != nil {
		return interview.Message{}, err
	}

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO interview_messages (id, project_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, msg.ID, msg.ProjectID, msg.Role, msg.Content, msg.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return interview.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (s *LibSQL) AppendBatch(ctx context.Context, msgs []interview.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO interview_messages (id, project_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	for _, msg := range msgs {
		id := msg.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := msg.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, q, id, msg.ProjectID, msg.Role, msg.Content, createdAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert batch message: %w", err)
		}
	}
	return tx.Commit()
}

func (s *LibSQL) ListByProject(ctx context.Context, projectID string) ([]interview.Message, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	const q = `SELECT id, project_id, role, content, created_at
		FROM interview_messages WHERE project_id = ? ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []interview.Message
	for rows.Next() {
		var msg interview.Message
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.ProjectID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.CreatedAt = parseStoredTime(createdAt)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *LibSQL) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := s.Get(ctx, projectID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM interview_messages WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func (s *LibSQL) SaveAnalysis(ctx context.Context, a photo.Analysis) (photo.Analysis, error) {
	if _, err := s.Get(ctx, a.ProjectID); err != nil {
		return photo.Analysis{}, err
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	details, err := marshalDetails(a.NotableDetails)
	if err != nil {
		return photo.Analysis{}, err
	}

	const q = `INSERT INTO photo_analyses (id, project_id, scene_summary, subject_type, subject_mood, notable_details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, a.ID, a.ProjectID, a.SceneSummary, a.SubjectType, a.SubjectMood, details, a.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return photo.Analysis{}, fmt.Errorf("insert photo analysis: %w", err)
	}
	return a, nil
}

func (s *LibSQL) ListAnalyses(ctx context.Context, projectID string) ([]photo.Analysis, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	const q = `SELECT id, project_id, scene_summary, subject_type, subject_mood, notable_details, created_at
		FROM photo_analyses WHERE project_id = ? ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("query photo analyses: %w", err)
	}
	defer rows.Close()

	var analyses []photo.Analysis
	for rows.Next() {
		var a photo.Analysis
		var createdAt, details string
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.SceneSummary, &a.SubjectType, &a.SubjectMood, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan photo analysis: %w", err)
		}
		a.CreatedAt = parseStoredTime(createdAt)
		a.NotableDetails = unmarshalDetails(details)
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func parseStoredTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
