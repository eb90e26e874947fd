package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hrcore/talent-match/internal/core/domain"
)

type HiringRepository struct {
	db *sql.DB
}

func NewHiringRepository(db *sql.DB) *HiringRepository {
	return &HiringRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *HiringRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS roles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role_id TEXT NOT NULL REFERENCES roles(id),
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS job_posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '',
	location TEXT,
	level TEXT,
	posted_by_id TEXT REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'open',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS resumes (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users(id),
	filename TEXT NOT NULL,
	file_url TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	parsed_data TEXT,
	uploaded_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES job_posts(id),
	resume_id TEXT NOT NULL REFERENCES resumes(id),
	status TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_job_status ON applications(job_id, status);
CREATE INDEX IF NOT EXISTS idx_resumes_owner ON resumes(owner_id);
CREATE INDEX IF NOT EXISTS idx_job_posts_created_at ON job_posts(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *HiringRepository) GetJobPost(ctx context.Context, id string) (*domain.JobPost, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, requirements, COALESCE(location, ''), COALESCE(level, ''), COALESCE(posted_by_id, ''), status, created_at
FROM job_posts
WHERE id = $1
`, id)

	var job domain.JobPost
	err := row.Scan(
		&job.ID, &job.Title, &job.Description, &job.Requirements,
		&job.Location, &job.Level, &job.PostedByID, &job.Status, &job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get job post", fmt.Errorf("job post %s", id))
		}
		return nil, fmt.Errorf("scan job post: %w", err)
	}
	return &job, nil
}

func (r *HiringRepository) ListJobPosts(ctx context.Context) ([]domain.JobPost, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, description, requirements, COALESCE(location, ''), COALESCE(level, ''), COALESCE(posted_by_id, ''), status, created_at
FROM job_posts
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query job posts: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobPost
	for rows.Next() {
		var job domain.JobPost
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Description, &job.Requirements,
			&job.Location, &job.Level, &job.PostedByID, &job.Status, &job.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job post: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job posts: %w", err)
	}
	return jobs, nil
}

func (r *HiringRepository) GetResume(ctx context.Context, id string) (*domain.Resume, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, filename, file_url, file_size, COALESCE(parsed_data, ''), uploaded_at
FROM resumes
WHERE id = $1
`, id)

	var resume domain.Resume
	err := row.Scan(
		&resume.ID, &resume.OwnerID, &resume.Filename, &resume.FileURL,
		&resume.FileSize, &resume.ParsedData, &resume.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get resume", fmt.Errorf("resume %s", id))
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}
	return &resume, nil
}

func (r *HiringRepository) CreateResume(ctx context.Context, resume *domain.Resume) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO resumes (id, owner_id, filename, file_url, file_size, parsed_data, uploaded_at)
VALUES ($1,$2,$3,$4,$5,NULLIF($6, ''),$7)
`,
		resume.ID, resume.OwnerID, resume.Filename, resume.FileURL,
		resume.FileSize, resume.ParsedData, resume.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}
	return nil
}

func (r *HiringRepository) SaveParsedResume(ctx context.Context, resumeID, parsed string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE resumes SET parsed_data = $2 WHERE id = $1
`, resumeID, parsed)
	if err != nil {
		return fmt.Errorf("update parsed resume: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("parsed resume rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "save parsed resume", fmt.Errorf("resume %s", resumeID))
	}
	return nil
}

func (r *HiringRepository) ActiveCandidates(ctx context.Context, jobID string) ([]domain.MatchCandidate, error) {
	statuses := domain.ActiveStatuses()
	placeholders := make([]string, 0, len(statuses))
	args := []any{jobID}
	for i, status := range statuses {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, string(status))
	}

	query := fmt.Sprintf(`
SELECT
	r.id, r.owner_id, r.filename, r.file_url, r.file_size, COALESCE(r.parsed_data, ''), r.uploaded_at,
	a.id, a.job_id, a.resume_id, a.status, a.applied_at,
	u.id, u.name, u.email, u.role_id, u.status
FROM applications a
JOIN resumes r ON r.id = a.resume_id
JOIN users u ON u.id = r.owner_id
JOIN roles ro ON ro.id = u.role_id
WHERE a.job_id = $1
  AND a.status IN (%s)
  AND ro.name = '%s'
ORDER BY a.applied_at
`, strings.Join(placeholders, ","), domain.RoleCandidate)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.MatchCandidate
	for rows.Next() {
		var c domain.MatchCandidate
		var status string
		if err := rows.Scan(
			&c.Resume.ID, &c.Resume.OwnerID, &c.Resume.Filename, &c.Resume.FileURL,
			&c.Resume.FileSize, &c.Resume.ParsedData, &c.Resume.UploadedAt,
			&c.Application.ID, &c.Application.JobID, &c.Application.ResumeID, &status, &c.Application.AppliedAt,
			&c.Candidate.ID, &c.Candidate.Name, &c.Candidate.Email, &c.Candidate.RoleID, &c.Candidate.Status,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.Application.Status = domain.ApplicationStatus(status)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}
