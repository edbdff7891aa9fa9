package graph

import (
	"context"
	"database/sql"
	"errors"
)

// --- jobs ---

type pgJobs struct{ t *pgTx }

const jobColumns = "id, recruiter_id, title, company, location, description, requirements, status, experience_required, created_at, updated_at"

var jobColumnMap = map[string]string{
	"id":                  "id",
	"title":               "title",
	"company":             "company",
	"experience_required": "experience_required",
	"created_at":          "created_at",
	"updated_at":          "updated_at",
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.RecruiterID, &j.Title, &j.Company, &j.Location, &j.Description,
		&j.Requirements, &j.Status, &j.ExperienceRequired, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r pgJobs) Create(ctx context.Context, j *Job) error {
	if j.Status == "" {
		j.Status = JobStatusDraft
	}
	if err := Validate(j); err != nil {
		return err
	}
	now := r.t.now()
	j.CreatedAt, j.UpdatedAt = now, now
	const query = `
INSERT INTO jobs (
    recruiter_id,
    title,
    company,
    location,
    description,
    requirements,
    status,
    experience_required,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query,
		j.RecruiterID, j.Title, j.Company, j.Location, j.Description, j.Requirements,
		string(j.Status), j.ExperienceRequired, j.CreatedAt, j.UpdatedAt,
	).Scan(&j.ID)
	return mapPGError(err)
}

func (r pgJobs) Get(ctx context.Context, id int64) (Job, error) {
	j, err := scanJob(r.t.q.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, notFound("job", id)
	}
	return j, err
}

func (r pgJobs) Update(ctx context.Context, j *Job) error {
	if err := Validate(j); err != nil {
		return err
	}
	j.UpdatedAt = r.t.now()
	const query = `
UPDATE jobs SET
    recruiter_id = $2,
    title = $3,
    company = $4,
    location = $5,
    description = $6,
    requirements = $7,
    status = $8,
    experience_required = $9,
    updated_at = $10
WHERE id = $1
RETURNING created_at`
	err := r.t.q.QueryRowContext(ctx, query,
		j.ID, j.RecruiterID, j.Title, j.Company, j.Location, j.Description, j.Requirements,
		string(j.Status), j.ExperienceRequired, j.UpdatedAt,
	).Scan(&j.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("job", j.ID)
	}
	return mapPGError(err)
}

func (r pgJobs) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "job", id, "DELETE FROM jobs WHERE id = $1", id)
}

func (r pgJobs) List(ctx context.Context, f JobFilter) ([]Job, error) {
	var w filter
	if f.RecruiterID != "" {
		w.eq("recruiter_id", f.RecruiterID)
	}
	if f.Status != "" {
		w.eq("status", string(f.Status))
	}
	if f.Search != "" {
		w.search(f.Search, "title", "company", "description", "requirements")
	}
	query := "SELECT " + jobColumns + " FROM jobs" + w.where() +
		orderBy(f.Ordering.Or(DefaultJobOrdering), jobColumnMap) + w.page(f.Page)
	rows, err := r.t.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// --- matches ---

type pgMatches struct{ t *pgTx }

const matchColumns = "m.id, m.resume_id, m.job_id, m.match_score, m.skill_match_percentage, m.experience_match_percentage, m.feedback, m.created_at"

var matchColumnMap = map[string]string{
	"id":                          "m.id",
	"match_score":                 "m.match_score",
	"skill_match_percentage":      "m.skill_match_percentage",
	"experience_match_percentage": "m.experience_match_percentage",
	"created_at":                  "m.created_at",
}

func scanMatch(row rowScanner) (Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.ResumeID, &m.JobID, &m.MatchScore, &m.SkillMatchPercentage,
		&m.ExperienceMatchPercentage, &m.Feedback, &m.CreatedAt)
	return m, err
}

func (r pgMatches) Create(ctx context.Context, m *Match) error {
	if err := Validate(m); err != nil {
		return err
	}
	m.CreatedAt = r.t.now()
	const query = `
INSERT INTO resume_job_matches (
    resume_id,
    job_id,
    match_score,
    skill_match_percentage,
    experience_match_percentage,
    feedback,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query,
		m.ResumeID, m.JobID, m.MatchScore, m.SkillMatchPercentage, m.ExperienceMatchPercentage,
		m.Feedback, m.CreatedAt,
	).Scan(&m.ID)
	err = mapPGError(err)
	if errors.Is(err, ErrConflict) {
		return duplicateMatch(m.ResumeID, m.JobID)
	}
	return err
}

func (r pgMatches) Get(ctx context.Context, id int64) (Match, error) {
	m, err := scanMatch(r.t.q.QueryRowContext(ctx, "SELECT "+matchColumns+" FROM resume_job_matches m WHERE m.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, notFound("match", id)
	}
	return m, err
}

func (r pgMatches) GetByPair(ctx context.Context, resumeID, jobID int64) (Match, error) {
	const query = "SELECT " + matchColumns + " FROM resume_job_matches m WHERE m.resume_id = $1 AND m.job_id = $2"
	m, err := scanMatch(r.t.q.QueryRowContext(ctx, query, resumeID, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, ErrNotFound
	}
	return m, err
}

func (r pgMatches) Update(ctx context.Context, m *Match) error {
	if err := Validate(m); err != nil {
		return err
	}
	const query = `
UPDATE resume_job_matches SET
    match_score = $2,
    skill_match_percentage = $3,
    experience_match_percentage = $4,
    feedback = $5
WHERE id = $1
RETURNING resume_id, job_id, created_at`
	err := r.t.q.QueryRowContext(ctx, query,
		m.ID, m.MatchScore, m.SkillMatchPercentage, m.ExperienceMatchPercentage, m.Feedback,
	).Scan(&m.ResumeID, &m.JobID, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("match", m.ID)
	}
	return mapPGError(err)
}

func (r pgMatches) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "match", id, "DELETE FROM resume_job_matches WHERE id = $1", id)
}

func (r pgMatches) List(ctx context.Context, f MatchFilter) ([]Match, error) {
	var w filter
	if f.ResumeID != 0 {
		w.eq("m.resume_id", f.ResumeID)
	}
	if f.JobID != 0 {
		w.eq("m.job_id", f.JobID)
	}
	if f.Search != "" {
		w.search(f.Search, "r.title", "j.title", "m.feedback")
	}
	query := "SELECT " + matchColumns + `
FROM resume_job_matches m
JOIN resumes r ON r.id = m.resume_id
JOIN jobs j ON j.id = m.job_id` +
		w.where() + orderBy(f.Ordering.Or(DefaultMatchOrdering), matchColumnMap) + w.page(f.Page)
	rows, err := r.t.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
