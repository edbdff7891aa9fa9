package graph

import (
	"context"
	"database/sql"
	"errors"
)

// --- resumes ---

type pgResumes struct{ t *pgTx }

const resumeColumns = "id, user_id, title, file_name, file_key, content_type, is_parsed, raw_text, overall_rating, created_at, updated_at"

var resumeColumnMap = map[string]string{
	"id":             "id",
	"title":          "title",
	"overall_rating": "overall_rating",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
}

func scanResume(row rowScanner) (Resume, error) {
	var r Resume
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.FileName, &r.FileKey, &r.ContentType,
		&r.IsParsed, &r.RawText, &r.OverallRating, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r pgResumes) Create(ctx context.Context, res *Resume) error {
	if err := Validate(res); err != nil {
		return err
	}
	now := r.t.now()
	res.CreatedAt, res.UpdatedAt = now, now
	const query = `
INSERT INTO resumes (
    user_id,
    title,
    file_name,
    file_key,
    content_type,
    is_parsed,
    raw_text,
    overall_rating,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query,
		res.UserID, res.Title, res.FileName, res.FileKey, res.ContentType,
		res.IsParsed, res.RawText, res.OverallRating, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	return mapPGError(err)
}

func (r pgResumes) Get(ctx context.Context, id int64) (Resume, error) {
	res, err := scanResume(r.t.q.QueryRowContext(ctx, "SELECT "+resumeColumns+" FROM resumes WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, notFound("resume", id)
	}
	return res, err
}

func (r pgResumes) Update(ctx context.Context, res *Resume) error {
	if err := Validate(res); err != nil {
		return err
	}
	res.UpdatedAt = r.t.now()
	const query = `
UPDATE resumes SET
    user_id = $2,
    title = $3,
    file_name = $4,
    file_key = $5,
    content_type = $6,
    is_parsed = $7,
    raw_text = $8,
    overall_rating = $9,
    updated_at = $10
WHERE id = $1
RETURNING created_at`
	err := r.t.q.QueryRowContext(ctx, query,
		res.ID, res.UserID, res.Title, res.FileName, res.FileKey, res.ContentType,
		res.IsParsed, res.RawText, res.OverallRating, res.UpdatedAt,
	).Scan(&res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("resume", res.ID)
	}
	return mapPGError(err)
}

// Delete relies on ON DELETE CASCADE for dependent rows.
func (r pgResumes) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "resume", id, "DELETE FROM resumes WHERE id = $1", id)
}

func (r pgResumes) List(ctx context.Context, f ResumeFilter) ([]Resume, error) {
	var w filter
	if f.UserID != "" {
		w.eq("user_id", f.UserID)
	}
	if f.IsParsed != nil {
		w.eq("is_parsed", *f.IsParsed)
	}
	if f.ContentType != "" {
		w.eq("content_type", f.ContentType)
	}
	if f.Search != "" {
		w.search(f.Search, "title", "raw_text")
	}
	query := "SELECT " + resumeColumns + " FROM resumes" + w.where() +
		orderBy(f.Ordering.Or(DefaultResumeOrdering), resumeColumnMap) + w.page(f.Page)
	rows, err := r.t.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// --- education ---

type pgEducations struct{ t *pgTx }

const educationColumns = "id, resume_id, institution, degree, field_of_study, start_date, end_date, is_current, description"

var educationColumnMap = map[string]string{
	"id":          "id",
	"institution": "institution",
	"start_date":  "start_date",
	"end_date":    "end_date",
}

func scanEducation(row rowScanner) (Education, error) {
	var e Education
	var end sql.NullTime
	err := row.Scan(&e.ID, &e.ResumeID, &e.Institution, &e.Degree, &e.FieldOfStudy,
		&e.StartDate, &end, &e.IsCurrent, &e.Description)
	if end.Valid {
		e.EndDate = &end.Time
	}
	return e, err
}

func (r pgEducations) Create(ctx context.Context, e *Education) error {
	if err := Validate(e); err != nil {
		return err
	}
	const query = `
INSERT INTO educations (resume_id, institution, degree, field_of_study, start_date, end_date, is_current, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query,
		e.ResumeID, e.Institution, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate, e.IsCurrent, e.Description,
	).Scan(&e.ID)
	return mapPGError(err)
}

func (r pgEducations) Get(ctx context.Context, id int64) (Education, error) {
	e, err := scanEducation(r.t.q.QueryRowContext(ctx, "SELECT "+educationColumns+" FROM educations WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Education{}, notFound("education", id)
	}
	return e, err
}

func (r pgEducations) Update(ctx context.Context, e *Education) error {
	if err := Validate(e); err != nil {
		return err
	}
	const query = `
UPDATE educations SET
    institution = $2,
    degree = $3,
    field_of_study = $4,
    start_date = $5,
    end_date = $6,
    is_current = $7,
    description = $8
WHERE id = $1
RETURNING resume_id`
	err := r.t.q.QueryRowContext(ctx, query,
		e.ID, e.Institution, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate, e.IsCurrent, e.Description,
	).Scan(&e.ResumeID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("education", e.ID)
	}
	return mapPGError(err)
}

func (r pgEducations) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "education", id, "DELETE FROM educations WHERE id = $1", id)
}

func (r pgEducations) ListByResume(ctx context.Context, resumeID int64, ord Ordering) ([]Education, error) {
	query := "SELECT " + educationColumns + " FROM educations WHERE resume_id = $1" +
		orderBy(ord.Or(DefaultEducationOrdering), educationColumnMap)
	rows, err := r.t.q.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Education{}
	for rows.Next() {
		e, err := scanEducation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- experience ---

type pgExperiences struct{ t *pgTx }

const experienceColumns = "id, resume_id, company, title, location, start_date, end_date, is_current, description"

var experienceColumnMap = map[string]string{
	"id":         "id",
	"company":    "company",
	"start_date": "start_date",
	"end_date":   "end_date",
}

func scanExperience(row rowScanner) (Experience, error) {
	var e Experience
	var end sql.NullTime
	err := row.Scan(&e.ID, &e.ResumeID, &e.Company, &e.Title, &e.Location,
		&e.StartDate, &end, &e.IsCurrent, &e.Description)
	if end.Valid {
		e.EndDate = &end.Time
	}
	return e, err
}

func (r pgExperiences) Create(ctx context.Context, e *Experience) error {
	if err := Validate(e); err != nil {
		return err
	}
	const query = `
INSERT INTO experiences (resume_id, company, title, location, start_date, end_date, is_current, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query,
		e.ResumeID, e.Company, e.Title, e.Location, e.StartDate, e.EndDate, e.IsCurrent, e.Description,
	).Scan(&e.ID)
	return mapPGError(err)
}

func (r pgExperiences) Get(ctx context.Context, id int64) (Experience, error) {
	e, err := scanExperience(r.t.q.QueryRowContext(ctx, "SELECT "+experienceColumns+" FROM experiences WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Experience{}, notFound("experience", id)
	}
	return e, err
}

func (r pgExperiences) Update(ctx context.Context, e *Experience) error {
	if err := Validate(e); err != nil {
		return err
	}
	const query = `
UPDATE experiences SET
    company = $2,
    title = $3,
    location = $4,
    start_date = $5,
    end_date = $6,
    is_current = $7,
    description = $8
WHERE id = $1
RETURNING resume_id`
	err := r.t.q.QueryRowContext(ctx, query,
		e.ID, e.Company, e.Title, e.Location, e.StartDate, e.EndDate, e.IsCurrent, e.Description,
	).Scan(&e.ResumeID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("experience", e.ID)
	}
	return mapPGError(err)
}

func (r pgExperiences) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "experience", id, "DELETE FROM experiences WHERE id = $1", id)
}

func (r pgExperiences) ListByResume(ctx context.Context, resumeID int64, ord Ordering) ([]Experience, error) {
	query := "SELECT " + experienceColumns + " FROM experiences WHERE resume_id = $1" +
		orderBy(ord.Or(DefaultExperienceOrdering), experienceColumnMap)
	rows, err := r.t.q.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- feedback ---

type pgFeedback struct{ t *pgTx }

const feedbackColumns = "f.id, f.resume_id, f.skill_gaps, f.formatting_suggestions, f.keyword_optimization, f.overall_suggestions, f.created_at, f.updated_at"

var feedbackColumnMap = map[string]string{
	"id":         "f.id",
	"created_at": "f.created_at",
	"updated_at": "f.updated_at",
}

func scanFeedback(row rowScanner) (Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.ResumeID, &f.SkillGaps, &f.FormattingSuggestions,
		&f.KeywordOptimization, &f.OverallSuggestions, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r pgFeedback) Create(ctx context.Context, f *Feedback) error {
	if err := Validate(f); err != nil {
		return err
	}
	now := r.t.now()
	f.CreatedAt, f.UpdatedAt = now, now
	const query = `
INSERT INTO resume_feedback (
    resume_id,
    skill_gaps,
    formatting_suggestions,
    keyword_optimization,
    overall_suggestions,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query,
		f.ResumeID, f.SkillGaps, f.FormattingSuggestions, f.KeywordOptimization, f.OverallSuggestions,
		f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)
	return mapPGError(err)
}

func (r pgFeedback) Get(ctx context.Context, id int64) (Feedback, error) {
	f, err := scanFeedback(r.t.q.QueryRowContext(ctx, "SELECT "+feedbackColumns+" FROM resume_feedback f WHERE f.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Feedback{}, notFound("feedback", id)
	}
	return f, err
}

func (r pgFeedback) Update(ctx context.Context, f *Feedback) error {
	if err := Validate(f); err != nil {
		return err
	}
	f.UpdatedAt = r.t.now()
	const query = `
UPDATE resume_feedback SET
    skill_gaps = $2,
    formatting_suggestions = $3,
    keyword_optimization = $4,
    overall_suggestions = $5,
    updated_at = $6
WHERE id = $1
RETURNING resume_id, created_at`
	err := r.t.q.QueryRowContext(ctx, query,
		f.ID, f.SkillGaps, f.FormattingSuggestions, f.KeywordOptimization, f.OverallSuggestions, f.UpdatedAt,
	).Scan(&f.ResumeID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("feedback", f.ID)
	}
	return mapPGError(err)
}

func (r pgFeedback) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "feedback", id, "DELETE FROM resume_feedback WHERE id = $1", id)
}

func (r pgFeedback) List(ctx context.Context, flt FeedbackFilter) ([]Feedback, error) {
	var w filter
	if flt.ResumeID != 0 {
		w.eq("f.resume_id", flt.ResumeID)
	}
	if flt.Search != "" {
		w.search(flt.Search, "r.title", "f.skill_gaps", "f.formatting_suggestions", "f.keyword_optimization", "f.overall_suggestions")
	}
	query := "SELECT " + feedbackColumns + " FROM resume_feedback f JOIN resumes r ON r.id = f.resume_id" +
		w.where() + orderBy(flt.Ordering.Or(DefaultFeedbackOrdering), feedbackColumnMap) + w.page(flt.Page)
	rows, err := r.t.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
