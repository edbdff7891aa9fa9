package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"jobmatch-backend/internal/shared/storage/db"
)

// PGStore implements Store using Postgres. Each unit of work is one
// read-committed transaction.
type PGStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPGStore wraps an open database handle.
func NewPGStore(database *sql.DB) *PGStore {
	return &PGStore{DB: database, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the timestamp source, for tests.
func (s *PGStore) WithClock(now func() time.Time) *PGStore {
	s.now = now
	return s
}

// Do runs fn inside a transaction that commits only when fn returns nil.
func (s *PGStore) Do(ctx context.Context, fn func(tx Tx) error) error {
	return db.InTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(&pgTx{q: tx, now: s.now})
	})
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type pgTx struct {
	q   queryer
	now func() time.Time
}

func (t *pgTx) Skills() SkillRepo           { return pgSkills{t} }
func (t *pgTx) Resumes() ResumeRepo         { return pgResumes{t} }
func (t *pgTx) Educations() EducationRepo   { return pgEducations{t} }
func (t *pgTx) Experiences() ExperienceRepo { return pgExperiences{t} }
func (t *pgTx) Jobs() JobRepo               { return pgJobs{t} }
func (t *pgTx) Matches() MatchRepo          { return pgMatches{t} }
func (t *pgTx) Feedback() FeedbackRepo      { return pgFeedback{t} }

func (t *pgTx) ResumeSkills() AssociationRepo {
	return pgLinks{t: t, table: "resume_skills", ownerCol: "resume_id"}
}

func (t *pgTx) ExperienceSkills() AssociationRepo {
	return pgLinks{t: t, table: "experience_skills", ownerCol: "experience_id"}
}

func (t *pgTx) JobSkills() AssociationRepo {
	return pgLinks{t: t, table: "job_skills", ownerCol: "job_id"}
}

// filter accumulates WHERE conditions with positional arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return "$" + strconv.Itoa(len(f.args))
}

func (f *filter) eq(col string, v any) {
	f.conds = append(f.conds, col+" = "+f.arg(v))
}

func (f *filter) search(term string, cols ...string) {
	p := f.arg("%" + escapeLike(term) + "%")
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, c+" ILIKE "+p)
	}
	f.conds = append(f.conds, "("+strings.Join(parts, " OR ")+")")
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(f.conds, " AND ")
}

func (f *filter) page(p Page) string {
	var out string
	if p.Limit > 0 {
		out += "\nLIMIT " + f.arg(p.Limit)
	}
	if p.Offset > 0 {
		out += "\nOFFSET " + f.arg(p.Offset)
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderBy renders ord against a column whitelist. NULL end dates sort after
// every real date, matching the in-memory store.
func orderBy(ord Ordering, cols map[string]string) string {
	ord = ord.withIDTiebreak()
	parts := make([]string, 0, len(ord))
	for _, f := range ord {
		col, ok := cols[f.Name]
		if !ok {
			continue
		}
		switch {
		case f.Desc && f.Name == "end_date":
			parts = append(parts, col+" DESC NULLS FIRST")
		case f.Desc:
			parts = append(parts, col+" DESC")
		case f.Name == "end_date":
			parts = append(parts, col+" ASC NULLS LAST")
		default:
			parts = append(parts, col+" ASC")
		}
	}
	return "\nORDER BY " + strings.Join(parts, ", ")
}

func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

// mapPGError translates constraint violations into domain errors.
func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		switch pgErr.ConstraintName {
		case "skills_name_key":
			return duplicateSkillName()
		case "resume_job_matches_pair_key":
			return &ConflictError{Resource: "resume job match"}
		}
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrConflict)
	case "23514":
		field := strings.TrimSuffix(strings.TrimPrefix(pgErr.ConstraintName, pgErr.TableName+"_"), "_check")
		return NewValidationError(field, "value violates "+pgErr.ConstraintName)
	case "23503":
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrNotFound)
	case "22003":
		field := pgErr.ColumnName
		if field == "" {
			field = "value"
		}
		return NewValidationError(field, "value is out of range")
	}
	return err
}

func execAffecting(ctx context.Context, q queryer, kind string, id int64, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapPGError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// --- skills ---

type pgSkills struct{ t *pgTx }

const skillColumns = "id, name, category, description, is_technical"

var skillColumnMap = map[string]string{"id": "id", "name": "name", "category": "category"}

func scanSkill(row rowScanner) (Skill, error) {
	var s Skill
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Description, &s.IsTechnical)
	return s, err
}

func collectSkills(rows *sql.Rows) ([]Skill, error) {
	defer rows.Close()
	out := []Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r pgSkills) Create(ctx context.Context, s *Skill) error {
	if err := Validate(s); err != nil {
		return err
	}
	const query = `
INSERT INTO skills (name, category, description, is_technical)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := r.t.q.QueryRowContext(ctx, query, s.Name, s.Category, s.Description, s.IsTechnical).Scan(&s.ID)
	return mapPGError(err)
}

func (r pgSkills) Get(ctx context.Context, id int64) (Skill, error) {
	s, err := scanSkill(r.t.q.QueryRowContext(ctx, "SELECT "+skillColumns+" FROM skills WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Skill{}, notFound("skill", id)
	}
	return s, err
}

func (r pgSkills) GetByName(ctx context.Context, name string) (Skill, error) {
	s, err := scanSkill(r.t.q.QueryRowContext(ctx, "SELECT "+skillColumns+" FROM skills WHERE name = $1", name))
	if errors.Is(err, sql.ErrNoRows) {
		return Skill{}, ErrNotFound
	}
	return s, err
}

func (r pgSkills) Update(ctx context.Context, s *Skill) error {
	if err := Validate(s); err != nil {
		return err
	}
	const query = `
UPDATE skills SET name = $2, category = $3, description = $4, is_technical = $5
WHERE id = $1`
	return execAffecting(ctx, r.t.q, "skill", s.ID, query, s.ID, s.Name, s.Category, s.Description, s.IsTechnical)
}

func (r pgSkills) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.t.q, "skill", id, "DELETE FROM skills WHERE id = $1", id)
}

func (r pgSkills) Resolve(ctx context.Context, ids []int64) ([]Skill, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return []Skill{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := "SELECT " + skillColumns + " FROM skills WHERE id IN (" + placeholders(1, len(ids)) + ") ORDER BY id"
	rows, err := r.t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSkills(rows)
}

func (r pgSkills) List(ctx context.Context, f SkillFilter) ([]Skill, error) {
	var w filter
	if f.IsTechnical != nil {
		w.eq("is_technical", *f.IsTechnical)
	}
	if f.Category != "" {
		w.eq("category", f.Category)
	}
	if f.Search != "" {
		w.search(f.Search, "name", "category")
	}
	query := "SELECT " + skillColumns + " FROM skills" + w.where() +
		orderBy(f.Ordering.Or(DefaultSkillOrdering), skillColumnMap) + w.page(f.Page)
	rows, err := r.t.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collectSkills(rows)
}

// --- skill links ---

type pgLinks struct {
	t        *pgTx
	table    string
	ownerCol string
}

func (l pgLinks) Set(ctx context.Context, ownerID int64, skillIDs []int64) error {
	if _, err := l.t.q.ExecContext(ctx, "DELETE FROM "+l.table+" WHERE "+l.ownerCol+" = $1", ownerID); err != nil {
		return err
	}
	ids := slices.Clone(skillIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil
	}

	args := []any{ownerID}
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		values = append(values, "($1, $"+strconv.Itoa(len(args))+")")
	}
	query := "INSERT INTO " + l.table + " (" + l.ownerCol + ", skill_id) VALUES " +
		strings.Join(values, ", ") + " ON CONFLICT DO NOTHING"
	if _, err := l.t.q.ExecContext(ctx, query, args...); err != nil {
		return mapPGError(err)
	}
	return nil
}

func (l pgLinks) Skills(ctx context.Context, ownerID int64) ([]Skill, error) {
	query := `
SELECT s.id, s.name, s.category, s.description, s.is_technical
FROM skills s
JOIN ` + l.table + ` l ON l.skill_id = s.id
WHERE l.` + l.ownerCol + ` = $1
ORDER BY s.id`
	rows, err := l.t.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return collectSkills(rows)
}

var (
	_ Store = (*PGStore)(nil)
	_ Tx    = (*pgTx)(nil)
)
