package graph

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewPGStore(db).WithClock(func() time.Time { return now }), mock
}

func TestPGSkillCreateDuplicateName(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO skills").
		WithArgs("Go", "", "", true).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "skills_name_key"})
	mock.ExpectRollback()

	err := store.Do(context.Background(), func(tx Tx) error {
		return tx.Skills().Create(context.Background(), &Skill{Name: "Go", IsTechnical: true})
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["name"] == "" {
		t.Fatalf("expected name validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGMatchCreateConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resume_job_matches").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "resume_job_matches_pair_key"})
	mock.ExpectRollback()

	err := store.Do(context.Background(), func(tx Tx) error {
		return tx.Matches().Create(context.Background(), &Match{ResumeID: 1, JobID: 2})
	})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if cerr.Fields["resume"] != int64(1) || cerr.Fields["job"] != int64(2) {
		t.Fatalf("unexpected conflict fields %v", cerr.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGCheckViolationNamesField(t *testing.T) {
	err := mapPGError(&pgconn.PgError{Code: "23514", TableName: "resumes", ConstraintName: "resumes_overall_rating_check"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["overall_rating"] == "" {
		t.Fatalf("expected overall_rating error, got %v", err)
	}
	if err := mapPGError(&pgconn.PgError{Code: "23503", ConstraintName: "educations_resume_id_fkey"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for fk violation, got %v", err)
	}
}

func TestPGNumericOverflowIsValidationError(t *testing.T) {
	err := mapPGError(&pgconn.PgError{Code: "22003", TableName: "jobs", ColumnName: "experience_required"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["experience_required"] == "" {
		t.Fatalf("expected experience_required error, got %v", err)
	}
	err = mapPGError(&pgconn.PgError{Code: "22003"})
	if !errors.As(err, &verr) || verr.Fields["value"] == "" {
		t.Fatalf("expected value error without column, got %v", err)
	}
}

func TestPGAssociationSetReplacesLinks(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resume_skills WHERE resume_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resume_skills (resume_id, skill_id) VALUES ($1, $2), ($1, $3) ON CONFLICT DO NOTHING")).
		WithArgs(int64(7), int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := store.Do(context.Background(), func(tx Tx) error {
		return tx.ResumeSkills().Set(context.Background(), 7, []int64{5, 2, 5})
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGAssociationSetEmptyOnlyDeletes(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM job_skills").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Do(context.Background(), func(tx Tx) error {
		return tx.JobSkills().Set(context.Background(), 3, nil)
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGResolveSkipsQueryForEmptyIDs(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := store.Do(context.Background(), func(tx Tx) error {
		got, err := tx.Skills().Resolve(context.Background(), nil)
		if err != nil {
			return err
		}
		if len(got) != 0 {
			t.Fatalf("expected no skills, got %d", len(got))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGEducationListOrdersCurrentFirst(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "resume_id", "institution", "degree", "field_of_study", "start_date", "end_date", "is_current", "description"}).
		AddRow(int64(2), int64(1), "Current", "MS", "CS", date("2018-09-01"), nil, true, "").
		AddRow(int64(1), int64(1), "Old", "BS", "CS", date("2005-09-01"), date("2009-06-01"), false, "")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY end_date DESC NULLS FIRST, start_date DESC, id ASC")).
		WithArgs(int64(1)).
		WillReturnRows(rows)
	mock.ExpectCommit()

	err := store.Do(context.Background(), func(tx Tx) error {
		got, err := tx.Educations().ListByResume(context.Background(), 1, nil)
		if err != nil {
			return err
		}
		if len(got) != 2 || got[0].EndDate != nil || got[1].EndDate == nil {
			t.Fatalf("unexpected rows %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGResumeListBuildsFilters(t *testing.T) {
	store, mock := newMockStore(t)
	parsed := true
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND is_parsed = $2 AND (title ILIKE $3 OR raw_text ILIKE $3)")).
		WithArgs("user-1", true, `%50\%%`, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := store.Do(context.Background(), func(tx Tx) error {
		_, err := tx.Resumes().List(context.Background(), ResumeFilter{
			UserID:   "user-1",
			IsParsed: &parsed,
			Search:   "50%",
			Page:     Page{Limit: 10},
		})
		return err
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGDeleteMissingIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM jobs").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Do(context.Background(), func(tx Tx) error {
		return tx.Jobs().Delete(context.Background(), 9)
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
