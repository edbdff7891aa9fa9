package graph

import (
	"context"
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func newTestStore() *MemoryStore {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	return NewMemoryStore().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
}

func mustDo(t *testing.T, s Store, fn func(tx Tx) error) {
	t.Helper()
	if err := s.Do(context.Background(), fn); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func seedResume(t *testing.T, s Store) Resume {
	t.Helper()
	res := Resume{UserID: "user-1", Title: "Backend engineer"}
	mustDo(t, s, func(tx Tx) error { return tx.Resumes().Create(context.Background(), &res) })
	return res
}

func TestMemorySkillNameUnique(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	mustDo(t, s, func(tx Tx) error { return tx.Skills().Create(ctx, &Skill{Name: "Go", IsTechnical: true}) })

	err := s.Do(ctx, func(tx Tx) error { return tx.Skills().Create(ctx, &Skill{Name: "Go"}) })
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["name"]; !ok {
		t.Fatalf("expected name field error, got %v", verr.Fields)
	}
}

func TestMemorySkillValidation(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	err := s.Do(ctx, func(tx Tx) error { return tx.Skills().Create(ctx, &Skill{}) })
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["name"] == "" {
		t.Fatalf("expected name required, got %v", err)
	}
}

func TestMemoryJobExperienceRequiredBounds(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	job := func(years int) *Job {
		return &Job{
			RecruiterID:        "recruiter-1",
			Title:              "Backend",
			Company:            "Acme",
			Location:           "Remote",
			Description:        "Build services",
			Requirements:       "Go",
			Status:             JobStatusDraft,
			ExperienceRequired: years,
		}
	}

	for _, years := range []int{-1, 3_000_000_000} {
		err := s.Do(ctx, func(tx Tx) error { return tx.Jobs().Create(ctx, job(years)) })
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Fields["experience_required"] == "" {
			t.Fatalf("experience_required=%d: expected validation error, got %v", years, err)
		}
	}
	mustDo(t, s, func(tx Tx) error { return tx.Jobs().Create(ctx, job(2147483647)) })
}

func TestMemoryResolveDropsUnknownIDs(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	a, b := Skill{Name: "Go"}, Skill{Name: "SQL"}
	mustDo(t, s, func(tx Tx) error {
		if err := tx.Skills().Create(ctx, &a); err != nil {
			return err
		}
		return tx.Skills().Create(ctx, &b)
	})

	var got []Skill
	mustDo(t, s, func(tx Tx) error {
		var err error
		got, err = tx.Skills().Resolve(ctx, []int64{b.ID, 999, a.ID, b.ID})
		return err
	})
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("unexpected resolve result: %+v", got)
	}
}

func TestMemoryRollbackDiscardsPartialWrites(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Do(ctx, func(tx Tx) error {
		res := Resume{UserID: "user-1", Title: "Draft"}
		if err := tx.Resumes().Create(ctx, &res); err != nil {
			return err
		}
		edu := Education{ResumeID: res.ID, Institution: "MIT", Degree: "BS", FieldOfStudy: "CS", StartDate: date("2010-09-01")}
		if err := tx.Educations().Create(ctx, &edu); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	mustDo(t, s, func(tx Tx) error {
		list, err := tx.Resumes().List(ctx, ResumeFilter{})
		if err != nil {
			return err
		}
		if len(list) != 0 {
			t.Fatalf("expected no resumes after rollback, got %d", len(list))
		}
		return nil
	})
}

func TestMemoryEducationOrderingPutsCurrentFirst(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	res := seedResume(t, s)

	entries := []Education{
		{Institution: "Old", StartDate: date("2005-09-01"), EndDate: datePtr("2009-06-01")},
		{Institution: "Current", StartDate: date("2018-09-01")},
		{Institution: "Recent", StartDate: date("2012-09-01"), EndDate: datePtr("2014-06-01")},
	}
	mustDo(t, s, func(tx Tx) error {
		for i := range entries {
			e := &entries[i]
			e.ResumeID, e.Degree, e.FieldOfStudy = res.ID, "BS", "CS"
			if err := tx.Educations().Create(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})

	mustDo(t, s, func(tx Tx) error {
		got, err := tx.Educations().ListByResume(ctx, res.ID, nil)
		if err != nil {
			return err
		}
		want := []string{"Current", "Recent", "Old"}
		for i, w := range want {
			if got[i].Institution != w {
				t.Fatalf("position %d: want %s, got %s", i, w, got[i].Institution)
			}
		}
		return nil
	})
}

func TestMemoryEndDateBeforeStartRejected(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	res := seedResume(t, s)

	err := s.Do(ctx, func(tx Tx) error {
		return tx.Experiences().Create(ctx, &Experience{
			ResumeID:  res.ID,
			Company:   "Acme",
			Title:     "Engineer",
			StartDate: date("2020-01-01"),
			EndDate:   datePtr("2019-01-01"),
		})
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["end_date"] == "" {
		t.Fatalf("expected end_date error, got %v", err)
	}
}

func TestMemoryMatchPairConflict(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	res := seedResume(t, s)
	job := Job{RecruiterID: "rec-1", Title: "Go dev", Company: "Acme", Location: "Remote", Description: "d", Requirements: "r"}
	mustDo(t, s, func(tx Tx) error { return tx.Jobs().Create(ctx, &job) })
	if job.Status != JobStatusDraft {
		t.Fatalf("expected default draft status, got %q", job.Status)
	}

	mustDo(t, s, func(tx Tx) error {
		return tx.Matches().Create(ctx, &Match{ResumeID: res.ID, JobID: job.ID, MatchScore: 80})
	})
	err := s.Do(ctx, func(tx Tx) error {
		return tx.Matches().Create(ctx, &Match{ResumeID: res.ID, JobID: job.ID})
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryResumeDeleteCascades(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	res := seedResume(t, s)
	skill := Skill{Name: "Go"}
	exp := Experience{ResumeID: res.ID, Company: "Acme", Title: "Engineer", StartDate: date("2020-01-01")}
	mustDo(t, s, func(tx Tx) error {
		if err := tx.Skills().Create(ctx, &skill); err != nil {
			return err
		}
		if err := tx.Experiences().Create(ctx, &exp); err != nil {
			return err
		}
		if err := tx.ExperienceSkills().Set(ctx, exp.ID, []int64{skill.ID}); err != nil {
			return err
		}
		return tx.Feedback().Create(ctx, &Feedback{ResumeID: res.ID, SkillGaps: "k8s"})
	})

	mustDo(t, s, func(tx Tx) error { return tx.Resumes().Delete(ctx, res.ID) })

	mustDo(t, s, func(tx Tx) error {
		if _, err := tx.Experiences().Get(ctx, exp.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected experience gone, got %v", err)
		}
		fb, err := tx.Feedback().List(ctx, FeedbackFilter{})
		if err != nil {
			return err
		}
		if len(fb) != 0 {
			t.Fatalf("expected feedback gone, got %d", len(fb))
		}
		if _, err := tx.Skills().Get(ctx, skill.ID); err != nil {
			t.Fatalf("skill must survive: %v", err)
		}
		return nil
	})
}

func TestMemorySkillDeleteUnlinks(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	res := seedResume(t, s)
	a, b := Skill{Name: "Go"}, Skill{Name: "SQL"}
	mustDo(t, s, func(tx Tx) error {
		if err := tx.Skills().Create(ctx, &a); err != nil {
			return err
		}
		if err := tx.Skills().Create(ctx, &b); err != nil {
			return err
		}
		return tx.ResumeSkills().Set(ctx, res.ID, []int64{b.ID, a.ID})
	})
	mustDo(t, s, func(tx Tx) error { return tx.Skills().Delete(ctx, a.ID) })

	mustDo(t, s, func(tx Tx) error {
		got, err := tx.ResumeSkills().Skills(ctx, res.ID)
		if err != nil {
			return err
		}
		if len(got) != 1 || got[0].ID != b.ID {
			t.Fatalf("expected only SQL linked, got %+v", got)
		}
		return nil
	})
}

func TestMemoryListFiltersAndPaging(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	mustDo(t, s, func(tx Tx) error {
		for _, title := range []string{"Go backend", "Frontend", "Go platform"} {
			if err := tx.Resumes().Create(ctx, &Resume{UserID: "user-1", Title: title}); err != nil {
				return err
			}
		}
		return tx.Resumes().Create(ctx, &Resume{UserID: "user-2", Title: "Go other"})
	})

	mustDo(t, s, func(tx Tx) error {
		got, err := tx.Resumes().List(ctx, ResumeFilter{UserID: "user-1", Search: "go"})
		if err != nil {
			return err
		}
		if len(got) != 2 || got[0].Title != "Go platform" {
			t.Fatalf("unexpected filter result: %+v", got)
		}
		paged, err := tx.Resumes().List(ctx, ResumeFilter{
			Ordering: Ordering{{Name: "title"}},
			Page:     Page{Limit: 2, Offset: 1},
		})
		if err != nil {
			return err
		}
		if len(paged) != 2 || paged[0].Title != "Go backend" || paged[1].Title != "Go other" {
			t.Fatalf("unexpected page: %+v", paged)
		}
		return nil
	})
}

func TestMemoryUpdateMissingIsNotFound(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	err := s.Do(ctx, func(tx Tx) error {
		return tx.Jobs().Update(ctx, &Job{ID: 42, RecruiterID: "r", Title: "t", Company: "c", Location: "l", Description: "d", Requirements: "r", Status: JobStatusActive})
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
