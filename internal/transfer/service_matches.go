package transfer

import (
	"context"
	"errors"
	"time"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/queue"
)

// CreateMatch records a new (resume, job) pair and asks the engine to score
// it. A second match for the same pair fails with *graph.ConflictError.
func (s *Service) CreateMatch(ctx context.Context, in MatchCreate) (MatchView, error) {
	start := time.Now()
	var view MatchView
	err := s.write(ctx, "match.create", func(tx graph.Tx) error {
		if _, err := tx.Resumes().Get(ctx, in.ResumeID); err != nil {
			return err
		}
		if _, err := tx.Jobs().Get(ctx, in.JobID); err != nil {
			return err
		}
		m := graph.Match{ResumeID: in.ResumeID, JobID: in.JobID}
		if err := tx.Matches().Create(ctx, &m); err != nil {
			return err
		}
		var err error
		view, err = newTitles(tx).matchView(ctx, m)
		return err
	})
	if err != nil {
		return MatchView{}, err
	}
	observeCreate("match", start)
	s.publishScore(ctx, view.Match)
	return view, nil
}

// MatchJobs ensures a match exists between the resume and every job.
// Existing pairs are returned as they are; only new ones are scored.
func (s *Service) MatchJobs(ctx context.Context, resumeID int64, jobIDs []int64) ([]MatchView, error) {
	anchor := func(t *titles) error {
		_, err := t.resume(ctx, resumeID)
		return err
	}
	return s.matchPairs(ctx, "resume.match_jobs", "job_ids", jobIDs, anchor, func(other int64) (int64, int64) {
		return resumeID, other
	})
}

// MatchResumes ensures a match exists between the job and every resume.
func (s *Service) MatchResumes(ctx context.Context, jobID int64, resumeIDs []int64) ([]MatchView, error) {
	anchor := func(t *titles) error {
		_, err := t.job(ctx, jobID)
		return err
	}
	return s.matchPairs(ctx, "job.match_resumes", "resume_ids", resumeIDs, anchor, func(other int64) (int64, int64) {
		return other, jobID
	})
}

func (s *Service) matchPairs(ctx context.Context, op, list string, others []int64, anchor func(*titles) error, pair func(int64) (resumeID, jobID int64)) ([]MatchView, error) {
	start := time.Now()
	var (
		views   []MatchView
		created []graph.Match
	)
	err := s.write(ctx, op, func(tx graph.Tx) error {
		t := newTitles(tx)
		if err := anchor(t); err != nil {
			return err
		}
		seen := map[int64]bool{}
		for i, other := range others {
			if seen[other] {
				continue
			}
			seen[other] = true
			resumeID, jobID := pair(other)
			if _, err := t.resume(ctx, resumeID); err != nil {
				return err
			}
			if _, err := t.job(ctx, jobID); err != nil {
				return err
			}
			m, err := tx.Matches().GetByPair(ctx, resumeID, jobID)
			if errors.Is(err, graph.ErrNotFound) {
				m = graph.Match{ResumeID: resumeID, JobID: jobID}
				if err := tx.Matches().Create(ctx, &m); err != nil {
					return nestedError(list, i, err)
				}
				created = append(created, m)
			} else if err != nil {
				return err
			}
			v, err := t.matchView(ctx, m)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []MatchView{}
	}
	for _, m := range created {
		observeCreate("match", start)
		s.publishScore(ctx, m)
	}
	return views, nil
}

func (s *Service) publishScore(ctx context.Context, m graph.Match) {
	s.publish(ctx, queue.Message{
		Kind:     queue.KindScoreMatch,
		ResumeID: m.ResumeID,
		JobID:    m.JobID,
		MatchID:  m.ID,
	})
}

func (s *Service) GetMatch(ctx context.Context, id int64) (MatchView, error) {
	var view MatchView
	err := s.read(ctx, func(tx graph.Tx) error {
		m, err := tx.Matches().Get(ctx, id)
		if err != nil {
			return err
		}
		view, err = newTitles(tx).matchView(ctx, m)
		return err
	})
	return view, err
}

// ListMatches lists matches. When the filter names a resume or job that
// does not exist the result is NotFound rather than empty.
func (s *Service) ListMatches(ctx context.Context, f graph.MatchFilter) ([]MatchView, error) {
	var views []MatchView
	err := s.read(ctx, func(tx graph.Tx) error {
		t := newTitles(tx)
		if f.ResumeID != 0 {
			if _, err := t.resume(ctx, f.ResumeID); err != nil {
				return err
			}
		}
		if f.JobID != 0 {
			if _, err := t.job(ctx, f.JobID); err != nil {
				return err
			}
		}
		matches, err := tx.Matches().List(ctx, f)
		if err != nil {
			return err
		}
		views = make([]MatchView, 0, len(matches))
		for _, m := range matches {
			v, err := t.matchView(ctx, m)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func (s *Service) DeleteMatch(ctx context.Context, id int64) error {
	return s.write(ctx, "match.delete", func(tx graph.Tx) error {
		return tx.Matches().Delete(ctx, id)
	})
}

// --- feedback ---

// GenerateFeedback opens an empty feedback record for the engine to fill.
func (s *Service) GenerateFeedback(ctx context.Context, resumeID int64) (FeedbackView, error) {
	start := time.Now()
	var view FeedbackView
	err := s.write(ctx, "feedback.create", func(tx graph.Tx) error {
		resume, err := tx.Resumes().Get(ctx, resumeID)
		if err != nil {
			return err
		}
		f := graph.Feedback{ResumeID: resumeID}
		if err := tx.Feedback().Create(ctx, &f); err != nil {
			return err
		}
		view = FeedbackView{Feedback: f, ResumeTitle: resume.Title}
		return nil
	})
	if err != nil {
		return FeedbackView{}, err
	}
	observeCreate("feedback", start)
	s.publish(ctx, queue.Message{
		Kind:       queue.KindGenerateFeedback,
		ResumeID:   resumeID,
		FeedbackID: view.ID,
	})
	return view, nil
}

func (s *Service) GetFeedback(ctx context.Context, id int64) (FeedbackView, error) {
	var view FeedbackView
	err := s.read(ctx, func(tx graph.Tx) error {
		f, err := tx.Feedback().Get(ctx, id)
		if err != nil {
			return err
		}
		view, err = newTitles(tx).feedbackView(ctx, f)
		return err
	})
	return view, err
}

// ListFeedback lists feedback, NotFound when the resume filter names a
// missing resume.
func (s *Service) ListFeedback(ctx context.Context, f graph.FeedbackFilter) ([]FeedbackView, error) {
	var views []FeedbackView
	err := s.read(ctx, func(tx graph.Tx) error {
		t := newTitles(tx)
		if f.ResumeID != 0 {
			if _, err := t.resume(ctx, f.ResumeID); err != nil {
				return err
			}
		}
		items, err := tx.Feedback().List(ctx, f)
		if err != nil {
			return err
		}
		views = make([]FeedbackView, 0, len(items))
		for _, item := range items {
			v, err := t.feedbackView(ctx, item)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func (s *Service) DeleteFeedback(ctx context.Context, id int64) error {
	return s.write(ctx, "feedback.delete", func(tx graph.Tx) error {
		return tx.Feedback().Delete(ctx, id)
	})
}
