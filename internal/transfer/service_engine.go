package transfer

import (
	"context"

	"jobmatch-backend/internal/graph"
)

// Engine write-back. These are the only paths that set the fields computed
// by the parsing and scoring engine; the usual invariants still apply.

func (s *Service) RecordResumeAnalysis(ctx context.Context, resumeID int64, in ResumeAnalysis) (ResumeView, error) {
	var view ResumeView
	err := s.write(ctx, "engine.resume_analysis", func(tx graph.Tx) error {
		resume, err := tx.Resumes().Get(ctx, resumeID)
		if err != nil {
			return err
		}
		in.apply(&resume)
		if err := tx.Resumes().Update(ctx, &resume); err != nil {
			return err
		}
		view, err = loadResumeView(ctx, tx, resume)
		return err
	})
	return view, err
}

func (s *Service) RecordMatchScores(ctx context.Context, matchID int64, in MatchScores) (MatchView, error) {
	var view MatchView
	err := s.write(ctx, "engine.match_scores", func(tx graph.Tx) error {
		m, err := tx.Matches().Get(ctx, matchID)
		if err != nil {
			return err
		}
		in.apply(&m)
		if err := tx.Matches().Update(ctx, &m); err != nil {
			return err
		}
		view, err = newTitles(tx).matchView(ctx, m)
		return err
	})
	return view, err
}

func (s *Service) RecordFeedback(ctx context.Context, feedbackID int64, in FeedbackAdvice) (FeedbackView, error) {
	var view FeedbackView
	err := s.write(ctx, "engine.feedback", func(tx graph.Tx) error {
		f, err := tx.Feedback().Get(ctx, feedbackID)
		if err != nil {
			return err
		}
		in.apply(&f)
		if err := tx.Feedback().Update(ctx, &f); err != nil {
			return err
		}
		view, err = newTitles(tx).feedbackView(ctx, f)
		return err
	})
	return view, err
}
