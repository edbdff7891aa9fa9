package transfer

import (
	"context"
	"time"

	"jobmatch-backend/internal/graph"
)

func (s *Service) CreateJob(ctx context.Context, recruiterID string, in JobCreate) (JobView, error) {
	start := time.Now()
	var view JobView
	err := s.write(ctx, "job.create", func(tx graph.Tx) error {
		job := in.toEntity(recruiterID)
		if err := tx.Jobs().Create(ctx, &job); err != nil {
			return err
		}
		if len(in.SkillIDs) > 0 {
			if err := linkSkills(ctx, tx, tx.JobSkills(), job.ID, in.SkillIDs); err != nil {
				return err
			}
		}
		var err error
		view, err = loadJobView(ctx, tx, job)
		return err
	})
	if err != nil {
		return JobView{}, err
	}
	observeCreate("job", start)
	return view, nil
}

// UpdateJob applies the provided fields. A missing skill_ids leaves the
// required skills untouched; an empty one clears them.
func (s *Service) UpdateJob(ctx context.Context, id int64, in JobUpdate) (JobView, error) {
	var view JobView
	err := s.write(ctx, "job.update", func(tx graph.Tx) error {
		job, err := tx.Jobs().Get(ctx, id)
		if err != nil {
			return err
		}
		in.apply(&job)
		if err := tx.Jobs().Update(ctx, &job); err != nil {
			return err
		}
		if in.SkillIDs != nil {
			if err := linkSkills(ctx, tx, tx.JobSkills(), id, *in.SkillIDs); err != nil {
				return err
			}
		}
		view, err = loadJobView(ctx, tx, job)
		return err
	})
	return view, err
}

func (s *Service) GetJob(ctx context.Context, id int64) (JobView, error) {
	var view JobView
	err := s.read(ctx, func(tx graph.Tx) error {
		job, err := tx.Jobs().Get(ctx, id)
		if err != nil {
			return err
		}
		view, err = loadJobView(ctx, tx, job)
		return err
	})
	return view, err
}

func (s *Service) ListJobs(ctx context.Context, f graph.JobFilter) ([]JobView, error) {
	var views []JobView
	err := s.read(ctx, func(tx graph.Tx) error {
		jobs, err := tx.Jobs().List(ctx, f)
		if err != nil {
			return err
		}
		views = make([]JobView, 0, len(jobs))
		for _, j := range jobs {
			v, err := loadJobView(ctx, tx, j)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func (s *Service) DeleteJob(ctx context.Context, id int64) error {
	return s.write(ctx, "job.delete", func(tx graph.Tx) error {
		return tx.Jobs().Delete(ctx, id)
	})
}
