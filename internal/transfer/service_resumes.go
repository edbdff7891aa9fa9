package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/queue"
	"jobmatch-backend/internal/shared/storage/object"
)

// CreateResume stores the uploaded file, then creates the resume with its
// skills, education and experience in one unit of work. The stored file is
// removed again if the unit of work fails.
func (s *Service) CreateResume(ctx context.Context, userID string, in ResumeCreate) (ResumeView, error) {
	start := time.Now()
	resume := graph.Resume{UserID: userID, Title: strings.TrimSpace(in.Title)}
	if err := graph.Validate(&resume); err != nil {
		return ResumeView{}, err
	}

	if in.File != nil {
		if s.Files == nil {
			return ResumeView{}, errors.New("file storage is not configured")
		}
		stored, err := s.Files.Save(ctx, userID, in.File.Name, in.File.Body)
		if err != nil {
			return ResumeView{}, fmt.Errorf("store resume file: %w", err)
		}
		resume.FileName = in.File.Name
		resume.FileKey = stored.Key
		resume.ContentType = InferContentType(in.File.Name)
	}

	var view ResumeView
	err := s.write(ctx, "resume.create", func(tx graph.Tx) error {
		if err := tx.Resumes().Create(ctx, &resume); err != nil {
			return err
		}
		if len(in.SkillIDs) > 0 {
			if err := linkSkills(ctx, tx, tx.ResumeSkills(), resume.ID, in.SkillIDs); err != nil {
				return err
			}
		}
		for i, item := range in.Education {
			edu := item.toEntity(resume.ID)
			if err := tx.Educations().Create(ctx, &edu); err != nil {
				return nestedError("education", i, err)
			}
		}
		for i, item := range in.Experience {
			exp := item.toEntity(resume.ID)
			if err := tx.Experiences().Create(ctx, &exp); err != nil {
				return nestedError("experience", i, err)
			}
			if len(item.SkillIDs) > 0 {
				if err := linkSkills(ctx, tx, tx.ExperienceSkills(), exp.ID, item.SkillIDs); err != nil {
					return nestedError("experience", i, err)
				}
			}
		}
		var err error
		view, err = loadResumeView(ctx, tx, resume)
		return err
	})
	if err != nil {
		s.deleteFile(ctx, resume.FileKey)
		return ResumeView{}, err
	}

	observeCreate("resume", start)
	s.publishParse(ctx, view)
	return view, nil
}

// ParseResume asks the engine to parse an existing resume again.
func (s *Service) ParseResume(ctx context.Context, id int64) (ResumeView, error) {
	view, err := s.GetResume(ctx, id)
	if err != nil {
		return ResumeView{}, err
	}
	s.publishParse(ctx, view)
	return view, nil
}

func (s *Service) publishParse(ctx context.Context, view ResumeView) {
	s.publish(ctx, queue.Message{
		Kind:        queue.KindParseResume,
		ResumeID:    view.ID,
		FileKey:     view.File,
		ContentType: view.ContentType,
	})
}

// UpdateResume applies the provided fields. SkillIDs replaces the skill
// links only when present.
func (s *Service) UpdateResume(ctx context.Context, id int64, in ResumeUpdate) (ResumeView, error) {
	var view ResumeView
	err := s.write(ctx, "resume.update", func(tx graph.Tx) error {
		resume, err := tx.Resumes().Get(ctx, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			resume.Title = strings.TrimSpace(*in.Title)
		}
		if err := tx.Resumes().Update(ctx, &resume); err != nil {
			return err
		}
		if in.SkillIDs != nil {
			if err := linkSkills(ctx, tx, tx.ResumeSkills(), id, *in.SkillIDs); err != nil {
				return err
			}
		}
		view, err = loadResumeView(ctx, tx, resume)
		return err
	})
	return view, err
}

func (s *Service) GetResume(ctx context.Context, id int64) (ResumeView, error) {
	var view ResumeView
	err := s.read(ctx, func(tx graph.Tx) error {
		resume, err := tx.Resumes().Get(ctx, id)
		if err != nil {
			return err
		}
		view, err = loadResumeView(ctx, tx, resume)
		return err
	})
	return view, err
}

func (s *Service) ListResumes(ctx context.Context, f graph.ResumeFilter) ([]ResumeView, error) {
	var views []ResumeView
	err := s.read(ctx, func(tx graph.Tx) error {
		resumes, err := tx.Resumes().List(ctx, f)
		if err != nil {
			return err
		}
		views = make([]ResumeView, 0, len(resumes))
		for _, r := range resumes {
			v, err := loadResumeView(ctx, tx, r)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

// DeleteResume removes the resume and everything it owns. The stored file
// is deleted after commit.
func (s *Service) DeleteResume(ctx context.Context, id int64) error {
	var fileKey string
	err := s.write(ctx, "resume.delete", func(tx graph.Tx) error {
		resume, err := tx.Resumes().Get(ctx, id)
		if err != nil {
			return err
		}
		fileKey = resume.FileKey
		return tx.Resumes().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.deleteFile(ctx, fileKey)
	return nil
}

// OpenResumeFile streams the stored document of a resume.
func (s *Service) OpenResumeFile(ctx context.Context, id int64) (io.ReadCloser, graph.Resume, error) {
	var resume graph.Resume
	err := s.read(ctx, func(tx graph.Tx) error {
		var err error
		resume, err = tx.Resumes().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, graph.Resume{}, err
	}
	if resume.FileKey == "" || s.Files == nil {
		return nil, graph.Resume{}, fmt.Errorf("resume %d has no file: %w", id, graph.ErrNotFound)
	}
	rc, err := s.Files.Open(ctx, resume.FileKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, graph.Resume{}, fmt.Errorf("resume %d file: %w", id, graph.ErrNotFound)
	}
	if err != nil {
		return nil, graph.Resume{}, err
	}
	return rc, resume, nil
}

// --- education ---

func (s *Service) CreateEducation(ctx context.Context, resumeID int64, in EducationPayload) (EducationView, error) {
	start := time.Now()
	edu := in.toEntity(resumeID)
	err := s.write(ctx, "education.create", func(tx graph.Tx) error {
		if _, err := tx.Resumes().Get(ctx, resumeID); err != nil {
			return err
		}
		return tx.Educations().Create(ctx, &edu)
	})
	if err != nil {
		return EducationView{}, err
	}
	observeCreate("education", start)
	return educationView(edu), nil
}

func (s *Service) UpdateEducation(ctx context.Context, id int64, in EducationUpdate) (EducationView, error) {
	var edu graph.Education
	err := s.write(ctx, "education.update", func(tx graph.Tx) error {
		var err error
		if edu, err = tx.Educations().Get(ctx, id); err != nil {
			return err
		}
		in.apply(&edu)
		return tx.Educations().Update(ctx, &edu)
	})
	if err != nil {
		return EducationView{}, err
	}
	return educationView(edu), nil
}

func (s *Service) GetEducation(ctx context.Context, id int64) (EducationView, error) {
	var edu graph.Education
	err := s.read(ctx, func(tx graph.Tx) error {
		var err error
		edu, err = tx.Educations().Get(ctx, id)
		return err
	})
	if err != nil {
		return EducationView{}, err
	}
	return educationView(edu), nil
}

func (s *Service) ListEducation(ctx context.Context, resumeID int64, ord graph.Ordering) ([]EducationView, error) {
	var views []EducationView
	err := s.read(ctx, func(tx graph.Tx) error {
		if _, err := tx.Resumes().Get(ctx, resumeID); err != nil {
			return err
		}
		items, err := tx.Educations().ListByResume(ctx, resumeID, ord)
		if err != nil {
			return err
		}
		views = make([]EducationView, 0, len(items))
		for _, e := range items {
			views = append(views, educationView(e))
		}
		return nil
	})
	return views, err
}

func (s *Service) DeleteEducation(ctx context.Context, id int64) error {
	return s.write(ctx, "education.delete", func(tx graph.Tx) error {
		return tx.Educations().Delete(ctx, id)
	})
}

// --- experience ---

// CreateExperience adds an experience to an existing resume, linking the
// skills in SkillIDs that exist.
func (s *Service) CreateExperience(ctx context.Context, resumeID int64, in ExperiencePayload) (ExperienceView, error) {
	start := time.Now()
	var view ExperienceView
	err := s.write(ctx, "experience.create", func(tx graph.Tx) error {
		if _, err := tx.Resumes().Get(ctx, resumeID); err != nil {
			return err
		}
		exp := in.toEntity(resumeID)
		if err := tx.Experiences().Create(ctx, &exp); err != nil {
			return err
		}
		if len(in.SkillIDs) > 0 {
			if err := linkSkills(ctx, tx, tx.ExperienceSkills(), exp.ID, in.SkillIDs); err != nil {
				return err
			}
		}
		var err error
		view, err = loadExperienceView(ctx, tx, exp)
		return err
	})
	if err != nil {
		return ExperienceView{}, err
	}
	observeCreate("experience", start)
	return view, nil
}

// UpdateExperience applies the provided fields. A missing skill_ids leaves
// the links untouched; an empty one clears them.
func (s *Service) UpdateExperience(ctx context.Context, id int64, in ExperienceUpdate) (ExperienceView, error) {
	var view ExperienceView
	err := s.write(ctx, "experience.update", func(tx graph.Tx) error {
		exp, err := tx.Experiences().Get(ctx, id)
		if err != nil {
			return err
		}
		in.apply(&exp)
		if err := tx.Experiences().Update(ctx, &exp); err != nil {
			return err
		}
		if in.SkillIDs != nil {
			if err := linkSkills(ctx, tx, tx.ExperienceSkills(), id, *in.SkillIDs); err != nil {
				return err
			}
		}
		view, err = loadExperienceView(ctx, tx, exp)
		return err
	})
	return view, err
}

func (s *Service) GetExperience(ctx context.Context, id int64) (ExperienceView, error) {
	var view ExperienceView
	err := s.read(ctx, func(tx graph.Tx) error {
		exp, err := tx.Experiences().Get(ctx, id)
		if err != nil {
			return err
		}
		view, err = loadExperienceView(ctx, tx, exp)
		return err
	})
	return view, err
}

func (s *Service) ListExperience(ctx context.Context, resumeID int64, ord graph.Ordering) ([]ExperienceView, error) {
	var views []ExperienceView
	err := s.read(ctx, func(tx graph.Tx) error {
		if _, err := tx.Resumes().Get(ctx, resumeID); err != nil {
			return err
		}
		items, err := tx.Experiences().ListByResume(ctx, resumeID, ord)
		if err != nil {
			return err
		}
		views = make([]ExperienceView, 0, len(items))
		for _, e := range items {
			v, err := loadExperienceView(ctx, tx, e)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func (s *Service) DeleteExperience(ctx context.Context, id int64) error {
	return s.write(ctx, "experience.delete", func(tx graph.Tx) error {
		return tx.Experiences().Delete(ctx, id)
	})
}
