package transfer

import (
	"context"
	"time"

	"jobmatch-backend/internal/graph"
)

// Read views expand related entities in place of bare identifiers.

type EducationView struct {
	ID           int64  `json:"id"`
	ResumeID     int64  `json:"resume"`
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	StartDate    Date   `json:"start_date"`
	EndDate      *Date  `json:"end_date"`
	IsCurrent    bool   `json:"is_current"`
	Description  string `json:"description"`
}

type ExperienceView struct {
	ID          int64         `json:"id"`
	ResumeID    int64         `json:"resume"`
	Company     string        `json:"company"`
	Title       string        `json:"title"`
	Location    string        `json:"location"`
	StartDate   Date          `json:"start_date"`
	EndDate     *Date         `json:"end_date"`
	IsCurrent   bool          `json:"is_current"`
	Description string        `json:"description"`
	SkillsUsed  []graph.Skill `json:"skills_used"`
}

type ResumeView struct {
	ID            int64            `json:"id"`
	UserID        string           `json:"user"`
	Title         string           `json:"title"`
	File          string           `json:"file"`
	FileName      string           `json:"file_name"`
	ContentType   string           `json:"content_type"`
	IsParsed      bool             `json:"is_parsed"`
	RawText       string           `json:"raw_text"`
	Skills        []graph.Skill    `json:"skills"`
	Education     []EducationView  `json:"education"`
	Experience    []ExperienceView `json:"experience"`
	OverallRating float64          `json:"overall_rating"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type JobView struct {
	ID                 int64           `json:"id"`
	RecruiterID        string          `json:"recruiter"`
	Title              string          `json:"title"`
	Company            string          `json:"company"`
	Location           string          `json:"location"`
	Description        string          `json:"description"`
	Requirements       string          `json:"requirements"`
	Status             graph.JobStatus `json:"status"`
	SkillsRequired     []graph.Skill   `json:"skills_required"`
	ExperienceRequired int             `json:"experience_required"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type MatchView struct {
	graph.Match
	ResumeTitle string `json:"resume_title"`
	JobTitle    string `json:"job_title"`
}

type FeedbackView struct {
	graph.Feedback
	ResumeTitle string `json:"resume_title"`
}

func educationView(e graph.Education) EducationView {
	return EducationView{
		ID:           e.ID,
		ResumeID:     e.ResumeID,
		Institution:  e.Institution,
		Degree:       e.Degree,
		FieldOfStudy: e.FieldOfStudy,
		StartDate:    NewDate(e.StartDate),
		EndDate:      datePtr(e.EndDate),
		IsCurrent:    e.IsCurrent,
		Description:  e.Description,
	}
}

func loadExperienceView(ctx context.Context, tx graph.Tx, e graph.Experience) (ExperienceView, error) {
	skills, err := tx.ExperienceSkills().Skills(ctx, e.ID)
	if err != nil {
		return ExperienceView{}, err
	}
	return ExperienceView{
		ID:          e.ID,
		ResumeID:    e.ResumeID,
		Company:     e.Company,
		Title:       e.Title,
		Location:    e.Location,
		StartDate:   NewDate(e.StartDate),
		EndDate:     datePtr(e.EndDate),
		IsCurrent:   e.IsCurrent,
		Description: e.Description,
		SkillsUsed:  skills,
	}, nil
}

func loadResumeView(ctx context.Context, tx graph.Tx, r graph.Resume) (ResumeView, error) {
	skills, err := tx.ResumeSkills().Skills(ctx, r.ID)
	if err != nil {
		return ResumeView{}, err
	}
	educations, err := tx.Educations().ListByResume(ctx, r.ID, nil)
	if err != nil {
		return ResumeView{}, err
	}
	experiences, err := tx.Experiences().ListByResume(ctx, r.ID, nil)
	if err != nil {
		return ResumeView{}, err
	}

	view := ResumeView{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		File:          r.FileKey,
		FileName:      r.FileName,
		ContentType:   r.ContentType,
		IsParsed:      r.IsParsed,
		RawText:       r.RawText,
		Skills:        skills,
		Education:     make([]EducationView, 0, len(educations)),
		Experience:    make([]ExperienceView, 0, len(experiences)),
		OverallRating: r.OverallRating,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, e := range educations {
		view.Education = append(view.Education, educationView(e))
	}
	for _, e := range experiences {
		ev, err := loadExperienceView(ctx, tx, e)
		if err != nil {
			return ResumeView{}, err
		}
		view.Experience = append(view.Experience, ev)
	}
	return view, nil
}

func loadJobView(ctx context.Context, tx graph.Tx, j graph.Job) (JobView, error) {
	skills, err := tx.JobSkills().Skills(ctx, j.ID)
	if err != nil {
		return JobView{}, err
	}
	return JobView{
		ID:                 j.ID,
		RecruiterID:        j.RecruiterID,
		Title:              j.Title,
		Company:            j.Company,
		Location:           j.Location,
		Description:        j.Description,
		Requirements:       j.Requirements,
		Status:             j.Status,
		SkillsRequired:     skills,
		ExperienceRequired: j.ExperienceRequired,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}, nil
}

// titles memoizes owner titles while building a list of views.
type titles struct {
	tx      graph.Tx
	resumes map[int64]string
	jobs    map[int64]string
}

func newTitles(tx graph.Tx) *titles {
	return &titles{tx: tx, resumes: map[int64]string{}, jobs: map[int64]string{}}
}

func (t *titles) resume(ctx context.Context, id int64) (string, error) {
	if title, ok := t.resumes[id]; ok {
		return title, nil
	}
	r, err := t.tx.Resumes().Get(ctx, id)
	if err != nil {
		return "", err
	}
	t.resumes[id] = r.Title
	return r.Title, nil
}

func (t *titles) job(ctx context.Context, id int64) (string, error) {
	if title, ok := t.jobs[id]; ok {
		return title, nil
	}
	j, err := t.tx.Jobs().Get(ctx, id)
	if err != nil {
		return "", err
	}
	t.jobs[id] = j.Title
	return j.Title, nil
}

func (t *titles) matchView(ctx context.Context, m graph.Match) (MatchView, error) {
	resumeTitle, err := t.resume(ctx, m.ResumeID)
	if err != nil {
		return MatchView{}, err
	}
	jobTitle, err := t.job(ctx, m.JobID)
	if err != nil {
		return MatchView{}, err
	}
	return MatchView{Match: m, ResumeTitle: resumeTitle, JobTitle: jobTitle}, nil
}

func (t *titles) feedbackView(ctx context.Context, f graph.Feedback) (FeedbackView, error) {
	resumeTitle, err := t.resume(ctx, f.ResumeID)
	if err != nil {
		return FeedbackView{}, err
	}
	return FeedbackView{Feedback: f, ResumeTitle: resumeTitle}, nil
}
