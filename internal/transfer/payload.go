package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"jobmatch-backend/internal/graph"
)

// DateLayout is the wire format of education and experience dates.
const DateLayout = "2006-01-02"

// Date is a calendar date encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("date %q must use %s format", s, DateLayout)
	}
	*d = Date{Time: t}
	return nil
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

func (d *Date) timePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Present bool
	Value   *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Present = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Write payloads. Fields owned by the parsing and scoring engine are
// absent here, so callers cannot set them through these types.

type SkillPayload struct {
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	IsTechnical *bool  `json:"is_technical" yaml:"is_technical"`
}

func (p SkillPayload) toEntity() graph.Skill {
	s := graph.Skill{
		Name:        strings.TrimSpace(p.Name),
		Category:    strings.TrimSpace(p.Category),
		Description: p.Description,
		IsTechnical: true,
	}
	if p.IsTechnical != nil {
		s.IsTechnical = *p.IsTechnical
	}
	return s
}

type SkillUpdate struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	IsTechnical *bool   `json:"is_technical"`
}

func (u SkillUpdate) apply(s *graph.Skill) {
	if u.Name != nil {
		s.Name = strings.TrimSpace(*u.Name)
	}
	if u.Category != nil {
		s.Category = strings.TrimSpace(*u.Category)
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.IsTechnical != nil {
		s.IsTechnical = *u.IsTechnical
	}
}

type EducationPayload struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	StartDate    Date   `json:"start_date"`
	EndDate      *Date  `json:"end_date"`
	IsCurrent    bool   `json:"is_current"`
	Description  string `json:"description"`
}

func (p EducationPayload) toEntity(resumeID int64) graph.Education {
	return graph.Education{
		ResumeID:     resumeID,
		Institution:  strings.TrimSpace(p.Institution),
		Degree:       strings.TrimSpace(p.Degree),
		FieldOfStudy: strings.TrimSpace(p.FieldOfStudy),
		StartDate:    p.StartDate.Time,
		EndDate:      p.EndDate.timePtr(),
		IsCurrent:    p.IsCurrent,
		Description:  p.Description,
	}
}

type EducationUpdate struct {
	Institution  *string        `json:"institution"`
	Degree       *string        `json:"degree"`
	FieldOfStudy *string        `json:"field_of_study"`
	StartDate    *Date          `json:"start_date"`
	EndDate      Nullable[Date] `json:"end_date"`
	IsCurrent    *bool          `json:"is_current"`
	Description  *string        `json:"description"`
}

func (u EducationUpdate) apply(e *graph.Education) {
	if u.Institution != nil {
		e.Institution = strings.TrimSpace(*u.Institution)
	}
	if u.Degree != nil {
		e.Degree = strings.TrimSpace(*u.Degree)
	}
	if u.FieldOfStudy != nil {
		e.FieldOfStudy = strings.TrimSpace(*u.FieldOfStudy)
	}
	if u.StartDate != nil {
		e.StartDate = u.StartDate.Time
	}
	if u.EndDate.Present {
		e.EndDate = u.EndDate.Value.timePtr()
	}
	if u.IsCurrent != nil {
		e.IsCurrent = *u.IsCurrent
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
}

type ExperiencePayload struct {
	Company     string  `json:"company"`
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	StartDate   Date    `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
	IsCurrent   bool    `json:"is_current"`
	Description string  `json:"description"`
	SkillIDs    []int64 `json:"skill_ids"`
}

func (p ExperiencePayload) toEntity(resumeID int64) graph.Experience {
	return graph.Experience{
		ResumeID:    resumeID,
		Company:     strings.TrimSpace(p.Company),
		Title:       strings.TrimSpace(p.Title),
		Location:    strings.TrimSpace(p.Location),
		StartDate:   p.StartDate.Time,
		EndDate:     p.EndDate.timePtr(),
		IsCurrent:   p.IsCurrent,
		Description: p.Description,
	}
}

// ExperienceUpdate is a partial update. A nil SkillIDs leaves the skill
// links alone; a non-nil empty slice clears them.
type ExperienceUpdate struct {
	Company     *string        `json:"company"`
	Title       *string        `json:"title"`
	Location    *string        `json:"location"`
	StartDate   *Date          `json:"start_date"`
	EndDate     Nullable[Date] `json:"end_date"`
	IsCurrent   *bool          `json:"is_current"`
	Description *string        `json:"description"`
	SkillIDs    *[]int64       `json:"skill_ids"`
}

func (u ExperienceUpdate) apply(e *graph.Experience) {
	if u.Company != nil {
		e.Company = strings.TrimSpace(*u.Company)
	}
	if u.Title != nil {
		e.Title = strings.TrimSpace(*u.Title)
	}
	if u.Location != nil {
		e.Location = strings.TrimSpace(*u.Location)
	}
	if u.StartDate != nil {
		e.StartDate = u.StartDate.Time
	}
	if u.EndDate.Present {
		e.EndDate = u.EndDate.Value.timePtr()
	}
	if u.IsCurrent != nil {
		e.IsCurrent = *u.IsCurrent
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
}

// FileUpload is an uploaded resume document.
type FileUpload struct {
	Name string
	Body io.Reader
}

// ResumeCreate creates a resume with its nested education and experience.
type ResumeCreate struct {
	Title      string              `json:"title"`
	SkillIDs   []int64             `json:"skill_ids"`
	Education  []EducationPayload  `json:"education"`
	Experience []ExperiencePayload `json:"experience"`
	File       *FileUpload         `json:"-"`
}

type ResumeUpdate struct {
	Title    *string  `json:"title"`
	SkillIDs *[]int64 `json:"skill_ids"`
}

type JobCreate struct {
	Title              string          `json:"title"`
	Company            string          `json:"company"`
	Location           string          `json:"location"`
	Description        string          `json:"description"`
	Requirements       string          `json:"requirements"`
	Status             graph.JobStatus `json:"status"`
	ExperienceRequired int             `json:"experience_required"`
	SkillIDs           []int64         `json:"skill_ids"`
}

func (p JobCreate) toEntity(recruiterID string) graph.Job {
	return graph.Job{
		RecruiterID:        recruiterID,
		Title:              strings.TrimSpace(p.Title),
		Company:            strings.TrimSpace(p.Company),
		Location:           strings.TrimSpace(p.Location),
		Description:        p.Description,
		Requirements:       p.Requirements,
		Status:             p.Status,
		ExperienceRequired: p.ExperienceRequired,
	}
}

type JobUpdate struct {
	Title              *string          `json:"title"`
	Company            *string          `json:"company"`
	Location           *string          `json:"location"`
	Description        *string          `json:"description"`
	Requirements       *string          `json:"requirements"`
	Status             *graph.JobStatus `json:"status"`
	ExperienceRequired *int             `json:"experience_required"`
	SkillIDs           *[]int64         `json:"skill_ids"`
}

func (u JobUpdate) apply(j *graph.Job) {
	if u.Title != nil {
		j.Title = strings.TrimSpace(*u.Title)
	}
	if u.Company != nil {
		j.Company = strings.TrimSpace(*u.Company)
	}
	if u.Location != nil {
		j.Location = strings.TrimSpace(*u.Location)
	}
	if u.Description != nil {
		j.Description = *u.Description
	}
	if u.Requirements != nil {
		j.Requirements = *u.Requirements
	}
	if u.Status != nil {
		j.Status = *u.Status
	}
	if u.ExperienceRequired != nil {
		j.ExperienceRequired = *u.ExperienceRequired
	}
}

type MatchCreate struct {
	ResumeID int64 `json:"resume"`
	JobID    int64 `json:"job"`
}

// Engine write-back payloads.

type ResumeAnalysis struct {
	RawText       *string  `json:"raw_text"`
	IsParsed      *bool    `json:"is_parsed"`
	OverallRating *float64 `json:"overall_rating"`
}

func (a ResumeAnalysis) apply(r *graph.Resume) {
	if a.RawText != nil {
		r.RawText = *a.RawText
	}
	if a.IsParsed != nil {
		r.IsParsed = *a.IsParsed
	}
	if a.OverallRating != nil {
		r.OverallRating = *a.OverallRating
	}
}

type MatchScores struct {
	MatchScore                *float64 `json:"match_score"`
	SkillMatchPercentage      *float64 `json:"skill_match_percentage"`
	ExperienceMatchPercentage *float64 `json:"experience_match_percentage"`
	Feedback                  *string  `json:"feedback"`
}

func (s MatchScores) apply(m *graph.Match) {
	if s.MatchScore != nil {
		m.MatchScore = *s.MatchScore
	}
	if s.SkillMatchPercentage != nil {
		m.SkillMatchPercentage = *s.SkillMatchPercentage
	}
	if s.ExperienceMatchPercentage != nil {
		m.ExperienceMatchPercentage = *s.ExperienceMatchPercentage
	}
	if s.Feedback != nil {
		m.Feedback = *s.Feedback
	}
}

type FeedbackAdvice struct {
	SkillGaps             *string `json:"skill_gaps"`
	FormattingSuggestions *string `json:"formatting_suggestions"`
	KeywordOptimization   *string `json:"keyword_optimization"`
	OverallSuggestions    *string `json:"overall_suggestions"`
}

func (a FeedbackAdvice) apply(f *graph.Feedback) {
	if a.SkillGaps != nil {
		f.SkillGaps = *a.SkillGaps
	}
	if a.FormattingSuggestions != nil {
		f.FormattingSuggestions = *a.FormattingSuggestions
	}
	if a.KeywordOptimization != nil {
		f.KeywordOptimization = *a.KeywordOptimization
	}
	if a.OverallSuggestions != nil {
		f.OverallSuggestions = *a.OverallSuggestions
	}
}
