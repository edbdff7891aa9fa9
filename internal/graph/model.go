package graph

import "time"

// JobStatus is the publication state of a job posting.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

// Skill is shared by resumes, experiences and jobs; none of them own it.
type Skill struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"max=100"`
	Description string `json:"description"`
	IsTechnical bool   `json:"is_technical"`
}

// Resume is owned by one user. ContentType, IsParsed, RawText and
// OverallRating are written by the parsing engine only.
type Resume struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user" validate:"required"`
	Title         string    `json:"title" validate:"required,max=255"`
	FileName      string    `json:"file_name"`
	FileKey       string    `json:"file"`
	ContentType   string    `json:"content_type" validate:"max=100"`
	IsParsed      bool      `json:"is_parsed"`
	RawText       string    `json:"raw_text"`
	OverallRating float64   `json:"overall_rating" validate:"gte=0,lte=10"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Education belongs to exactly one resume and is deleted with it.
type Education struct {
	ID           int64      `json:"id"`
	ResumeID     int64      `json:"resume" validate:"gt=0"`
	Institution  string     `json:"institution" validate:"required,max=255"`
	Degree       string     `json:"degree" validate:"required,max=255"`
	FieldOfStudy string     `json:"field_of_study" validate:"required,max=255"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	IsCurrent    bool       `json:"is_current"`
	Description  string     `json:"description"`
}

// Experience belongs to exactly one resume and is deleted with it.
type Experience struct {
	ID          int64      `json:"id"`
	ResumeID    int64      `json:"resume" validate:"gt=0"`
	Company     string     `json:"company" validate:"required,max=255"`
	Title       string     `json:"title" validate:"required,max=255"`
	Location    string     `json:"location" validate:"max=255"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `json:"is_current"`
	Description string     `json:"description"`
}

// Job is a posting owned by a recruiter.
type Job struct {
	ID                 int64     `json:"id"`
	RecruiterID        string    `json:"recruiter" validate:"required"`
	Title              string    `json:"title" validate:"required,max=255"`
	Company            string    `json:"company" validate:"required,max=255"`
	Location           string    `json:"location" validate:"required,max=255"`
	Description        string    `json:"description" validate:"required"`
	Requirements       string    `json:"requirements" validate:"required"`
	Status             JobStatus `json:"status" validate:"oneof=active closed draft"`
	ExperienceRequired int       `json:"experience_required" validate:"gte=0,lte=2147483647"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Match links one resume to one job. At most one exists per pair; the
// scores and feedback are computed by the scoring engine.
type Match struct {
	ID                        int64     `json:"id"`
	ResumeID                  int64     `json:"resume" validate:"gt=0"`
	JobID                     int64     `json:"job" validate:"gt=0"`
	MatchScore                float64   `json:"match_score" validate:"gte=0,lte=100"`
	SkillMatchPercentage      float64   `json:"skill_match_percentage" validate:"gte=0,lte=100"`
	ExperienceMatchPercentage float64   `json:"experience_match_percentage" validate:"gte=0,lte=100"`
	Feedback                  string    `json:"feedback"`
	CreatedAt                 time.Time `json:"created_at"`
}

// Feedback holds advisory text for a resume, filled in by the engine.
type Feedback struct {
	ID                    int64     `json:"id"`
	ResumeID              int64     `json:"resume" validate:"gt=0"`
	SkillGaps             string    `json:"skill_gaps"`
	FormattingSuggestions string    `json:"formatting_suggestions"`
	KeywordOptimization   string    `json:"keyword_optimization"`
	OverallSuggestions    string    `json:"overall_suggestions"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
