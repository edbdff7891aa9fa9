package graph

import "context"

// Store runs units of work against the entity graph.
type Store interface {
	// Do runs fn inside a single transaction. Every write made through tx
	// commits together when fn returns nil and is discarded otherwise.
	Do(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Skills() SkillRepo
	Resumes() ResumeRepo
	Educations() EducationRepo
	Experiences() ExperienceRepo
	Jobs() JobRepo
	Matches() MatchRepo
	Feedback() FeedbackRepo

	ResumeSkills() AssociationRepo
	ExperienceSkills() AssociationRepo
	JobSkills() AssociationRepo
}

// AssociationRepo is a many-to-many link between an owner and skills.
// Removing links never deletes the skills themselves.
type AssociationRepo interface {
	// Set replaces every link of owner with skillIDs.
	Set(ctx context.Context, ownerID int64, skillIDs []int64) error
	// Skills returns the linked skills ordered by id.
	Skills(ctx context.Context, ownerID int64) ([]Skill, error)
}

// Page limits a list query. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

type SkillFilter struct {
	IsTechnical *bool
	Category    string
	Search      string
	Ordering    Ordering
	Page
}

type SkillRepo interface {
	Create(ctx context.Context, s *Skill) error
	Get(ctx context.Context, id int64) (Skill, error)
	GetByName(ctx context.Context, name string) (Skill, error)
	Update(ctx context.Context, s *Skill) error
	Delete(ctx context.Context, id int64) error
	// Resolve returns the skills among ids that exist, ordered by id.
	// Unknown ids are dropped rather than reported.
	Resolve(ctx context.Context, ids []int64) ([]Skill, error)
	List(ctx context.Context, f SkillFilter) ([]Skill, error)
}

type ResumeFilter struct {
	UserID      string
	IsParsed    *bool
	ContentType string
	Search      string
	Ordering    Ordering
	Page
}

type ResumeRepo interface {
	Create(ctx context.Context, r *Resume) error
	Get(ctx context.Context, id int64) (Resume, error)
	Update(ctx context.Context, r *Resume) error
	// Delete removes the resume with its education, experience, matches
	// and feedback.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ResumeFilter) ([]Resume, error)
}

type EducationRepo interface {
	Create(ctx context.Context, e *Education) error
	Get(ctx context.Context, id int64) (Education, error)
	Update(ctx context.Context, e *Education) error
	Delete(ctx context.Context, id int64) error
	ListByResume(ctx context.Context, resumeID int64, ord Ordering) ([]Education, error)
}

type ExperienceRepo interface {
	Create(ctx context.Context, e *Experience) error
	Get(ctx context.Context, id int64) (Experience, error)
	Update(ctx context.Context, e *Experience) error
	Delete(ctx context.Context, id int64) error
	ListByResume(ctx context.Context, resumeID int64, ord Ordering) ([]Experience, error)
}

type JobFilter struct {
	RecruiterID string
	Status      JobStatus
	Search      string
	Ordering    Ordering
	Page
}

type JobRepo interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id int64) (Job, error)
	Update(ctx context.Context, j *Job) error
	// Delete removes the job with its matches.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f JobFilter) ([]Job, error)
}

type MatchFilter struct {
	ResumeID int64
	JobID    int64
	Search   string
	Ordering Ordering
	Page
}

type MatchRepo interface {
	// Create fails with a *ConflictError when the pair is already matched.
	Create(ctx context.Context, m *Match) error
	Get(ctx context.Context, id int64) (Match, error)
	GetByPair(ctx context.Context, resumeID, jobID int64) (Match, error)
	Update(ctx context.Context, m *Match) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f MatchFilter) ([]Match, error)
}

type FeedbackFilter struct {
	ResumeID int64
	Search   string
	Ordering Ordering
	Page
}

type FeedbackRepo interface {
	Create(ctx context.Context, f *Feedback) error
	Get(ctx context.Context, id int64) (Feedback, error)
	Update(ctx context.Context, f *Feedback) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f FeedbackFilter) ([]Feedback, error)
}
