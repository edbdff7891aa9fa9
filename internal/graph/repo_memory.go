package graph

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. Each unit of work runs against a copy
// of the graph that replaces the live state only when the work succeeds.
// Units of work are serialized.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState(), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the timestamp source, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Do runs fn against a private copy of the graph and publishes it on success.
func (s *MemoryStore) Do(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memTx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type memState struct {
	seq map[string]int64

	skills      map[int64]Skill
	resumes     map[int64]Resume
	educations  map[int64]Education
	experiences map[int64]Experience
	jobs        map[int64]Job
	matches     map[int64]Match
	feedback    map[int64]Feedback

	resumeSkills     map[int64][]int64
	experienceSkills map[int64][]int64
	jobSkills        map[int64][]int64
}

func newMemState() *memState {
	return &memState{
		seq:              map[string]int64{},
		skills:           map[int64]Skill{},
		resumes:          map[int64]Resume{},
		educations:       map[int64]Education{},
		experiences:      map[int64]Experience{},
		jobs:             map[int64]Job{},
		matches:          map[int64]Match{},
		feedback:         map[int64]Feedback{},
		resumeSkills:     map[int64][]int64{},
		experienceSkills: map[int64][]int64{},
		jobSkills:        map[int64][]int64{},
	}
}

func (m *memState) clone() *memState {
	cloneLinks := func(src map[int64][]int64) map[int64][]int64 {
		out := make(map[int64][]int64, len(src))
		for k, v := range src {
			out[k] = slices.Clone(v)
		}
		return out
	}
	return &memState{
		seq:              maps.Clone(m.seq),
		skills:           maps.Clone(m.skills),
		resumes:          maps.Clone(m.resumes),
		educations:       maps.Clone(m.educations),
		experiences:      maps.Clone(m.experiences),
		jobs:             maps.Clone(m.jobs),
		matches:          maps.Clone(m.matches),
		feedback:         maps.Clone(m.feedback),
		resumeSkills:     cloneLinks(m.resumeSkills),
		experienceSkills: cloneLinks(m.experienceSkills),
		jobSkills:        cloneLinks(m.jobSkills),
	}
}

func (m *memState) next(table string) int64 {
	m.seq[table]++
	return m.seq[table]
}

type memTx struct {
	st  *memState
	now func() time.Time
}

func (t *memTx) Skills() SkillRepo             { return memSkills{t} }
func (t *memTx) Resumes() ResumeRepo           { return memResumes{t} }
func (t *memTx) Educations() EducationRepo     { return memEducations{t} }
func (t *memTx) Experiences() ExperienceRepo   { return memExperiences{t} }
func (t *memTx) Jobs() JobRepo                 { return memJobs{t} }
func (t *memTx) Matches() MatchRepo            { return memMatches{t} }
func (t *memTx) Feedback() FeedbackRepo        { return memFeedback{t} }
func (t *memTx) ResumeSkills() AssociationRepo { return memLinks{t, t.st.resumeSkills, ownerResume} }
func (t *memTx) ExperienceSkills() AssociationRepo {
	return memLinks{t, t.st.experienceSkills, ownerExperience}
}
func (t *memTx) JobSkills() AssociationRepo { return memLinks{t, t.st.jobSkills, ownerJob} }

// sortBy orders items by ord using the per-field comparators, then applies page.
func sortBy[T any](items []T, ord Ordering, fields map[string]func(a, b T) int, page Page) []T {
	ord = ord.withIDTiebreak()
	slices.SortStableFunc(items, func(a, b T) int {
		for _, f := range ord {
			c := fields[f.Name](a, b)
			if f.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return paginate(items, page)
}

func paginate[T any](items []T, page Page) []T {
	if page.Offset > 0 {
		if page.Offset >= len(items) {
			return []T{}
		}
		items = items[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

// cmpOptionalDate treats a nil date as later than every real date.
func cmpOptionalDate(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContainsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if containsFold(h, needle) {
			return true
		}
	}
	return false
}

// --- skills ---

type memSkills struct{ t *memTx }

var skillFields = map[string]func(a, b Skill) int{
	"id":       func(a, b Skill) int { return cmp.Compare(a.ID, b.ID) },
	"name":     func(a, b Skill) int { return strings.Compare(a.Name, b.Name) },
	"category": func(a, b Skill) int { return strings.Compare(a.Category, b.Category) },
}

func (r memSkills) nameTaken(name string, except int64) bool {
	for _, s := range r.t.st.skills {
		if s.ID != except && s.Name == name {
			return true
		}
	}
	return false
}

func (r memSkills) Create(ctx context.Context, s *Skill) error {
	if err := Validate(s); err != nil {
		return err
	}
	if r.nameTaken(s.Name, 0) {
		return duplicateSkillName()
	}
	s.ID = r.t.st.next("skills")
	r.t.st.skills[s.ID] = *s
	return nil
}

func (r memSkills) Get(ctx context.Context, id int64) (Skill, error) {
	s, ok := r.t.st.skills[id]
	if !ok {
		return Skill{}, notFound("skill", id)
	}
	return s, nil
}

func (r memSkills) GetByName(ctx context.Context, name string) (Skill, error) {
	for _, s := range r.t.st.skills {
		if s.Name == name {
			return s, nil
		}
	}
	return Skill{}, ErrNotFound
}

func (r memSkills) Update(ctx context.Context, s *Skill) error {
	if _, ok := r.t.st.skills[s.ID]; !ok {
		return notFound("skill", s.ID)
	}
	if err := Validate(s); err != nil {
		return err
	}
	if r.nameTaken(s.Name, s.ID) {
		return duplicateSkillName()
	}
	r.t.st.skills[s.ID] = *s
	return nil
}

func (r memSkills) Delete(ctx context.Context, id int64) error {
	if _, ok := r.t.st.skills[id]; !ok {
		return notFound("skill", id)
	}
	delete(r.t.st.skills, id)
	for _, links := range []map[int64][]int64{r.t.st.resumeSkills, r.t.st.experienceSkills, r.t.st.jobSkills} {
		for owner, ids := range links {
			links[owner] = slices.DeleteFunc(ids, func(v int64) bool { return v == id })
		}
	}
	return nil
}

func (r memSkills) Resolve(ctx context.Context, ids []int64) ([]Skill, error) {
	out := []Skill{}
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s, ok := r.t.st.skills[id]; ok {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, skillFields["id"])
	return out, nil
}

func (r memSkills) List(ctx context.Context, f SkillFilter) ([]Skill, error) {
	out := []Skill{}
	for _, s := range r.t.st.skills {
		if f.IsTechnical != nil && s.IsTechnical != *f.IsTechnical {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		if f.Search != "" && !anyContainsFold(f.Search, s.Name, s.Category) {
			continue
		}
		out = append(out, s)
	}
	return sortBy(out, f.Ordering.Or(DefaultSkillOrdering), skillFields, f.Page), nil
}

// --- skill links ---

type ownerKind int

const (
	ownerResume ownerKind = iota
	ownerExperience
	ownerJob
)

type memLinks struct {
	t     *memTx
	links map[int64][]int64
	kind  ownerKind
}

func (l memLinks) ownerExists(id int64) error {
	var ok bool
	switch l.kind {
	case ownerResume:
		_, ok = l.t.st.resumes[id]
		if !ok {
			return notFound("resume", id)
		}
	case ownerExperience:
		_, ok = l.t.st.experiences[id]
		if !ok {
			return notFound("experience", id)
		}
	case ownerJob:
		_, ok = l.t.st.jobs[id]
		if !ok {
			return notFound("job", id)
		}
	}
	return nil
}

func (l memLinks) Set(ctx context.Context, ownerID int64, skillIDs []int64) error {
	if err := l.ownerExists(ownerID); err != nil {
		return err
	}
	ids := slices.Clone(skillIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		if _, ok := l.t.st.skills[id]; !ok {
			return notFound("skill", id)
		}
	}
	if len(ids) == 0 {
		delete(l.links, ownerID)
		return nil
	}
	l.links[ownerID] = ids
	return nil
}

func (l memLinks) Skills(ctx context.Context, ownerID int64) ([]Skill, error) {
	out := make([]Skill, 0, len(l.links[ownerID]))
	for _, id := range l.links[ownerID] {
		if s, ok := l.t.st.skills[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- resumes ---

type memResumes struct{ t *memTx }

var resumeFields = map[string]func(a, b Resume) int{
	"id":             func(a, b Resume) int { return cmp.Compare(a.ID, b.ID) },
	"title":          func(a, b Resume) int { return strings.Compare(a.Title, b.Title) },
	"overall_rating": func(a, b Resume) int { return cmp.Compare(a.OverallRating, b.OverallRating) },
	"created_at":     func(a, b Resume) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at":     func(a, b Resume) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

func (r memResumes) Create(ctx context.Context, res *Resume) error {
	if err := Validate(res); err != nil {
		return err
	}
	now := r.t.now()
	res.ID = r.t.st.next("resumes")
	res.CreatedAt, res.UpdatedAt = now, now
	r.t.st.resumes[res.ID] = *res
	return nil
}

func (r memResumes) Get(ctx context.Context, id int64) (Resume, error) {
	res, ok := r.t.st.resumes[id]
	if !ok {
		return Resume{}, notFound("resume", id)
	}
	return res, nil
}

func (r memResumes) Update(ctx context.Context, res *Resume) error {
	existing, ok := r.t.st.resumes[res.ID]
	if !ok {
		return notFound("resume", res.ID)
	}
	if err := Validate(res); err != nil {
		return err
	}
	res.CreatedAt = existing.CreatedAt
	res.UpdatedAt = r.t.now()
	r.t.st.resumes[res.ID] = *res
	return nil
}

func (r memResumes) Delete(ctx context.Context, id int64) error {
	st := r.t.st
	if _, ok := st.resumes[id]; !ok {
		return notFound("resume", id)
	}
	delete(st.resumes, id)
	delete(st.resumeSkills, id)
	for eid, e := range st.educations {
		if e.ResumeID == id {
			delete(st.educations, eid)
		}
	}
	for xid, x := range st.experiences {
		if x.ResumeID == id {
			delete(st.experiences, xid)
			delete(st.experienceSkills, xid)
		}
	}
	for mid, m := range st.matches {
		if m.ResumeID == id {
			delete(st.matches, mid)
		}
	}
	for fid, f := range st.feedback {
		if f.ResumeID == id {
			delete(st.feedback, fid)
		}
	}
	return nil
}

func (r memResumes) List(ctx context.Context, f ResumeFilter) ([]Resume, error) {
	out := []Resume{}
	for _, res := range r.t.st.resumes {
		if f.UserID != "" && res.UserID != f.UserID {
			continue
		}
		if f.IsParsed != nil && res.IsParsed != *f.IsParsed {
			continue
		}
		if f.ContentType != "" && res.ContentType != f.ContentType {
			continue
		}
		if f.Search != "" && !anyContainsFold(f.Search, res.Title, res.RawText) {
			continue
		}
		out = append(out, res)
	}
	return sortBy(out, f.Ordering.Or(DefaultResumeOrdering), resumeFields, f.Page), nil
}

// --- education ---

type memEducations struct{ t *memTx }

var educationFields = map[string]func(a, b Education) int{
	"id":          func(a, b Education) int { return cmp.Compare(a.ID, b.ID) },
	"institution": func(a, b Education) int { return strings.Compare(a.Institution, b.Institution) },
	"start_date":  func(a, b Education) int { return a.StartDate.Compare(b.StartDate) },
	"end_date":    func(a, b Education) int { return cmpOptionalDate(a.EndDate, b.EndDate) },
}

func (r memEducations) Create(ctx context.Context, e *Education) error {
	if err := Validate(e); err != nil {
		return err
	}
	if _, ok := r.t.st.resumes[e.ResumeID]; !ok {
		return notFound("resume", e.ResumeID)
	}
	e.ID = r.t.st.next("educations")
	r.t.st.educations[e.ID] = *e
	return nil
}

func (r memEducations) Get(ctx context.Context, id int64) (Education, error) {
	e, ok := r.t.st.educations[id]
	if !ok {
		return Education{}, notFound("education", id)
	}
	return e, nil
}

func (r memEducations) Update(ctx context.Context, e *Education) error {
	existing, ok := r.t.st.educations[e.ID]
	if !ok {
		return notFound("education", e.ID)
	}
	if err := Validate(e); err != nil {
		return err
	}
	e.ResumeID = existing.ResumeID
	r.t.st.educations[e.ID] = *e
	return nil
}

func (r memEducations) Delete(ctx context.Context, id int64) error {
	if _, ok := r.t.st.educations[id]; !ok {
		return notFound("education", id)
	}
	delete(r.t.st.educations, id)
	return nil
}

func (r memEducations) ListByResume(ctx context.Context, resumeID int64, ord Ordering) ([]Education, error) {
	out := []Education{}
	for _, e := range r.t.st.educations {
		if e.ResumeID == resumeID {
			out = append(out, e)
		}
	}
	return sortBy(out, ord.Or(DefaultEducationOrdering), educationFields, Page{}), nil
}

// --- experience ---

type memExperiences struct{ t *memTx }

var experienceFields = map[string]func(a, b Experience) int{
	"id":         func(a, b Experience) int { return cmp.Compare(a.ID, b.ID) },
	"company":    func(a, b Experience) int { return strings.Compare(a.Company, b.Company) },
	"start_date": func(a, b Experience) int { return a.StartDate.Compare(b.StartDate) },
	"end_date":   func(a, b Experience) int { return cmpOptionalDate(a.EndDate, b.EndDate) },
}

func (r memExperiences) Create(ctx context.Context, e *Experience) error {
	if err := Validate(e); err != nil {
		return err
	}
	if _, ok := r.t.st.resumes[e.ResumeID]; !ok {
		return notFound("resume", e.ResumeID)
	}
	e.ID = r.t.st.next("experiences")
	r.t.st.experiences[e.ID] = *e
	return nil
}

func (r memExperiences) Get(ctx context.Context, id int64) (Experience, error) {
	e, ok := r.t.st.experiences[id]
	if !ok {
		return Experience{}, notFound("experience", id)
	}
	return e, nil
}

func (r memExperiences) Update(ctx context.Context, e *Experience) error {
	existing, ok := r.t.st.experiences[e.ID]
	if !ok {
		return notFound("experience", e.ID)
	}
	if err := Validate(e); err != nil {
		return err
	}
	e.ResumeID = existing.ResumeID
	r.t.st.experiences[e.ID] = *e
	return nil
}

func (r memExperiences) Delete(ctx context.Context, id int64) error {
	if _, ok := r.t.st.experiences[id]; !ok {
		return notFound("experience", id)
	}
	delete(r.t.st.experiences, id)
	delete(r.t.st.experienceSkills, id)
	return nil
}

func (r memExperiences) ListByResume(ctx context.Context, resumeID int64, ord Ordering) ([]Experience, error) {
	out := []Experience{}
	for _, e := range r.t.st.experiences {
		if e.ResumeID == resumeID {
			out = append(out, e)
		}
	}
	return sortBy(out, ord.Or(DefaultExperienceOrdering), experienceFields, Page{}), nil
}

// --- jobs ---

type memJobs struct{ t *memTx }

var jobFields = map[string]func(a, b Job) int{
	"id":                  func(a, b Job) int { return cmp.Compare(a.ID, b.ID) },
	"title":               func(a, b Job) int { return strings.Compare(a.Title, b.Title) },
	"company":             func(a, b Job) int { return strings.Compare(a.Company, b.Company) },
	"experience_required": func(a, b Job) int { return cmp.Compare(a.ExperienceRequired, b.ExperienceRequired) },
	"created_at":          func(a, b Job) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at":          func(a, b Job) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

func (r memJobs) Create(ctx context.Context, j *Job) error {
	if j.Status == "" {
		j.Status = JobStatusDraft
	}
	if err := Validate(j); err != nil {
		return err
	}
	now := r.t.now()
	j.ID = r.t.st.next("jobs")
	j.CreatedAt, j.UpdatedAt = now, now
	r.t.st.jobs[j.ID] = *j
	return nil
}

func (r memJobs) Get(ctx context.Context, id int64) (Job, error) {
	j, ok := r.t.st.jobs[id]
	if !ok {
		return Job{}, notFound("job", id)
	}
	return j, nil
}

func (r memJobs) Update(ctx context.Context, j *Job) error {
	existing, ok := r.t.st.jobs[j.ID]
	if !ok {
		return notFound("job", j.ID)
	}
	if err := Validate(j); err != nil {
		return err
	}
	j.CreatedAt = existing.CreatedAt
	j.UpdatedAt = r.t.now()
	r.t.st.jobs[j.ID] = *j
	return nil
}

func (r memJobs) Delete(ctx context.Context, id int64) error {
	st := r.t.st
	if _, ok := st.jobs[id]; !ok {
		return notFound("job", id)
	}
	delete(st.jobs, id)
	delete(st.jobSkills, id)
	for mid, m := range st.matches {
		if m.JobID == id {
			delete(st.matches, mid)
		}
	}
	return nil
}

func (r memJobs) List(ctx context.Context, f JobFilter) ([]Job, error) {
	out := []Job{}
	for _, j := range r.t.st.jobs {
		if f.RecruiterID != "" && j.RecruiterID != f.RecruiterID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Search != "" && !anyContainsFold(f.Search, j.Title, j.Company, j.Description, j.Requirements) {
			continue
		}
		out = append(out, j)
	}
	return sortBy(out, f.Ordering.Or(DefaultJobOrdering), jobFields, f.Page), nil
}

// --- matches ---

type memMatches struct{ t *memTx }

var matchFields = map[string]func(a, b Match) int{
	"id":                          func(a, b Match) int { return cmp.Compare(a.ID, b.ID) },
	"match_score":                 func(a, b Match) int { return cmp.Compare(a.MatchScore, b.MatchScore) },
	"skill_match_percentage":      func(a, b Match) int { return cmp.Compare(a.SkillMatchPercentage, b.SkillMatchPercentage) },
	"experience_match_percentage": func(a, b Match) int { return cmp.Compare(a.ExperienceMatchPercentage, b.ExperienceMatchPercentage) },
	"created_at":                  func(a, b Match) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r memMatches) Create(ctx context.Context, m *Match) error {
	if err := Validate(m); err != nil {
		return err
	}
	if _, ok := r.t.st.resumes[m.ResumeID]; !ok {
		return notFound("resume", m.ResumeID)
	}
	if _, ok := r.t.st.jobs[m.JobID]; !ok {
		return notFound("job", m.JobID)
	}
	if _, err := r.GetByPair(ctx, m.ResumeID, m.JobID); err == nil {
		return duplicateMatch(m.ResumeID, m.JobID)
	}
	m.ID = r.t.st.next("matches")
	m.CreatedAt = r.t.now()
	r.t.st.matches[m.ID] = *m
	return nil
}

func (r memMatches) Get(ctx context.Context, id int64) (Match, error) {
	m, ok := r.t.st.matches[id]
	if !ok {
		return Match{}, notFound("match", id)
	}
	return m, nil
}

func (r memMatches) GetByPair(ctx context.Context, resumeID, jobID int64) (Match, error) {
	for _, m := range r.t.st.matches {
		if m.ResumeID == resumeID && m.JobID == jobID {
			return m, nil
		}
	}
	return Match{}, ErrNotFound
}

func (r memMatches) Update(ctx context.Context, m *Match) error {
	existing, ok := r.t.st.matches[m.ID]
	if !ok {
		return notFound("match", m.ID)
	}
	if err := Validate(m); err != nil {
		return err
	}
	m.ResumeID, m.JobID, m.CreatedAt = existing.ResumeID, existing.JobID, existing.CreatedAt
	r.t.st.matches[m.ID] = *m
	return nil
}

func (r memMatches) Delete(ctx context.Context, id int64) error {
	if _, ok := r.t.st.matches[id]; !ok {
		return notFound("match", id)
	}
	delete(r.t.st.matches, id)
	return nil
}

func (r memMatches) List(ctx context.Context, f MatchFilter) ([]Match, error) {
	out := []Match{}
	for _, m := range r.t.st.matches {
		if f.ResumeID != 0 && m.ResumeID != f.ResumeID {
			continue
		}
		if f.JobID != 0 && m.JobID != f.JobID {
			continue
		}
		if f.Search != "" {
			res := r.t.st.resumes[m.ResumeID]
			job := r.t.st.jobs[m.JobID]
			if !anyContainsFold(f.Search, res.Title, job.Title, m.Feedback) {
				continue
			}
		}
		out = append(out, m)
	}
	return sortBy(out, f.Ordering.Or(DefaultMatchOrdering), matchFields, f.Page), nil
}

// --- feedback ---

type memFeedback struct{ t *memTx }

var feedbackFields = map[string]func(a, b Feedback) int{
	"id":         func(a, b Feedback) int { return cmp.Compare(a.ID, b.ID) },
	"created_at": func(a, b Feedback) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at": func(a, b Feedback) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

func (r memFeedback) Create(ctx context.Context, f *Feedback) error {
	if err := Validate(f); err != nil {
		return err
	}
	if _, ok := r.t.st.resumes[f.ResumeID]; !ok {
		return notFound("resume", f.ResumeID)
	}
	now := r.t.now()
	f.ID = r.t.st.next("feedback")
	f.CreatedAt, f.UpdatedAt = now, now
	r.t.st.feedback[f.ID] = *f
	return nil
}

func (r memFeedback) Get(ctx context.Context, id int64) (Feedback, error) {
	f, ok := r.t.st.feedback[id]
	if !ok {
		return Feedback{}, notFound("feedback", id)
	}
	return f, nil
}

func (r memFeedback) Update(ctx context.Context, f *Feedback) error {
	existing, ok := r.t.st.feedback[f.ID]
	if !ok {
		return notFound("feedback", f.ID)
	}
	if err := Validate(f); err != nil {
		return err
	}
	f.ResumeID, f.CreatedAt = existing.ResumeID, existing.CreatedAt
	f.UpdatedAt = r.t.now()
	r.t.st.feedback[f.ID] = *f
	return nil
}

func (r memFeedback) Delete(ctx context.Context, id int64) error {
	if _, ok := r.t.st.feedback[id]; !ok {
		return notFound("feedback", id)
	}
	delete(r.t.st.feedback, id)
	return nil
}

func (r memFeedback) List(ctx context.Context, f FeedbackFilter) ([]Feedback, error) {
	out := []Feedback{}
	for _, fb := range r.t.st.feedback {
		if f.ResumeID != 0 && fb.ResumeID != f.ResumeID {
			continue
		}
		if f.Search != "" {
			res := r.t.st.resumes[fb.ResumeID]
			if !anyContainsFold(f.Search, res.Title, fb.SkillGaps, fb.FormattingSuggestions, fb.KeywordOptimization, fb.OverallSuggestions) {
				continue
			}
		}
		out = append(out, fb)
	}
	return sortBy(out, f.Ordering.Or(DefaultFeedbackOrdering), feedbackFields, f.Page), nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*memTx)(nil)
)
