package graph

import (
	"fmt"
	"strings"
)

// OrderField is one sort key; Desc reverses it.
type OrderField struct {
	Name string
	Desc bool
}

// Ordering is an ordered list of sort keys. Nullable dates sort as later
// than any real date, so a descending end_date puts open-ended (current)
// entries first.
type Ordering []OrderField

// Default orderings per entity.
var (
	DefaultSkillOrdering      = Ordering{{Name: "id"}}
	DefaultResumeOrdering     = Ordering{{Name: "updated_at", Desc: true}}
	DefaultEducationOrdering  = Ordering{{Name: "end_date", Desc: true}, {Name: "start_date", Desc: true}}
	DefaultExperienceOrdering = Ordering{{Name: "end_date", Desc: true}, {Name: "start_date", Desc: true}}
	DefaultJobOrdering        = Ordering{{Name: "created_at", Desc: true}}
	DefaultMatchOrdering      = Ordering{{Name: "match_score", Desc: true}}
	DefaultFeedbackOrdering   = Ordering{{Name: "updated_at", Desc: true}}
)

// Sortable fields per entity, as accepted by ParseOrdering.
var (
	SkillOrderFields      = []string{"id", "name", "category"}
	ResumeOrderFields     = []string{"id", "title", "overall_rating", "created_at", "updated_at"}
	EducationOrderFields  = []string{"id", "institution", "start_date", "end_date"}
	ExperienceOrderFields = []string{"id", "company", "start_date", "end_date"}
	JobOrderFields        = []string{"id", "title", "company", "experience_required", "created_at", "updated_at"}
	MatchOrderFields      = []string{"id", "match_score", "skill_match_percentage", "experience_match_percentage", "created_at"}
	FeedbackOrderFields   = []string{"id", "created_at", "updated_at"}
)

// ParseOrdering parses "-end_date,start_date" style input. An empty string
// yields a nil Ordering, which callers replace with the entity default.
func ParseOrdering(raw string, allowed []string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	permitted := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		permitted[a] = struct{}{}
	}

	var out Ordering
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field := OrderField{Name: strings.TrimPrefix(part, "-"), Desc: strings.HasPrefix(part, "-")}
		if _, ok := permitted[field.Name]; !ok {
			return nil, NewValidationError("ordering", fmt.Sprintf("cannot order by %q", field.Name))
		}
		out = append(out, field)
	}
	return out, nil
}

// Or returns o, or def when o is empty.
func (o Ordering) Or(def Ordering) Ordering {
	if len(o) == 0 {
		return def
	}
	return o
}

// withIDTiebreak appends ascending id unless the ordering already uses it.
func (o Ordering) withIDTiebreak() Ordering {
	for _, f := range o {
		if f.Name == "id" {
			return o
		}
	}
	out := make(Ordering, 0, len(o)+1)
	out = append(out, o...)
	return append(out, OrderField{Name: "id"})
}

func (o Ordering) String() string {
	parts := make([]string, 0, len(o))
	for _, f := range o {
		if f.Desc {
			parts = append(parts, "-"+f.Name)
		} else {
			parts = append(parts, f.Name)
		}
	}
	return strings.Join(parts, ",")
}
