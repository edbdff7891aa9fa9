package transfer

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
)

const maxListLimit = 200

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public entity routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/skills", h.listSkills)
	rg.POST("/skills", h.createSkill)
	rg.GET("/skills/:id", h.getSkill)
	rg.PATCH("/skills/:id", h.updateSkill)
	rg.DELETE("/skills/:id", h.deleteSkill)

	h.registerResumeRoutes(rg)
	h.registerJobRoutes(rg)
	h.registerMatchRoutes(rg)
}

// writeError maps service errors onto the error envelope.
func writeError(c *gin.Context, err error) {
	var verr *graph.ValidationError
	var cerr *graph.ConflictError
	switch {
	case errors.As(err, &verr):
		respond.Invalid(c, "invalid input", verr.Fields)
	case errors.As(err, &cerr):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, cerr.Error(), cerr.Fields)
	case errors.Is(err, graph.ErrNotFound):
		respond.NotFound(c, err.Error())
	case errors.Is(err, context.Canceled):
		respond.Error(c, respond.StatusClientClosedRequest, respond.CodeCanceled, "request canceled", nil)
	default:
		respond.Internal(c)
	}
}

func requestContext(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}

// pathID parses the :id path parameter. Malformed ids cannot name an
// entity, so they answer 404.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.NotFound(c, "not found")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Invalid(c, "invalid request body", gin.H{"body": err.Error()})
		return false
	}
	return true
}

// queryParams collects per-field parse failures so one response can
// report all of them.
type queryParams struct {
	c    *gin.Context
	errs map[string]string
}

func newQueryParams(c *gin.Context) *queryParams {
	return &queryParams{c: c, errs: map[string]string{}}
}

func (q *queryParams) str(key string) string {
	return strings.TrimSpace(q.c.Query(key))
}

func (q *queryParams) boolPtr(key string) *bool {
	raw := q.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs[key] = "must be a boolean"
		return nil
	}
	return &v
}

func (q *queryParams) id(key string) int64 {
	raw := q.str(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		q.errs[key] = "must be a positive integer"
		return 0
	}
	return v
}

func (q *queryParams) nonNegative(key string) int {
	raw := q.str(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		q.errs[key] = "must be a non-negative integer"
		return 0
	}
	return v
}

func (q *queryParams) page() graph.Page {
	return graph.Page{
		Limit:  min(q.nonNegative("limit"), maxListLimit),
		Offset: q.nonNegative("offset"),
	}
}

func (q *queryParams) ordering(allowed []string) graph.Ordering {
	ord, err := graph.ParseOrdering(q.str("ordering"), allowed)
	if err != nil {
		var verr *graph.ValidationError
		if errors.As(err, &verr) {
			for k, v := range verr.Fields {
				q.errs[k] = v
			}
		} else {
			q.errs["ordering"] = err.Error()
		}
		return nil
	}
	return ord
}

// ok writes the 400 response and reports false when any parameter failed.
func (q *queryParams) ok() bool {
	if len(q.errs) == 0 {
		return true
	}
	writeError(q.c, &graph.ValidationError{Fields: q.errs})
	return false
}

// --- skills ---

func (h *Handler) createSkill(c *gin.Context) {
	var in SkillPayload
	if !bindJSON(c, &in) {
		return
	}
	skill, err := h.Svc.CreateSkill(requestContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, skill)
}

func (h *Handler) updateSkill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in SkillUpdate
	if !bindJSON(c, &in) {
		return
	}
	skill, err := h.Svc.UpdateSkill(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, skill)
}

func (h *Handler) getSkill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	skill, err := h.Svc.GetSkill(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, skill)
}

func (h *Handler) listSkills(c *gin.Context) {
	q := newQueryParams(c)
	f := graph.SkillFilter{
		IsTechnical: q.boolPtr("is_technical"),
		Category:    q.str("category"),
		Search:      q.str("search"),
		Ordering:    q.ordering(graph.SkillOrderFields),
		Page:        q.page(),
	}
	if !q.ok() {
		return
	}
	skills, err := h.Svc.ListSkills(requestContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, skills, f.Limit, f.Offset)
}

func (h *Handler) deleteSkill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteSkill(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}
