package transfer

import (
	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
)

func (h *Handler) registerJobRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.listJobs)
	rg.POST("/jobs", h.createJob)
	rg.GET("/jobs/:id", h.getJob)
	rg.PATCH("/jobs/:id", h.updateJob)
	rg.PUT("/jobs/:id", h.updateJob)
	rg.DELETE("/jobs/:id", h.deleteJob)
}

func (h *Handler) registerMatchRoutes(rg *gin.RouterGroup) {
	rg.GET("/matches", h.listMatches)
	rg.POST("/matches", h.createMatch)
	rg.GET("/matches/:id", h.getMatch)
	rg.DELETE("/matches/:id", h.deleteMatch)

	rg.POST("/resumes/:id/match_jobs", h.matchJobs)
	rg.GET("/resumes/:id/job_matches", h.resumeMatches)
	rg.POST("/jobs/:id/match_resumes", h.matchResumes)
	rg.GET("/jobs/:id/resume_matches", h.jobMatches)

	rg.POST("/resumes/:id/generate_feedback", h.generateFeedback)
	rg.GET("/feedback", h.listFeedback)
	rg.GET("/feedback/:id", h.getFeedback)
	rg.DELETE("/feedback/:id", h.deleteFeedback)
}

func jobID(c *gin.Context) (int64, bool) {
	id, ok := pathID(c)
	if ok {
		c.Set(middleware.JobIDKey, id)
	}
	return id, ok
}

func (h *Handler) createJob(c *gin.Context) {
	var in JobCreate
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.CreateJob(requestContext(c), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.JobIDKey, view.ID)
	respond.Created(c, view)
}

func (h *Handler) updateJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var in JobUpdate
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.UpdateJob(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetJob(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) listJobs(c *gin.Context) {
	q := newQueryParams(c)
	f := graph.JobFilter{
		RecruiterID: q.str("recruiter"),
		Status:      graph.JobStatus(q.str("status")),
		Search:      q.str("search"),
		Ordering:    q.ordering(graph.JobOrderFields),
		Page:        q.page(),
	}
	if !q.ok() {
		return
	}
	views, err := h.Svc.ListJobs(requestContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, f.Limit, f.Offset)
}

func (h *Handler) deleteJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteJob(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

// --- matches ---

func (h *Handler) createMatch(c *gin.Context) {
	var in MatchCreate
	if !bindJSON(c, &in) {
		return
	}
	c.Set(middleware.ResumeIDKey, in.ResumeID)
	c.Set(middleware.JobIDKey, in.JobID)
	view, err := h.Svc.CreateMatch(requestContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, view)
}

func (h *Handler) getMatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetMatch(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) deleteMatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteMatch(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) listMatches(c *gin.Context) {
	q := newQueryParams(c)
	f := graph.MatchFilter{
		ResumeID: q.id("resume"),
		JobID:    q.id("job"),
		Search:   q.str("search"),
		Ordering: q.ordering(graph.MatchOrderFields),
		Page:     q.page(),
	}
	if !q.ok() {
		return
	}
	h.writeMatches(c, f)
}

func (h *Handler) resumeMatches(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	q := newQueryParams(c)
	f := graph.MatchFilter{
		ResumeID: id,
		Ordering: q.ordering(graph.MatchOrderFields),
		Page:     q.page(),
	}
	if !q.ok() {
		return
	}
	h.writeMatches(c, f)
}

func (h *Handler) jobMatches(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	q := newQueryParams(c)
	f := graph.MatchFilter{
		JobID:    id,
		Ordering: q.ordering(graph.MatchOrderFields),
		Page:     q.page(),
	}
	if !q.ok() {
		return
	}
	h.writeMatches(c, f)
}

func (h *Handler) writeMatches(c *gin.Context, f graph.MatchFilter) {
	views, err := h.Svc.ListMatches(requestContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, f.Limit, f.Offset)
}

type matchJobsRequest struct {
	JobIDs []int64 `json:"job_ids"`
}

func (h *Handler) matchJobs(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var req matchJobsRequest
	if !bindJSON(c, &req) {
		return
	}
	views, err := h.Svc.MatchJobs(requestContext(c), id, req.JobIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, 0, 0)
}

type matchResumesRequest struct {
	ResumeIDs []int64 `json:"resume_ids"`
}

func (h *Handler) matchResumes(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var req matchResumesRequest
	if !bindJSON(c, &req) {
		return
	}
	views, err := h.Svc.MatchResumes(requestContext(c), id, req.ResumeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, 0, 0)
}

// --- feedback ---

func (h *Handler) generateFeedback(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GenerateFeedback(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, view)
}

func (h *Handler) getFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetFeedback(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) listFeedback(c *gin.Context) {
	q := newQueryParams(c)
	f := graph.FeedbackFilter{
		ResumeID: q.id("resume"),
		Search:   q.str("search"),
		Ordering: q.ordering(graph.FeedbackOrderFields),
		Page:     q.page(),
	}
	if !q.ok() {
		return
	}
	views, err := h.Svc.ListFeedback(requestContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, f.Limit, f.Offset)
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteFeedback(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}
