package transfer

import (
	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/server/respond"
)

// RegisterEngineRoutes attaches the write-back routes the parsing and
// scoring engine uses to fill engine-owned fields. The caller guards the
// group.
func (h *Handler) RegisterEngineRoutes(rg *gin.RouterGroup) {
	rg.PUT("/resumes/:id/analysis", h.recordResumeAnalysis)
	rg.PUT("/matches/:id/scores", h.recordMatchScores)
	rg.PUT("/feedback/:id", h.recordFeedback)
}

func (h *Handler) recordResumeAnalysis(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var in ResumeAnalysis
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.RecordResumeAnalysis(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) recordMatchScores(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in MatchScores
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.RecordMatchScores(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) recordFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in FeedbackAdvice
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.RecordFeedback(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}
