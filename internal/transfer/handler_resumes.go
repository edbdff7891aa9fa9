package transfer

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

func (h *Handler) registerResumeRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.listResumes)
	rg.POST("/resumes", h.createResume)
	rg.GET("/resumes/:id", h.getResume)
	rg.PATCH("/resumes/:id", h.updateResume)
	rg.DELETE("/resumes/:id", h.deleteResume)
	rg.GET("/resumes/:id/file", h.downloadResumeFile)
	rg.POST("/resumes/:id/parse", h.parseResume)

	rg.GET("/resumes/:id/education", h.listEducation)
	rg.POST("/resumes/:id/education", h.createEducation)
	rg.GET("/education/:id", h.getEducation)
	rg.PATCH("/education/:id", h.updateEducation)
	rg.DELETE("/education/:id", h.deleteEducation)

	rg.GET("/resumes/:id/experience", h.listExperience)
	rg.POST("/resumes/:id/experience", h.createExperience)
	rg.GET("/experience/:id", h.getExperience)
	rg.PATCH("/experience/:id", h.updateExperience)
	rg.DELETE("/experience/:id", h.deleteExperience)
}

// resumeID parses :id as a resume id and tags the request log with it.
func resumeID(c *gin.Context) (int64, bool) {
	id, ok := pathID(c)
	if ok {
		c.Set(middleware.ResumeIDKey, id)
	}
	return id, ok
}

// createResume accepts either a JSON body or a multipart form whose
// "file" part is the resume document. In the form, skill_ids may be a JSON
// array or a comma list, education and experience are JSON arrays.
func (h *Handler) createResume(c *gin.Context) {
	var in ResumeCreate
	if c.ContentType() == "multipart/form-data" {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
		file, err := readResumeForm(c, &in)
		if err != nil {
			var verr *graph.ValidationError
			if errors.As(err, &verr) {
				writeError(c, verr)
			} else {
				respond.Invalid(c, "unable to read upload", gin.H{"file": err.Error()})
			}
			return
		}
		if file != nil {
			defer file.Close()
		}
	} else if !bindJSON(c, &in) {
		return
	}

	view, err := h.Svc.CreateResume(requestContext(c), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, view.ID)
	respond.Created(c, view)
}

func readResumeForm(c *gin.Context, in *ResumeCreate) (multipart.File, error) {
	in.Title = c.PostForm("title")
	fields := map[string]string{}

	if raw := strings.TrimSpace(c.PostForm("skill_ids")); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			fields["skill_ids"] = "must be a list of integer ids"
		}
		in.SkillIDs = ids
	}
	if raw := strings.TrimSpace(c.PostForm("education")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Education); err != nil {
			fields["education"] = err.Error()
		}
	}
	if raw := strings.TrimSpace(c.PostForm("experience")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Experience); err != nil {
			fields["experience"] = err.Error()
		}
	}
	if len(fields) > 0 {
		return nil, &graph.ValidationError{Fields: fields}
	}

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	in.File = &FileUpload{Name: header.Filename, Body: file}
	return file, nil
}

// parseIDList reads "[1,2]" or "1,2".
func parseIDList(raw string) ([]int64, error) {
	if strings.HasPrefix(raw, "[") {
		var ids []int64
		err := json.Unmarshal([]byte(raw), &ids)
		return ids, err
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) updateResume(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var in ResumeUpdate
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.UpdateResume(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) getResume(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetResume(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

// parseResume re-queues a resume for the engine. The engine answers later
// through the write-back path, hence 202.
func (h *Handler) parseResume(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	view, err := h.Svc.ParseResume(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusAccepted, view)
}

func (h *Handler) listResumes(c *gin.Context) {
	q := newQueryParams(c)
	f := graph.ResumeFilter{
		UserID:      q.str("user"),
		IsParsed:    q.boolPtr("is_parsed"),
		ContentType: q.str("content_type"),
		Search:      q.str("search"),
		Ordering:    q.ordering(graph.ResumeOrderFields),
		Page:        q.page(),
	}
	if !q.ok() {
		return
	}
	views, err := h.Svc.ListResumes(requestContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, f.Limit, f.Offset)
}

func (h *Handler) deleteResume(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteResume(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) downloadResumeFile(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	rc, resume, err := h.Svc.OpenResumeFile(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(resume.FileName))
	c.Header("Content-Type", resume.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

// --- education ---

func (h *Handler) createEducation(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var in EducationPayload
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.CreateEducation(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, view)
}

func (h *Handler) updateEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in EducationUpdate
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.UpdateEducation(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) getEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetEducation(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) listEducation(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	q := newQueryParams(c)
	ord := q.ordering(graph.EducationOrderFields)
	if !q.ok() {
		return
	}
	views, err := h.Svc.ListEducation(requestContext(c), id, ord)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, 0, 0)
}

func (h *Handler) deleteEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteEducation(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

// --- experience ---

func (h *Handler) createExperience(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	var in ExperiencePayload
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.CreateExperience(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, view)
}

func (h *Handler) updateExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in ExperienceUpdate
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.Svc.UpdateExperience(requestContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) getExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetExperience(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) listExperience(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	q := newQueryParams(c)
	ord := q.ordering(graph.ExperienceOrderFields)
	if !q.ok() {
		return
	}
	views, err := h.Svc.ListExperience(requestContext(c), id, ord)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, views, 0, 0)
}

func (h *Handler) deleteExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteExperience(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}
