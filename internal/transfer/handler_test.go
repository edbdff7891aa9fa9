package transfer_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/bootstrap"
	"jobmatch-backend/internal/queue"
	"jobmatch-backend/internal/shared/config"
)

const engineToken = "engine-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestApp(t).Router
}

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
		EngineToken:     engineToken,
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "guest-test-1")
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, resp.Body.String())
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type idOnly struct {
	ID int64 `json:"id"`
}

func createSkill(t *testing.T, router *gin.Engine, name string) int64 {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/skills", map[string]any{"name": name, "category": "Languages"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create skill: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var s idOnly
	decode(t, resp, &s)
	return s.ID
}

func createJob(t *testing.T, router *gin.Engine, title string) int64 {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/jobs", map[string]any{
		"title":        title,
		"company":      "Acme",
		"location":     "Remote",
		"description":  "Build services",
		"requirements": "Go",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create job: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var j idOnly
	decode(t, resp, &j)
	return j.ID
}

func createResumeJSON(t *testing.T, router *gin.Engine, title string) int64 {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{"title": title})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create resume: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var r idOnly
	decode(t, resp, &r)
	return r.ID
}

func TestResumeMultipartUpload(t *testing.T) {
	router := newTestRouter(t)
	goID := createSkill(t, router, "Go")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"title":      "Platform engineer",
		"skill_ids":  fmt.Sprintf("%d,999", goID),
		"education":  `[{"institution":"MIT","degree":"BSc","field_of_study":"CS","start_date":"2012-09-01","end_date":"2016-06-01"}]`,
		"experience": fmt.Sprintf(`[{"company":"Acme","title":"Engineer","start_date":"2016-07-01","is_current":true,"skill_ids":[%d]}]`, goID),
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fileWriter, err := writer.CreateFormFile("file", "Resume.PDF")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID          int64  `json:"id"`
		User        string `json:"user"`
		ContentType string `json:"content_type"`
		File        string `json:"file"`
		Skills      []struct {
			ID int64 `json:"id"`
		} `json:"skills"`
		Education []struct {
			Resume  int64   `json:"resume"`
			EndDate *string `json:"end_date"`
		} `json:"education"`
		Experience []struct {
			SkillsUsed []struct {
				Name string `json:"name"`
			} `json:"skills_used"`
		} `json:"experience"`
	}
	decode(t, resp, &created)

	if created.ContentType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", created.ContentType)
	}
	if created.User != "guest:guest-test-1" || created.File == "" {
		t.Fatalf("unexpected owner or file: %q %q", created.User, created.File)
	}
	if len(created.Skills) != 1 || created.Skills[0].ID != goID {
		t.Fatalf("expected only skill %d, got %+v", goID, created.Skills)
	}
	if len(created.Education) != 1 || created.Education[0].Resume != created.ID {
		t.Fatalf("unexpected education %+v", created.Education)
	}
	if created.Education[0].EndDate == nil || *created.Education[0].EndDate != "2016-06-01" {
		t.Fatalf("unexpected end date %+v", created.Education[0].EndDate)
	}
	if len(created.Experience) != 1 || len(created.Experience[0].SkillsUsed) != 1 {
		t.Fatalf("unexpected experience %+v", created.Experience)
	}

	// The stored document can be downloaded again.
	reqFile := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/resumes/%d/file", created.ID), nil)
	addGuestHeader(reqFile)
	respFile := httptest.NewRecorder()
	router.ServeHTTP(respFile, reqFile)
	if respFile.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", respFile.Code)
	}
	if respFile.Body.String() != "%PDF-1.4 test" {
		t.Fatalf("unexpected file body %q", respFile.Body.String())
	}
	if got := respFile.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected download content type %q", got)
	}
}

func TestResumeMultipartRejectsBadNestedJSON(t *testing.T) {
	router := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("title", "Backend")
	_ = writer.WriteField("education", `{not json`)
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var env errorEnvelope
	decode(t, resp, &env)
	if _, ok := env.Error.Details["education"]; !ok {
		t.Fatalf("expected education detail, got %v", env.Error.Details)
	}
}

func TestResumeCreateIgnoresEngineFields(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{
		"title":          "Backend",
		"content_type":   "text/html",
		"is_parsed":      true,
		"raw_text":       "injected",
		"overall_rating": 9,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ContentType   string  `json:"content_type"`
		IsParsed      bool    `json:"is_parsed"`
		RawText       string  `json:"raw_text"`
		OverallRating float64 `json:"overall_rating"`
	}
	decode(t, resp, &created)
	if created.ContentType != "" || created.IsParsed || created.RawText != "" || created.OverallRating != 0 {
		t.Fatalf("engine fields leaked through the write path: %+v", created)
	}
}

func TestMatchConflictReturns409(t *testing.T) {
	router := newTestRouter(t)
	resumeID := createResumeJSON(t, router, "Backend")
	jobID := createJob(t, router, "Go developer")

	payload := map[string]any{"resume": resumeID, "job": jobID}
	first := doJSON(t, router, http.MethodPost, "/api/v1/matches", payload)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := doJSON(t, router, http.MethodPost, "/api/v1/matches", payload)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
	var env errorEnvelope
	decode(t, second, &env)
	if env.Error.Code != "conflict" {
		t.Fatalf("expected conflict code, got %q", env.Error.Code)
	}
	if env.Error.Details["resume"] != float64(resumeID) || env.Error.Details["job"] != float64(jobID) {
		t.Fatalf("unexpected conflict details %v", env.Error.Details)
	}

	list := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/resumes/%d/job_matches", resumeID), nil)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.Code)
	}
	var page struct {
		Count int `json:"count"`
		Items []struct {
			JobTitle string `json:"job_title"`
		} `json:"items"`
	}
	decode(t, list, &page)
	if page.Count != 1 || page.Items[0].JobTitle != "Go developer" {
		t.Fatalf("unexpected matches %+v", page)
	}
}

func TestJobValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/jobs", map[string]any{
		"title":               "Go developer",
		"status":              "archived",
		"experience_required": -1,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var env errorEnvelope
	decode(t, resp, &env)
	if env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", env.Error.Code)
	}
	for _, field := range []string{"company", "location", "description", "requirements", "status", "experience_required"} {
		if _, ok := env.Error.Details[field]; !ok {
			t.Fatalf("expected %s in details, got %v", field, env.Error.Details)
		}
	}
}

func TestJobExperienceRequiredOutOfRange(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/jobs", map[string]any{
		"title":               "Go developer",
		"company":             "Acme",
		"location":            "Remote",
		"description":         "Build services",
		"requirements":        "Go",
		"experience_required": 3_000_000_000,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	var env errorEnvelope
	decode(t, resp, &env)
	if _, ok := env.Error.Details["experience_required"]; !ok {
		t.Fatalf("expected experience_required in details, got %v", env.Error.Details)
	}
}

func TestJobPutUpdatesGivenFields(t *testing.T) {
	router := newTestRouter(t)
	jobID := createJob(t, router, "Go developer")

	resp := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/jobs/%d", jobID), map[string]any{
		"title":  "Senior Go developer",
		"status": "active",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var job struct {
		Title   string `json:"title"`
		Company string `json:"company"`
		Status  string `json:"status"`
	}
	decode(t, resp, &job)
	if job.Title != "Senior Go developer" || job.Status != "active" || job.Company != "Acme" {
		t.Fatalf("unexpected job %+v", job)
	}

	resp = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/jobs/%d", jobID), map[string]any{"experience_required": -2})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestResumeParseRequeues(t *testing.T) {
	app := newTestApp(t)
	resumeID := createResumeJSON(t, app.Router, "Backend")

	resp := doJSON(t, app.Router, http.MethodPost, fmt.Sprintf("/api/v1/resumes/%d/parse", resumeID), nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var r idOnly
	decode(t, resp, &r)
	if r.ID != resumeID {
		t.Fatalf("expected resume %d, got %d", resumeID, r.ID)
	}

	rec, ok := app.Queue.(*queue.Recorder)
	if !ok {
		t.Fatalf("expected recording queue, got %T", app.Queue)
	}
	var parses int
	for _, msg := range rec.Sent() {
		if msg.Kind == queue.KindParseResume && msg.ResumeID == resumeID {
			parses++
		}
	}
	if parses != 2 {
		t.Fatalf("expected parse requests from create and re-parse, got %d", parses)
	}

	resp = doJSON(t, app.Router, http.MethodPost, "/api/v1/resumes/9999/parse", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestListRejectsUnknownOrdering(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/resumes?ordering=-password", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes?is_parsed=maybe", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad bool, got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/api/v1/jobs?ordering=-created_at,title&limit=5", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestNotFoundPaths(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/resumes/abc", "/api/v1/resumes/42", "/api/v1/jobs/7", "/api/v1/education/3"} {
		resp := doJSON(t, router, http.MethodGet, path, nil)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
	}
}

func TestExperienceUpdateKeepsSkillsWithoutKey(t *testing.T) {
	router := newTestRouter(t)
	goID := createSkill(t, router, "Go")
	resumeID := createResumeJSON(t, router, "Backend")

	resp := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/resumes/%d/experience", resumeID), map[string]any{
		"company":    "Acme",
		"title":      "Engineer",
		"start_date": "2019-01-01",
		"skill_ids":  []int64{goID},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var exp idOnly
	decode(t, resp, &exp)

	type expView struct {
		Title      string `json:"title"`
		SkillsUsed []any  `json:"skills_used"`
	}

	resp = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/experience/%d", exp.ID), map[string]any{"title": "New Title"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var kept expView
	decode(t, resp, &kept)
	if kept.Title != "New Title" || len(kept.SkillsUsed) != 1 {
		t.Fatalf("expected skills kept, got %+v", kept)
	}

	resp = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/experience/%d", exp.ID), map[string]any{"skill_ids": []int64{}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var cleared expView
	decode(t, resp, &cleared)
	if len(cleared.SkillsUsed) != 0 {
		t.Fatalf("expected skills cleared, got %+v", cleared)
	}
}

func TestEngineWriteBack(t *testing.T) {
	router := newTestRouter(t)
	resumeID := createResumeJSON(t, router, "Backend")
	path := fmt.Sprintf("/api/v1/engine/resumes/%d/analysis", resumeID)

	send := func(token string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("X-Engine-Token", token)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	if resp := send("", `{"overall_rating": 5}`); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	if resp := send(engineToken, `{"overall_rating": 11}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rating 11, got %d", resp.Code)
	}
	if resp := send(engineToken, `{"overall_rating": -1}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rating -1, got %d", resp.Code)
	}

	resp := send(engineToken, `{"overall_rating": 10, "is_parsed": true, "raw_text": "Go, SQL"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var view struct {
		IsParsed      bool    `json:"is_parsed"`
		RawText       string  `json:"raw_text"`
		OverallRating float64 `json:"overall_rating"`
	}
	decode(t, resp, &view)
	if !view.IsParsed || view.RawText != "Go, SQL" || view.OverallRating != 10 {
		t.Fatalf("unexpected analysis %+v", view)
	}

	// Parsed resumes are filterable.
	list := doJSON(t, router, http.MethodGet, "/api/v1/resumes?is_parsed=true&search=sql", nil)
	var page struct {
		Count int `json:"count"`
	}
	decode(t, list, &page)
	if page.Count != 1 {
		t.Fatalf("expected 1 parsed resume, got %d", page.Count)
	}
}

func TestRequiresIdentity(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/skills", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", health.Code)
	}
}

func TestDeleteResumeCascadesOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	goID := createSkill(t, router, "Go")
	resumeID := createResumeJSON(t, router, "Backend")
	jobID := createJob(t, router, "Go developer")

	resp := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/resumes/%d/match_jobs", resumeID), map[string]any{"job_ids": []int64{jobID}})
	if resp.Code != http.StatusOK {
		t.Fatalf("match_jobs: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/resumes/%d/generate_feedback", resumeID), nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("generate_feedback: expected 201, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/resumes/%d", resumeID), nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.Code)
	}

	matches := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d/resume_matches", jobID), nil)
	var page struct {
		Count int `json:"count"`
	}
	decode(t, matches, &page)
	if page.Count != 0 {
		t.Fatalf("expected matches removed, got %d", page.Count)
	}
	feedback := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/feedback?resume=%d", resumeID), nil)
	decode(t, feedback, &page)
	if page.Count != 0 {
		t.Fatalf("expected feedback removed, got %d", page.Count)
	}
	if resp := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/skills/%d", goID), nil); resp.Code != http.StatusOK {
		t.Fatalf("expected skill kept, got %d", resp.Code)
	}
}
