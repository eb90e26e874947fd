package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/observability/metrics"
)

const maxUploadBytes = 20 << 20 // 20 MiB

type Router struct {
	matcher  ports.MatchService
	bestJob  ports.BestJobFinder
	content  ports.ContentService
	ingestor ports.ResumeIngestor
	queue    ports.MessageQueue

	serverMetrics *metrics.HTTPServerMetrics
	service       string

	rateLimitRPS   float64
	rateLimitBurst int
	maxConcurrent  int
}

type RouterOption func(*Router)

func WithMetrics(service string, serverMetrics *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) {
		rt.service = service
		rt.serverMetrics = serverMetrics
	}
}

func WithTrafficControl(rps float64, burst, maxConcurrent int) RouterOption {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
		rt.maxConcurrent = maxConcurrent
	}
}

func NewRouter(
	matcher ports.MatchService,
	bestJob ports.BestJobFinder,
	content ports.ContentService,
	ingestor ports.ResumeIngestor,
	queue ports.MessageQueue,
	options ...RouterOption,
) *Router {
	rt := &Router{
		matcher:  matcher,
		bestJob:  bestJob,
		content:  content,
		ingestor: ingestor,
		queue:    queue,
	}
	for _, option := range options {
		option(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /v1/ai/jobs/{job_id}/resume-score", rt.resumeScore)
	mux.HandleFunc("GET /v1/ai/jobs/{job_id}/interview-questions", rt.interviewQuestions)
	mux.HandleFunc("POST /v1/ai/job-description", rt.jobDescription)
	mux.HandleFunc("GET /v1/ai/resumes/{resume_id}/best-job", rt.bestJobForResume)
	mux.HandleFunc("POST /v1/resumes", rt.uploadResume)
	mux.HandleFunc("POST /v1/ai/jobs/sync", rt.triggerJobSync)

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resumeScore runs the full matching pipeline for a job post and returns the
// model's scoring verdict for the closest active candidate.
func (rt *Router) resumeScore(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	start := time.Now()
	result, err := rt.matcher.ScoreResumes(r.Context(), jobID)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordLLMCall(rt.service, "resume_score", err)
	}
	if err != nil {
		writeError(w, r, "score resumes", err)
		return
	}
	slog.Info("resume_score_complete", "job_id", jobID, "duration_ms", time.Since(start).Milliseconds())

	writeJSON(w, http.StatusOK, map[string]any{"resume_score": result})
}

func (rt *Router) interviewQuestions(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	result, err := rt.content.InterviewQuestions(r.Context(), jobID)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordLLMCall(rt.service, "interview_questions", err)
	}
	if err != nil {
		writeError(w, r, "interview questions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interview_questions": result})
}

type jobDescriptionRequest struct {
	Title    string `json:"title"`
	Level    string `json:"level"`
	Location string `json:"location"`
}

func (rt *Router) jobDescription(w http.ResponseWriter, r *http.Request) {
	var request jobDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	result, err := rt.content.JobDescription(r.Context(), request.Title, request.Level, request.Location)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordLLMCall(rt.service, "job_description", err)
	}
	if err != nil {
		writeError(w, r, "job description", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job_description": result})
}

func (rt *Router) bestJobForResume(w http.ResponseWriter, r *http.Request) {
	resumeID := r.PathValue("resume_id")

	hit, err := rt.bestJob.BestJob(r.Context(), resumeID)
	if err != nil {
		writeError(w, r, "best job", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"best_job": hit})
}

func (rt *Router) uploadResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	resume, err := rt.ingestor.Upload(
		r.Context(),
		r.FormValue("owner_id"),
		fileHeader.Filename,
		fileHeader.Size,
		file,
	)
	if err != nil {
		writeError(w, r, "upload resume", err)
		return
	}
	writeJSON(w, http.StatusCreated, resume)
}

// triggerJobSync enqueues a full rebuild of the job-post vector index. The
// worker picks it up asynchronously.
func (rt *Router) triggerJobSync(w http.ResponseWriter, r *http.Request) {
	if err := rt.queue.PublishJobSync(r.Context()); err != nil {
		writeError(w, r, "publish job sync", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"operation", operation,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
