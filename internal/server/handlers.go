package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/guardrail"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

const maxBodyBytes = 2 << 20

var validate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// SaveResumeRequest is the body of POST /resumes.
type SaveResumeRequest struct {
	Filename     string          `json:"filename" validate:"max=255"`
	OriginalText string          `json:"originalText" validate:"required"`
	Parsed       json.RawMessage `json:"parsed,omitempty"`
}

// SaveJobRequest is the body of POST /jobs. HTML, when given, is reduced to
// text and used in place of RawText.
type SaveJobRequest struct {
	SourceURL  string          `json:"sourceUrl" validate:"omitempty,url,max=2048"`
	RawText    string          `json:"rawText" validate:"required_without=HTML"`
	HTML       string          `json:"html,omitempty"`
	Structured json.RawMessage `json:"structured,omitempty"`
}

// TailorRequest is the body of POST /tailor and POST /tailor/stream.
type TailorRequest struct {
	ResumeID string `json:"resumeId" validate:"required"`
	JobID    string `json:"jobId" validate:"required"`
}

// TailorResponse is returned by POST /tailor and as the final stream event.
type TailorResponse struct {
	RunID     string                 `json:"runId"`
	Result    *types.TailoringResult `json:"result"`
	Decisions []guardrail.Decision   `json:"decisions"`
	Stages    []pipeline.StageTiming `json:"stages"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func decodeBody(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &RequestError{Field: "body", Message: err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &RequestError{Field: verrs[0].Field(), Message: "failed " + verrs[0].Tag()}
		}
		return &RequestError{Field: "body", Message: err.Error()}
	}
	return nil
}

// checkDocument validates optional structured JSON against a schema.
func checkDocument(field, schema string, raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := schemas.Validate(schema, raw); err != nil {
		return &RequestError{Field: field, Message: err.Error()}
	}
	return nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &RequestError{Field: field, Message: "must be a UUID"}
	}
	return id, nil
}

func (s *Server) handleSaveResume(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrNoStore)
		return
	}
	var req SaveResumeRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkDocument("parsed", schemas.StructuredResume, req.Parsed); err != nil {
		s.fail(w, r, err)
		return
	}
	text := ingestion.NormalizeText(req.OriginalText)
	if text == "" {
		s.fail(w, r, &RequestError{Field: "originalText", Message: "empty after normalization"})
		return
	}

	id, err := s.store.SaveResume(r.Context(), middleware.OwnerFrom(r.Context()), req.Filename, text, req.Parsed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrNoStore)
		return
	}
	resumes, err := s.store.ListResumes(r.Context(), middleware.OwnerFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": resumes})
}

func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrNoStore)
		return
	}
	var req SaveJobRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkDocument("structured", schemas.StructuredJob, req.Structured); err != nil {
		s.fail(w, r, err)
		return
	}
	text := req.RawText
	if req.HTML != "" {
		extracted, err := ingestion.HTMLToText(req.HTML, req.SourceURL)
		if err != nil {
			s.fail(w, r, &RequestError{Field: "html", Message: err.Error()})
			return
		}
		text = extracted
	}
	text = ingestion.NormalizeText(text)
	if text == "" {
		s.fail(w, r, &RequestError{Field: "rawText", Message: "empty after normalization"})
		return
	}

	id, err := s.store.SaveJob(r.Context(), middleware.OwnerFrom(r.Context()), req.SourceURL, text, req.Structured)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrNoStore)
		return
	}
	jobs, err := s.store.ListJobs(r.Context(), middleware.OwnerFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// tailorJob is a loaded tailoring request.
type tailorJob struct {
	owner  string
	resume *db.Resume
	job    *db.Job
}

func (t *tailorJob) input() pipeline.Input {
	return pipeline.Input{
		Resume: pipeline.ResumeInput{
			Filename:     t.resume.Filename,
			OriginalText: t.resume.OriginalText,
			Parsed:       t.resume.Parsed,
		},
		Job: pipeline.JobInput{
			SourceURL:  t.job.SourceURL,
			RawText:    t.job.RawText,
			Structured: t.job.Structured,
		},
	}
}

func (s *Server) loadTailorJob(r *http.Request, w http.ResponseWriter) (*tailorJob, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if s.pipeline == nil {
		return nil, errors.New("no pipeline configured")
	}
	var req TailorRequest
	if err := decodeBody(r, w, &req); err != nil {
		return nil, err
	}
	resumeID, err := parseID("resumeId", req.ResumeID)
	if err != nil {
		return nil, err
	}
	jobID, err := parseID("jobId", req.JobID)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	owner := middleware.OwnerFrom(ctx)
	resume, err := s.store.GetResume(ctx, owner, resumeID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, owner, jobID)
	if err != nil {
		return nil, err
	}
	return &tailorJob{owner: owner, resume: resume, job: job}, nil
}

// runAndPersist runs p under the request timeout, writes back structured
// data the records were missing, and stores the run.
func (s *Server) runAndPersist(ctx context.Context, p *pipeline.Pipeline, t *tailorJob) (*TailorResponse, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	out, err := p.RunDetailed(ctx, t.input())
	if err != nil {
		return nil, err
	}
	s.writeBack(ctx, t, out)

	runID, err := s.store.CreateTailoringRun(ctx, t.owner, t.resume.ID, t.job.ID, out.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to save tailoring run: %w", err)
	}
	return &TailorResponse{
		RunID:     runID.String(),
		Result:    out.Result,
		Decisions: out.Decisions,
		Stages:    out.Stages,
	}, nil
}

// writeBack stores structured data so later runs over the same records skip
// structuring. Records whose stored document is missing or no longer
// validates are overwritten. Failures are logged only.
func (s *Server) writeBack(ctx context.Context, t *tailorJob, out *pipeline.Outcome) {
	if needsWriteBack(schemas.StructuredResume, t.resume.Parsed) {
		if raw, err := json.Marshal(out.Resume); err == nil {
			if err := s.store.SetResumeParsed(ctx, t.owner, t.resume.ID, raw); err != nil {
				s.logger.Warn("failed to store parsed resume", zap.String("resume_id", t.resume.ID.String()), zap.Error(err))
			}
		}
	}
	if needsWriteBack(schemas.StructuredJob, t.job.Structured) {
		if raw, err := json.Marshal(out.Job); err == nil {
			if err := s.store.SetJobStructured(ctx, t.owner, t.job.ID, raw); err != nil {
				s.logger.Warn("failed to store structured job", zap.String("job_id", t.job.ID.String()), zap.Error(err))
			}
		}
	}
}

func needsWriteBack(schema string, stored json.RawMessage) bool {
	if len(bytes.TrimSpace(stored)) == 0 {
		return true
	}
	return schemas.Validate(schema, stored) != nil
}

func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTailorJob(r, w)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp, err := s.runAndPersist(r.Context(), s.pipeline, t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleTailorStream runs like handleTailor but reports each finished stage
// as an event. Errors found before the run starts are plain JSON responses.
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTailorJob(r, w)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	p := s.pipeline.Derive(pipeline.WithProgress(func(ev pipeline.ProgressEvent) {
		if err := stream.send(eventStage, ev); err != nil {
			s.logger.Debug("failed to send stage event", zap.Error(err))
		}
	}))
	resp, err := s.runAndPersist(r.Context(), p, t)
	if err != nil {
		status := HTTPStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			s.logger.Error("streamed tailoring failed", zap.Error(err))
			msg = http.StatusText(status)
		}
		_ = stream.fail(status, msg)
		return
	}
	_ = stream.send(eventComplete, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrNoStore)
		return
	}
	runs, err := s.store.ListTailoringRuns(r.Context(), middleware.OwnerFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	type summary struct {
		ID        string    `json:"id"`
		ResumeID  string    `json:"resumeId"`
		JobID     string    `json:"jobId"`
		CreatedAt time.Time `json:"createdAt"`
	}
	out := make([]summary, 0, len(runs))
	for _, run := range runs {
		out = append(out, summary{
			ID:        run.ID.String(),
			ResumeID:  run.ResumeID.String(),
			JobID:     run.JobID.String(),
			CreatedAt: run.CreatedAt,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": out})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrNoStore)
		return
	}
	id, err := parseID("id", r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	run, err := s.store.GetTailoringRun(r.Context(), middleware.OwnerFrom(r.Context()), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := run.DecodeResult()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":        run.ID.String(),
		"resumeId":  run.ResumeID.String(),
		"jobId":     run.JobID.String(),
		"createdAt": run.CreatedAt,
		"result":    result,
	})
}
