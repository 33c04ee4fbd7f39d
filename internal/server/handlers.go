package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"factagent/internal/memory"
	"factagent/internal/pipeline"
	"factagent/internal/sentiment"
	"factagent/internal/session"
)

// exampleClaims seeds the UI's "try an example" button.
var exampleClaims = []string{
	"The Earth revolves around the Sun once every 365 days.",
	"Water boils at 100 degrees Celsius at sea level.",
	"The Great Wall of China is visible from space with the naked eye.",
	"Vitamin C prevents the common cold in all cases.",
	"Goldfish have a memory span of only 3 seconds.",
}

const defaultMaxUploadBytes = 10 << 20

type verifyRequest struct {
	Text string `json:"text"`
}

type verifyResponse struct {
	Verdict    string               `json:"verdict"`
	Confidence float64              `json:"confidence"`
	ReportHTML string               `json:"report_html"`
	Sentiment  sentiment.Result     `json:"sentiment"`
	Trace      []pipeline.TraceStep `json:"trace"`
	Cached     bool                 `json:"cached"`
	ElapsedMS  int64                `json:"elapsed_ms"`
}

type statsResponse struct {
	Store   *memory.Stats `json:"store,omitempty"`
	Session session.Stats `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if pipeline.PreprocessInput(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	result, err := s.pipeline.Run(r.Context(), s.sessionID, req.Text)
	if err != nil {
		s.recordFailure()
		s.logger.Error("verification failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "verification failed"})
		return
	}

	s.recordResult(result, false)
	writeJSON(w, http.StatusOK, toVerifyResponse(result))
}

func (s *Server) handleVerifyImage(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart upload"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read image"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	result, err := s.pipeline.RunImage(r.Context(), s.sessionID, data, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoClaimsInImage):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "no verifiable claims found in image"})
		case errors.Is(err, pipeline.ErrNoImageSupport):
			writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "image verification is not available"})
		default:
			s.recordFailure()
			s.logger.Error("image verification failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "image verification failed"})
		}
		return
	}

	s.recordResult(result, true)
	writeJSON(w, http.StatusOK, toVerifyResponse(result))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{}
	if s.tracker != nil {
		resp.Session = s.tracker.Snapshot()
	}
	if s.store != nil {
		stats, err := s.store.Stats()
		if err != nil {
			s.logger.Warn("store stats unavailable", zap.Error(err))
		} else {
			resp.Store = stats
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"examples": exampleClaims})
}

func (s *Server) recordResult(result *pipeline.Result, image bool) {
	if s.tracker == nil {
		return
	}
	s.tracker.RecordCheck(result.Verdict, result.Confidence, result.Cached, image)
}

func (s *Server) recordFailure() {
	if s.tracker != nil {
		s.tracker.RecordFailure()
	}
}

func toVerifyResponse(result *pipeline.Result) verifyResponse {
	return verifyResponse{
		Verdict:    result.Verdict,
		Confidence: result.Confidence,
		ReportHTML: renderMarkdown(result.Report),
		Sentiment:  result.Sentiment,
		Trace:      result.Trace,
		Cached:     result.Cached,
		ElapsedMS:  result.Elapsed.Milliseconds(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
