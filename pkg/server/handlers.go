package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/history/query"
	"mercator-hq/texsolve/pkg/ltp"
	"mercator-hq/texsolve/pkg/telemetry/logging"
)

// ConvertRequest is the body of POST /v1/convert and POST /v1/clean.
type ConvertRequest struct {
	Input string `json:"input"`
}

// ConvertResponse is returned by a successful POST /v1/convert.
type ConvertResponse struct {
	Output    string `json:"output"`
	RequestID string `json:"request_id"`
}

// CleanResponse is returned by a successful POST /v1/clean.
type CleanResponse struct {
	Cleaned     string `json:"cleaned"`
	CleanPasses int    `json:"clean_passes"`
	RequestID   string `json:"request_id"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type"`
	Position  *int   `json:"position,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HistoryListResponse is returned by GET /v1/history.
type HistoryListResponse struct {
	Records []*history.Record `json:"records"`
	Total   int64             `json:"total"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeConvertRequest(w, r)
	if !ok {
		return
	}

	out, err := s.engine.Convert(r.Context(), engine.Request{
		Input:     req.Input,
		Origin:    engine.OriginHTTP,
		RequestID: logging.GetRequestID(r.Context()),
	})
	if err != nil {
		s.writeEngineError(w, out.RequestID, err)
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{Output: out.Output, RequestID: out.RequestID})
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeConvertRequest(w, r)
	if !ok {
		return
	}

	out, err := s.engine.Clean(r.Context(), engine.Request{
		Input:     req.Input,
		Origin:    engine.OriginHTTP,
		RequestID: logging.GetRequestID(r.Context()),
	})
	if err != nil {
		s.writeEngineError(w, out.RequestID, err)
		return
	}

	writeJSON(w, http.StatusOK, CleanResponse{
		Cleaned:     out.Cleaned,
		CleanPasses: out.CleanPasses,
		RequestID:   out.RequestID,
	})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled", "not_found", requestID)
		return
	}

	record, err := s.history.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found", "not_found", requestID)
	case err != nil:
		s.logger.ErrorContext(r.Context(), "history lookup failed",
			append(logging.Fields(r.Context()), "error", err)...)
		writeError(w, http.StatusInternalServerError, "Error.", "internal", requestID)
	default:
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled", "not_found", requestID)
		return
	}

	q, err := query.FromValues(r.URL.Query(), time.Now())
	if err == nil {
		query.ApplyDefaults(q, s.queryConfig)
		err = query.Validate(q, s.queryConfig)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_query", requestID)
		return
	}

	records, err := s.history.Query(r.Context(), q)
	if err == nil {
		var total int64
		total, err = s.history.Count(r.Context(), q)
		if err == nil {
			writeJSON(w, http.StatusOK, HistoryListResponse{Records: records, Total: total})
			return
		}
	}
	s.logger.ErrorContext(r.Context(), "history query failed",
		append(logging.Fields(r.Context()), "error", err)...)
	writeError(w, http.StatusInternalServerError, "Error.", "internal", requestID)
}

func (s *Server) decodeConvertRequest(w http.ResponseWriter, r *http.Request) (*ConvertRequest, bool) {
	requestID := logging.GetRequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	var req ConvertRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", engine.ErrorTypeInputTooLarge, requestID)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "invalid_request", requestID)
		return nil, false
	}
	return &req, true
}

// writeEngineError maps an engine error onto the HTTP response. Conversion
// failures are 422 and carry the user-facing message.
func (s *Server) writeEngineError(w http.ResponseWriter, requestID string, err error) {
	var (
		convErr  *ltp.Error
		tooLarge *engine.InputTooLargeError
	)
	switch {
	case errors.As(err, &convErr):
		resp := ErrorResponse{Error: convErr.Message, Type: string(convErr.Type), RequestID: requestID}
		if convErr.Position >= 0 {
			pos := convErr.Position
			resp.Position = &pos
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge.Error(), engine.ErrorTypeInputTooLarge, requestID)
	default:
		writeError(w, http.StatusServiceUnavailable, "Error.", engine.ErrorType(err), requestID)
	}
}

func writeError(w http.ResponseWriter, code int, message, errType, requestID string) {
	writeJSON(w, code, ErrorResponse{Error: message, Type: errType, RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
