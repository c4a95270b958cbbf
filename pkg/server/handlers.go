package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"mosaic-hq/bento/pkg/entry"
	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/layout"
)

// validateRequest is the body of POST /v1/validate. Entries may be
// supplied inline; when absent, the server fetches the field's linked
// entries from the content API.
type validateRequest struct {
	Space       string        `json:"space"`
	Entry       string        `json:"entry"`
	Field       string        `json:"field"`
	ContentType string        `json:"content_type"`
	Entries     []entry.Entry `json:"entries"`
}

// violationPayload is one validation error with its rendered message.
type violationPayload struct {
	layout.Violation
	Message string `json:"message"`
}

// validateResponse is the body of a successful POST /v1/validate.
type validateResponse struct {
	Valid      bool               `json:"valid"`
	LayoutType string             `json:"layout_type"`
	EntryCount int                `json:"entry_count"`
	Errors     []violationPayload `json:"errors"`
	RunID      string             `json:"run_id,omitempty"`
}

// handleValidate validates one field's linked entries against its layout.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ContentType == "" || req.Field == "" {
		writeError(w, http.StatusBadRequest, "content_type and field are required")
		return
	}

	cfg, ok := s.registry.Select(req.ContentType, req.Field)
	if !ok {
		writeError(w, http.StatusNotFound, "no layout configured for ("+req.ContentType+", "+req.Field+")")
		return
	}

	entries := req.Entries
	if entries == nil {
		if s.fetcher == nil {
			writeError(w, http.StatusBadRequest, "entries not supplied and no content API configured")
			return
		}
		if req.Space == "" || req.Entry == "" {
			writeError(w, http.StatusBadRequest, "space and entry are required when entries are not supplied")
			return
		}

		fetched, err := s.fetcher.FetchLinks(r.Context(), entry.Reference{
			Space: req.Space,
			Entry: req.Entry,
			Field: req.Field,
		})
		if err != nil {
			s.logger.Error("entry fetch failed",
				"request_id", GetRequestID(r.Context()),
				"space", req.Space,
				"entry", req.Entry,
				"field", req.Field,
				"error", err,
			)
			writeError(w, http.StatusBadGateway, "failed to fetch entries: "+err.Error())
			return
		}
		entries = fetched
	}

	start := time.Now()
	result := layout.Validate(cfg, entries, entry.ContentTypeOf)
	duration := time.Since(start)

	if s.collector != nil {
		s.collector.RecordRun(cfg.LayoutType, result, duration)
	}

	resp := validateResponse{
		Valid:      result.Valid(),
		LayoutType: cfg.LayoutType,
		EntryCount: len(entries),
		Errors:     make([]violationPayload, 0, len(result.Violations)),
	}
	for _, v := range result.Violations {
		resp.Errors = append(resp.Errors, violationPayload{Violation: v, Message: v.Message()})
	}

	if s.recorder != nil {
		ref := entry.Reference{Space: req.Space, Entry: req.Entry, Field: req.Field}
		run := s.recorder.Record(ref, req.ContentType, cfg.LayoutType, len(entries), result, duration)
		resp.RunID = run.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLayouts lists the loaded layout configurations and any lint
// warnings the registry collected while loading them.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	configs := s.registry.Configs()
	warnings := s.registry.Warnings()

	msgs := make([]string, 0, len(warnings))
	for _, warn := range warnings {
		msgs = append(msgs, warn.String())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(configs),
		"layouts":  configs,
		"warnings": msgs,
	})
}

// handleHistory queries recorded validation runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	query, err := parseHistoryQuery(r, s.config.History.Query.DefaultLimit, s.config.History.Query.MaxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := s.storage.Query(r.Context(), query)
	if err != nil {
		s.logger.Error("history query failed",
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}

	total, err := s.storage.Count(r.Context(), query)
	if err != nil {
		s.logger.Error("history count failed",
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   runs,
		"total":  total,
		"limit":  query.Limit,
		"offset": query.Offset,
	})
}

// parseHistoryQuery builds a history query from URL parameters, clamping
// the page size to the configured maximum.
func parseHistoryQuery(r *http.Request, defaultLimit, maxLimit int) (*history.Query, error) {
	params := r.URL.Query()
	query := &history.Query{
		Space:      params.Get("space"),
		Entry:      params.Get("entry"),
		Field:      params.Get("field"),
		LayoutType: params.Get("layout_type"),
		Limit:      defaultLimit,
	}

	if v := params.Get("only_invalid"); v != "" {
		onlyInvalid, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errBadParam("only_invalid", v)
		}
		query.OnlyInvalid = onlyInvalid
	}

	if v := params.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errBadParam("start_time", v)
		}
		query.StartTime = &t
	}
	if v := params.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errBadParam("end_time", v)
		}
		query.EndTime = &t
	}

	if v := params.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return nil, errBadParam("limit", v)
		}
		query.Limit = limit
	}
	if maxLimit > 0 && query.Limit > maxLimit {
		query.Limit = maxLimit
	}

	if v := params.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return nil, errBadParam("offset", v)
		}
		query.Offset = offset
	}

	return query, nil
}

// trackRequest is the body of POST and DELETE /v1/tracked.
type trackRequest struct {
	Space       string `json:"space"`
	Entry       string `json:"entry"`
	Field       string `json:"field"`
	ContentType string `json:"content_type"`
}

// trackedFieldPayload is one tracked field with its latest adopted run.
type trackedFieldPayload struct {
	Space  string       `json:"space"`
	Entry  string       `json:"entry"`
	Field  string       `json:"field"`
	Latest *history.Run `json:"latest,omitempty"`
}

// handleTracked manages the set of monitored fields. GET lists them,
// POST starts tracking, DELETE stops.
func (s *Server) handleTracked(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "field monitoring is disabled")
		return
	}

	switch r.Method {
	case http.MethodGet:
		refs := s.monitor.Tracked()
		fields := make([]trackedFieldPayload, 0, len(refs))
		for _, ref := range refs {
			payload := trackedFieldPayload{Space: ref.Space, Entry: ref.Entry, Field: ref.Field}
			if run, ok := s.monitor.Latest(ref); ok {
				payload.Latest = run
			}
			fields = append(fields, payload)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":  len(fields),
			"fields": fields,
		})

	case http.MethodPost:
		req, ok := decodeTrackRequest(w, r)
		if !ok {
			return
		}
		if req.ContentType == "" {
			writeError(w, http.StatusBadRequest, "content_type is required")
			return
		}
		s.monitor.Track(entry.Reference{Space: req.Space, Entry: req.Entry, Field: req.Field}, req.ContentType)
		writeJSON(w, http.StatusCreated, map[string]string{"status": "tracking"})

	case http.MethodDelete:
		req, ok := decodeTrackRequest(w, r)
		if !ok {
			return
		}
		s.monitor.Untrack(entry.Reference{Space: req.Space, Entry: req.Entry, Field: req.Field})
		writeJSON(w, http.StatusOK, map[string]string{"status": "untracked"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRevalidate triggers an immediate revalidation of a tracked field
// and returns the resulting run.
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "field monitoring is disabled")
		return
	}

	req, ok := decodeTrackRequest(w, r)
	if !ok {
		return
	}

	run, err := s.monitor.Revalidate(r.Context(), entry.Reference{
		Space: req.Space,
		Entry: req.Entry,
		Field: req.Field,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func decodeTrackRequest(w http.ResponseWriter, r *http.Request) (trackRequest, bool) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	if req.Space == "" || req.Entry == "" || req.Field == "" {
		writeError(w, http.StatusBadRequest, "space, entry, and field are required")
		return req, false
	}
	return req, true
}

// handleHealth runs the registered component checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}

	statuses, healthy := s.health.Check(r.Context())
	status := http.StatusOK
	label := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		label = "unhealthy"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":     label,
		"components": statuses,
	})
}

// handleReady reports whether the server can serve validation requests.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil || s.registry.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "no layouts loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion reports the build version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "bento",
		"version": Version,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type badParamError struct {
	param string
	value string
}

func (e *badParamError) Error() string {
	return "invalid value for " + e.param + ": " + strconv.Quote(e.value)
}

func errBadParam(param, value string) error {
	return &badParamError{param: param, value: value}
}
