package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/trackdash/pkg/buildinfo"
	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dashboard"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/pipeline"
)

// HeaderCache reports whether an artifact was served from the cache.
const HeaderCache = "X-Cache"

func (s *Server) input(q dashboard.Query) chart.Input {
	return q.Apply(chart.Input{
		Data:      s.data,
		Positions: s.positions,
		Genres:    s.opts.Genres,
	})
}

func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	tab, err := s.tabs.Find(chi.URLParam(r, "tab"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := dashboard.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := tab.Page(s.input(q))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render tab %s", tab.ID))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q, err := dashboard.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := chart.Build(chi.URLParam(r, "chart"), s.input(q))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, c.JSON())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	opts.Chart = chart.NameStrip
	opts.Formats = []string{pipeline.FormatJSON}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), s.data, s.positions, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderCache, cacheStatus(hit))
	_, _ = w.Write(artifacts[pipeline.FormatJSON])
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"tracks":  s.data.Len(),
	})
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, r, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: RequestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "id", RequestID(r.Context()), "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
