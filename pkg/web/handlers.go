package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"net/http"

	"github.com/bndxn/secure-app/pkg/types"
)

type pageData struct {
	RecentRunsHTML template.HTML
	SuggestionHTML template.HTML
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleHome renders the latest analysis bundle. The page always renders:
// a missing bundle gets placeholders, a storage failure gets an error banner
// with a 500.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.latestBundle(r.Context())
	if err != nil {
		s.log.Error("Failed to load latest bundle", "error", err)
		s.render(w, http.StatusInternalServerError, pageData{
			RecentRunsHTML: template.HTML(fmt.Sprintf("<p>Error loading data: %s</p>", html.EscapeString(err.Error()))),
			SuggestionHTML: "<p>No analysis available.</p>",
		})
		return
	}

	if bundle == nil {
		s.render(w, http.StatusOK, pageData{
			RecentRunsHTML: "<ul><li>No runs yet.</li></ul>",
			SuggestionHTML: "<p>No analysis yet. Check back after your next run.</p>",
		})
		return
	}

	runsHTML := bundle.RecentRunsHTML
	if runsHTML == "" {
		runsHTML = FormatRunsFallback(bundle.RecentRuns)
	}

	suggestion := bundle.Suggestion
	if suggestion == "" {
		suggestion = bundle.Analysis
	}
	if suggestion == "" {
		suggestion = "No suggestion yet."
	}

	suggestionHTML, err := RenderMarkdown(suggestion)
	if err != nil {
		s.log.Warn("Markdown render failed, falling back to escaped text", "error", err)
		suggestionHTML = "<p>" + html.EscapeString(suggestion) + "</p>"
	}

	s.render(w, http.StatusOK, pageData{
		RecentRunsHTML: template.HTML(runsHTML),
		SuggestionHTML: template.HTML(suggestionHTML),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := homeTemplate.Execute(w, data); err != nil {
		s.log.Error("Template execution failed", "error", err)
	}
}

// latestBundle lists the analysis objects and returns the most recently
// modified one, or nil when there are none yet.
func (s *Server) latestBundle(ctx context.Context) (*types.AnalysisBundle, error) {
	objects, err := s.store.List(ctx, s.bucket, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	if len(objects) == 0 {
		return nil, nil
	}

	latest := objects[0]
	for _, obj := range objects[1:] {
		if obj.Updated.After(latest.Updated) {
			latest = obj
		}
	}

	data, err := s.store.Read(ctx, s.bucket, latest.Name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", latest.Name, err)
	}

	var bundle types.AnalysisBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parse %s: %w", latest.Name, err)
	}
	return &bundle, nil
}
