// Package apitest provides an in-memory fake of the Lacs Verts backend for
// tests. It records every request so tests can assert on call counts and
// headers.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"lacsverts/internal/types"
)

// Request is a recorded call.
type Request struct {
	Method    string
	Path      string
	SessionID string
	Body      []byte
}

// Backend is a fake backend served by httptest.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	requests  []Request
	lakes     []types.Lake
	reports   []types.Report
	posts     []types.AwarenessPost
	sessions  map[string]types.Profile
	failPaths map[string]int
	nextID    int
}

// NewBackend starts a fake backend. It is closed by t.Cleanup when t is given.
func NewBackend(cleanup interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		sessions:  make(map[string]types.Profile),
		failPaths: make(map[string]int),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	if cleanup != nil {
		cleanup.Cleanup(b.Server.Close)
	}
	return b
}

// URL is the backend origin, without the /api prefix.
func (b *Backend) URL() string { return b.Server.URL }

// SetLakes replaces the lake list.
func (b *Backend) SetLakes(lakes ...types.Lake) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lakes = lakes
}

// SetPosts replaces the awareness posts.
func (b *Backend) SetPosts(posts ...types.AwarenessPost) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = posts
}

// AddSession makes sessionID valid for /auth/profile and /reports.
func (b *Backend) AddSession(sessionID string, profile types.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = profile
}

// FailWith makes requests to "METHOD /path" answer status until cleared
// with status 0.
func (b *Backend) FailWith(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failPaths, key)
		return
	}
	b.failPaths[key] = status
}

// Requests returns a copy of the recorded requests.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many "METHOD /path" requests were received.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reports returns the reports stored so far.
func (b *Backend) Reports() []types.Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Report, len(b.reports))
	copy(out, b.reports)
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:    r.Method,
		Path:      path,
		SessionID: r.Header.Get("X-Session-ID"),
		Body:      body,
	})
	status, failing := b.failPaths[r.Method+" "+path]
	b.mu.Unlock()

	if failing {
		writeJSON(w, status, map[string]string{"detail": "injected failure"})
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "/api/":
		writeJSON(w, http.StatusOK, map[string]string{"message": "Lacs Verts API"})
	case r.Method == http.MethodGet && path == "/api/lakes":
		b.mu.Lock()
		lakes := append([]types.Lake{}, b.lakes...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, lakes)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/lakes/"):
		id := strings.TrimPrefix(path, "/api/lakes/")
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, l := range b.lakes {
			if l.ID == id {
				writeJSON(w, http.StatusOK, l)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Lake not found"})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/reports/lake/"):
		id := strings.TrimPrefix(path, "/api/reports/lake/")
		out := []types.Report{}
		for _, rep := range b.Reports() {
			if rep.LakeID == id {
				out = append(out, rep)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case r.Method == http.MethodGet && path == "/api/awareness":
		b.mu.Lock()
		posts := append([]types.AwarenessPost{}, b.posts...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, posts)
	case r.Method == http.MethodPost && path == "/api/auth/profile":
		profile, ok := b.session(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid session"})
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case r.Method == http.MethodGet && path == "/api/reports":
		if _, ok := b.session(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
			return
		}
		writeJSON(w, http.StatusOK, b.Reports())
	case r.Method == http.MethodPost && path == "/api/reports":
		b.createReport(w, r, body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (b *Backend) session(r *http.Request) (types.Profile, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.sessions[r.Header.Get("X-Session-ID")]
	return p, ok
}

func (b *Backend) createReport(w http.ResponseWriter, r *http.Request, body []byte) {
	profile, ok := b.session(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
		return
	}
	var in types.NewReport
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": err.Error()}},
		})
		return
	}

	b.mu.Lock()
	b.nextID++
	report := types.Report{
		ID:          fmt.Sprintf("r%d", b.nextID),
		LakeID:      in.LakeID,
		UserID:      profile.ID,
		UserName:    profile.Name,
		Description: in.Description,
		ImageBase64: in.ImageBase64,
		VideoBase64: in.VideoBase64,
		CreatedAt:   types.Timestamp{Time: time.Now().UTC()},
		Status:      types.ReportPending,
	}
	b.reports = append([]types.Report{report}, b.reports...)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SampleLakes returns one lake per status.
func SampleLakes() []types.Lake {
	return []types.Lake{
		{ID: "kossou", Name: "Lac de Kossou", Region: "Centre", Status: types.StatusClean, Latitude: 7.0, Longitude: -5.5},
		{ID: "buyo", Name: "Lac Buyo", Region: "Ouest", Status: types.StatusToWatch, Latitude: 6.25, Longitude: -7.0},
		{ID: "taabo", Name: "Lac de Taabo", Region: "Sud", Status: types.StatusPolluted, Latitude: 6.2, Longitude: -5.1},
	}
}
