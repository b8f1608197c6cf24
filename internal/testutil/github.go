// Package testutil provides a fake GitHub issues API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// FakeGitHub serves the subset of the GitHub issues API used by the tracker.
type FakeGitHub struct {
	server   *httptest.Server
	issues   map[string]*Issue
	counter  int
	requests []Request
	failWith int
	mu       sync.RWMutex
}

// Issue represents an issue as the fake API stores and returns it.
type Issue struct {
	ID        int     `json:"id"`
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	State     string  `json:"state"`
	HTMLURL   string  `json:"html_url"`
	Labels    []Label `json:"labels"`
	Assignees []User  `json:"assignees"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type Label struct {
	Name string `json:"name"`
}

type User struct {
	Login string `json:"login"`
}

// Request records a call made against the fake API.
type Request struct {
	Method string
	Path   string
	Token  string
}

// NewFakeGitHub starts a fake API server. Callers must Close it.
func NewFakeGitHub() *FakeGitHub {
	m := &FakeGitHub{
		issues:  make(map[string]*Issue),
		counter: 1000,
	}

	router := mux.NewRouter()
	router.Use(m.record)
	router.HandleFunc("/repos/{owner}/{repo}/issues", m.handleCreateIssue).Methods("POST")
	router.HandleFunc("/repos/{owner}/{repo}/issues/{number}", m.handleGetIssue).Methods("GET")
	router.HandleFunc("/repos/{owner}/{repo}/issues/{number}/assignees", m.handleAddAssignees).Methods("POST")
	router.HandleFunc("/repos/{owner}/{repo}/issues/{number}/labels", m.handleAddLabels).Methods("POST")

	m.server = httptest.NewServer(router)
	return m
}

// URL returns the base URL to configure a GitHub client with.
func (m *FakeGitHub) URL() string {
	return m.server.URL + "/"
}

func (m *FakeGitHub) Close() {
	m.server.Close()
}

// FailWith makes every following request fail with status. Zero restores
// normal behaviour.
func (m *FakeGitHub) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = status
}

// Issue returns a copy of a stored issue, or nil.
func (m *FakeGitHub) Issue(owner, repo string, number int) *Issue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, ok := m.issues[issueKey(owner, repo, number)]
	if !ok {
		return nil
	}
	c := *issue
	c.Labels = slices.Clone(issue.Labels)
	c.Assignees = slices.Clone(issue.Assignees)
	return &c
}

// Requests returns the calls received so far.
func (m *FakeGitHub) Requests() []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.requests)
}

func (m *FakeGitHub) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Token:  strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
		})
		status := m.failWith
		m.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *FakeGitHub) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner := vars["owner"]
	repo := vars["repo"]

	var createReq struct {
		Title     string   `json:"title"`
		Body      string   `json:"body"`
		Labels    []string `json:"labels"`
		Assignees []string `json:"assignees"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	if createReq.Title == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	now := time.Now().Format(time.RFC3339)
	issue := &Issue{
		ID:        m.counter,
		Number:    m.counter,
		Title:     createReq.Title,
		Body:      createReq.Body,
		State:     "open",
		HTMLURL:   fmt.Sprintf("https://github.com/%s/%s/issues/%d", owner, repo, m.counter),
		CreatedAt: now,
		UpdatedAt: now,
	}
	issue.addLabels(createReq.Labels)
	issue.addAssignees(createReq.Assignees)
	m.issues[issueKey(owner, repo, issue.Number)] = issue

	writeJSON(w, http.StatusCreated, issue)
}

func (m *FakeGitHub) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, ok := m.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (m *FakeGitHub) handleAddAssignees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Assignees []string `json:"assignees"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	issue, ok := m.lookup(w, r)
	if !ok {
		return
	}
	issue.addAssignees(req.Assignees)
	issue.UpdatedAt = time.Now().Format(time.RFC3339)

	writeJSON(w, http.StatusCreated, issue)
}

func (m *FakeGitHub) handleAddLabels(w http.ResponseWriter, r *http.Request) {
	var labels []string
	if err := json.NewDecoder(r.Body).Decode(&labels); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	issue, ok := m.lookup(w, r)
	if !ok {
		return
	}
	issue.addLabels(labels)
	issue.UpdatedAt = time.Now().Format(time.RFC3339)

	writeJSON(w, http.StatusOK, issue.Labels)
}

// lookup must be called with m.mu held.
func (m *FakeGitHub) lookup(w http.ResponseWriter, r *http.Request) (*Issue, bool) {
	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid issue number"})
		return nil, false
	}

	issue, ok := m.issues[issueKey(vars["owner"], vars["repo"], number)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return nil, false
	}
	return issue, true
}

func (i *Issue) addLabels(names []string) {
	for _, name := range names {
		if !slices.ContainsFunc(i.Labels, func(l Label) bool { return l.Name == name }) {
			i.Labels = append(i.Labels, Label{Name: name})
		}
	}
}

func (i *Issue) addAssignees(logins []string) {
	for _, login := range logins {
		if !slices.ContainsFunc(i.Assignees, func(u User) bool { return u.Login == login }) {
			i.Assignees = append(i.Assignees, User{Login: login})
		}
	}
}

func issueKey(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s/%d", owner, repo, number)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
