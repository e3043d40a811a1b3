package handlers

import (
	"net/http"
	"sync"
)

// Startup steps reported by the readiness probe
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepSeeding    = "Seeding built-in themes"
	StepServices   = "Initializing services"
	StepScheduler  = "Starting scheduler"
)

// StartupStep is one initialization stage
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

type startupView struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// NewStartupStatus creates a tracker over the named steps
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.steps {
		if s.steps[i].Name == name {
			s.steps[i].Completed = true
		}
		if s.steps[i].Completed {
			completed++
		}
	}
	if len(s.steps) > 0 {
		s.progress = completed * 100 / len(s.steps)
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// ServeHTTP reports progress, answering 503 until the server is ready
func (s *StartupStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	view := startupView{
		Ready:    s.ready,
		Current:  s.current,
		Progress: s.progress,
		Steps:    append([]StartupStep(nil), s.steps...),
	}
	s.mu.RUnlock()

	status := http.StatusOK
	if !view.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, view)
}

// Gate answers 503 for every request until the server is ready
func (s *StartupStatus) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsReady() {
			w.Header().Set("Retry-After", "2")
			respondWithError(w, http.StatusServiceUnavailable, "Server is starting", "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
