package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Report is the health payload.
type Report struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components,omitempty"`
}

// Service runs the registered dependency checks.
type Service struct {
	timeout time.Duration
	mu      sync.RWMutex
	checks  map[string]Check
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{timeout: 2 * time.Second, checks: map[string]Check{}}
}

// Register adds a named check. Nil checks are ignored.
func (s *Service) Register(name string, check Check) {
	if check == nil {
		return
	}
	s.mu.Lock()
	s.checks[name] = check
	s.mu.Unlock()
}

// Names lists the registered checks.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.checks))
	for name := range s.checks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status runs every check concurrently, each bounded by the service timeout.
func (s *Service) Status(ctx context.Context) Report {
	s.mu.RLock()
	checks := make(map[string]Check, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()

	report := Report{OK: true, Components: make(map[string]string, len(checks))}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			status := "ok"
			if err := check(cctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			report.Components[name] = status
			if status != "ok" {
				report.OK = false
			}
		}()
	}
	wg.Wait()
	return report
}
