package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Status is the result of one component check.
type Status struct {
	// Component is the registered check name.
	Component string `json:"component"`

	// Healthy reports whether the check passed.
	Healthy bool `json:"healthy"`

	// Error holds the failure message when unhealthy.
	Error string `json:"error,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration"`
}

// Checker runs named component checks with a shared timeout.
type Checker struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
	order  []string
}

// NewChecker creates a checker. A zero timeout defaults to 5 seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		timeout: timeout,
		checks:  make(map[string]CheckFunc),
	}
}

// Register adds a named check. Registering an existing name replaces it.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.checks[name]; !exists {
		c.order = append(c.order, name)
	}
	c.checks[name] = check
}

// Check runs every registered check and returns their statuses in
// registration order, plus an overall healthy flag.
func (c *Checker) Check(ctx context.Context) ([]Status, bool) {
	c.mu.RLock()
	names := make([]string, len(c.order))
	copy(names, c.order)
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	statuses := make([]Status, 0, len(names))
	healthy := true

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err := checks[name](checkCtx)
		cancel()

		status := Status{
			Component: name,
			Healthy:   err == nil,
			Duration:  time.Since(start),
		}
		if err != nil {
			status.Error = err.Error()
			healthy = false
		}
		statuses = append(statuses, status)
	}

	return statuses, healthy
}
