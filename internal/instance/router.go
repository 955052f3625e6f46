package instance

import (
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/drey/pkg/kanban"
)

// Router hands out kanban clients per instance, sharing one client per
// instance across callers. All instances talk to the same Redis server; the
// instance name only partitions the key space.
type Router struct {
	mu      sync.Mutex
	opts    *redis.Options
	clients map[string]*kanban.Client
}

// NewRouter creates a router that dials Redis with the given options.
func NewRouter(opts *redis.Options) *Router {
	return &Router{
		opts:    opts,
		clients: make(map[string]*kanban.Client),
	}
}

// Client returns the cached client for an instance, creating it on first use.
// The instance name is validated before any connection is made.
func (r *Router) Client(instanceName string) (*kanban.Client, error) {
	if err := ValidateName(instanceName); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[instanceName]; ok {
		return c, nil
	}

	c, err := kanban.NewClient(r.opts, instanceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for instance %q: %w", instanceName, err)
	}
	r.clients[instanceName] = c
	return c, nil
}

// Close closes every client the router has handed out.
// The first error encountered is returned, but all clients are closed.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, c := range r.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close client for instance %q: %w", name, err)
		}
		delete(r.clients, name)
	}
	return firstErr
}
