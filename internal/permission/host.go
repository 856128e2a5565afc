package permission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Host is the platform side of the permission model.
type Host interface {
	PermissionGranted(ctx context.Context) bool
	ShouldShowRationale(ctx context.Context) bool
	// RuntimePermissions is false on platforms that grant at install time.
	RuntimePermissions() bool
	// Prompt starts asking the user. The decision arrives later through
	// Handle.Complete, either from the host itself or from Flow.Resolve.
	Prompt(ctx context.Context, h *Handle) error
	Platform() string
}

// Recorder is implemented by hosts that persist decisions delivered through
// Flow.Resolve.
type Recorder interface {
	Record(ctx context.Context, granted bool) error
}

// Binding tracks the currently attached host. A detached binding means there
// is no active context to prompt from.
type Binding struct {
	mu   sync.RWMutex
	host Host
}

func NewBinding(h Host) *Binding {
	return &Binding{host: h}
}

func (b *Binding) Attach(h Host) {
	b.mu.Lock()
	b.host = h
	b.mu.Unlock()
}

func (b *Binding) Detach() {
	b.mu.Lock()
	b.host = nil
	b.mu.Unlock()
}

func (b *Binding) Current() (Host, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.host, b.host != nil
}

// Handle is one outstanding permission request. It completes at most once.
type Handle struct {
	id         string
	permission string
	createdAt  time.Time

	once    sync.Once
	done    chan struct{}
	granted bool
}

func newHandle(permission string) *Handle {
	return &Handle{
		id:         uuid.NewString(),
		permission: permission,
		createdAt:  time.Now().UTC(),
		done:       make(chan struct{}),
	}
}

func (h *Handle) ID() string {
	return h.id
}

func (h *Handle) Permission() string {
	return h.permission
}

func (h *Handle) CreatedAt() time.Time {
	return h.createdAt
}

// Complete delivers the decision. It reports false if the handle was already
// completed, in which case granted is ignored.
func (h *Handle) Complete(granted bool) bool {
	completed := false
	h.once.Do(func() {
		h.granted = granted
		close(h.done)
		completed = true
	})
	return completed
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State is NotDetermined until the handle completes.
func (h *Handle) State() State {
	select {
	case <-h.done:
		if h.granted {
			return Granted
		}
		return Denied
	default:
		return NotDetermined
	}
}
