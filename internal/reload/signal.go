package reload

import (
	"context"
	"sync"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
)

// Broadcaster pushes a reload event to every connected client.
type Broadcaster interface {
	Broadcast(ctx context.Context) error
}

// Signal forwards reload requests to the currently attached Broadcaster.
// The zero value is ready to use.
type Signal struct {
	mu     sync.RWMutex
	target Broadcaster
}

// Attach makes b the receiver of reload requests and returns a function that
// detaches it again.
func (s *Signal) Attach(b Broadcaster) (detach func()) {
	s.mu.Lock()
	s.target = b
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		if s.target == b {
			s.target = nil
		}
		s.mu.Unlock()
	}
}

// Broadcast asks the attached Broadcaster to reload clients.
func (s *Signal) Broadcast(ctx context.Context) error {
	s.mu.RLock()
	target := s.target
	s.mu.RUnlock()

	if target == nil {
		ctxlog.FromContext(ctx).Debug("No dev server attached, reload skipped.")
		return nil
	}
	return target.Broadcast(ctx)
}
