package nav

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/clinic-console/pkg/logger"
)

// Section is one activatable dashboard section. Load is invoked on
// activation with a context that is cancelled when another section takes
// over.
type Section struct {
	ID   string
	Load func(ctx context.Context)
}

// Switch keeps exactly one section active at a time and cancels the
// superseded section's in-flight fetch. At most one cancellable fetch is
// outstanding.
type Switch struct {
	mu        sync.Mutex
	base      context.Context
	sections  map[string]Section
	active    string
	activeCtx context.Context
	cancel    context.CancelFunc
	logger    *logger.Logger
}

func NewSwitch(base context.Context, log *logger.Logger) *Switch {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Switch{
		base:     base,
		sections: map[string]Section{},
		logger:   log,
	}
}

func (s *Switch) Register(section Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[section.ID] = section
}

// Activate marks the section active, aborts the superseded section's fetch
// and triggers the new section's load (cache-hit or network path).
// Re-activating the already-active section leaves its in-flight fetch alone.
func (s *Switch) Activate(id string) error {
	s.mu.Lock()
	section, ok := s.sections[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown section %q", id)
	}

	same := id == s.active
	if !same && s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.activeCtx = nil
	}
	s.active = id

	var ctx context.Context
	if section.Load != nil {
		if same && s.activeCtx != nil && s.activeCtx.Err() == nil {
			ctx = s.activeCtx
		} else {
			s.activeCtx, s.cancel = context.WithCancel(s.base)
			ctx = s.activeCtx
		}
	}
	s.mu.Unlock()

	s.logger.Debug("section activated", "section", id)
	if section.Load != nil {
		section.Load(ctx)
	}
	return nil
}

// Active returns the currently active section id.
func (s *Switch) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
