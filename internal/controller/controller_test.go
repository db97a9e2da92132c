package controller

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nullNav struct{}

func (nullNav) Goto(session.Page) {}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.FatalLevel, Output: io.Discard})
}

// renderRecorder captures section renders emitted by controllers, which may
// arrive from fetch goroutines.
type renderRecorder struct {
	mu      sync.Mutex
	renders []Render
}

func (r *renderRecorder) sink(render Render) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, render)
}

func (r *renderRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.renders)
}

func (r *renderRecorder) last() Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.renders) == 0 {
		return Render{}
	}
	return r.renders[len(r.renders)-1]
}

func (r *renderRecorder) at(i int) Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders[i]
}

func (r *renderRecorder) waitCount(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.count() >= n }, 2*time.Second, 5*time.Millisecond)
}

func newTestAPI(t *testing.T, handler http.Handler) (*apiclient.Client, *notifier.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.New(session.NewMemStore())
	require.NoError(t, sess.SetCredentials("tok", nil))
	notifs := notifier.NewRecorder()
	api := apiclient.New(server.URL, 5*time.Second, sess, nullNav{}, notifs, testLogger())
	return api, notifs
}

func testResourceConfig(name string, pageSize int) cache.Config {
	return cache.Config{
		Name:         name,
		PageSize:     pageSize,
		FetchTimeout: 5 * time.Second,
		Logger:       testLogger(),
	}
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
