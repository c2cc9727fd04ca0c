// Package agent exposes a small ops API from inside the web container:
// health of the startup sequence, current phase, and an entrypoint log
// tail. It answers while the sequencer is still working, which the web
// application itself cannot do.
package agent

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minitweet/tweetstack/internal/sequence"
)

// Entrypoint phases reported by the tracker.
const (
	PhaseWaitingDB     = "waiting-db"
	PhaseMigrating     = "migrating"
	PhaseProvisioning  = "provisioning"
	PhaseCollectStatic = "collect-static"
	PhaseServing       = "serving"
	PhaseFailed        = "failed"
)

// Tracker records the entrypoint's progress for the agent to report.
type Tracker struct {
	mu        sync.RWMutex
	phase     string
	lastError string
	startedAt time.Time
}

// NewTracker creates a Tracker in the waiting-db phase.
func NewTracker() *Tracker {
	return &Tracker{phase: PhaseWaitingDB, startedAt: time.Now()}
}

// SetPhase advances the tracker to a new phase.
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = phase
}

// Fail marks the entrypoint as failed.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseFailed
	t.lastError = err.Error()
}

// Snapshot returns the current phase, last error, and start time.
func (t *Tracker) Snapshot() (phase, lastError string, startedAt time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase, t.lastError, t.startedAt
}

// Server is the agent HTTP server.
type Server struct {
	tracker *Tracker
	secret  string
	logger  *slog.Logger

	mu      sync.Mutex
	logTail []byte
}

// maxTailBytes bounds the in-memory log tail.
const maxTailBytes = 64 * 1024

// NewServer creates an agent Server. When lw is non-nil the server keeps
// a bounded tail of everything written to it.
func NewServer(tracker *Tracker, secret string, lw *sequence.LogWriter, logger *slog.Logger) *Server {
	s := &Server{tracker: tracker, secret: secret, logger: logger}
	if lw != nil {
		ch := lw.Subscribe()
		go func() {
			for data := range ch {
				s.appendTail(data)
			}
		}()
	}
	return s
}

func (s *Server) appendTail(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logTail = append(s.logTail, data...)
	if len(s.logTail) > maxTailBytes {
		s.logTail = s.logTail[len(s.logTail)-maxTailBytes:]
	}
}

// Router builds the gin engine with all agent routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/healthz", s.handleHealthz)

	protected := r.Group("", Middleware(s.secret))
	protected.GET("/status", s.handleStatus)
	protected.GET("/logs", s.handleLogs)

	return r
}

// Run serves the agent API until the process exits.
func (s *Server) Run(addr string) error {
	s.logger.Info("ops agent listening", "addr", addr)
	return s.Router().Run(addr)
}

// handleHealthz reports 200 once the server process is running and 503
// while the startup sequence is still in progress or has failed.
func (s *Server) handleHealthz(c *gin.Context) {
	phase, lastError, _ := s.tracker.Snapshot()
	if phase == PhaseServing {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "phase": phase})
		return
	}
	code := http.StatusServiceUnavailable
	c.JSON(code, gin.H{"status": "starting", "phase": phase, "error": lastError})
}

func (s *Server) handleStatus(c *gin.Context) {
	phase, lastError, startedAt := s.tracker.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"phase":      phase,
		"last_error": lastError,
		"started_at": startedAt.UTC().Format(time.RFC3339),
		"uptime":     time.Since(startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleLogs(c *gin.Context) {
	s.mu.Lock()
	tail := make([]byte, len(s.logTail))
	copy(tail, s.logTail)
	s.mu.Unlock()
	c.Data(http.StatusOK, "text/plain; charset=utf-8", tail)
}
