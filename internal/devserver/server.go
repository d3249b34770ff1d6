// Package devserver is a local stand-in for the Ferroscope monitoring API.
//
// It serves every endpoint of the backend contract under /view, issues
// HS256 session tokens from user_login and rejects other requests without a
// valid token. Telemetry is synthetic but deterministic: a reading depends
// only on the node and the sample slot it falls in, so repeated requests
// within one slot agree.
package devserver

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/logger"
)

// BasePath is where the API is mounted.
const BasePath = "/view"

const (
	DefaultUsername   = "admin"
	DefaultPassword   = "admin"
	DefaultTokenTTL   = 12 * time.Hour
	DefaultHistoryLen = 30
	DefaultStep       = 10 * time.Second
)

// DefaultNodes is the fleet served when none is configured.
var DefaultNodes = []api.Node{
	{ID: 1, Name: "edge-01"},
	{ID: 2, Name: "edge-02"},
	{ID: 3, Name: "db-01"},
	{ID: 4, Name: "cache-01"},
}

// Options configures a Server. Zero values take the defaults above.
type Options struct {
	Username string
	Password string

	// Secret signs session tokens. Empty generates a random secret, which
	// invalidates all tokens on restart.
	Secret   []byte
	TokenTTL time.Duration

	Nodes []api.Node

	// HistoryLen is the number of points in cpu_stat and ram_stat.
	HistoryLen int
	// Step is the spacing between synthetic samples.
	Step time.Duration

	Now    func() time.Time
	Logger logger.Logger
}

// Server is the development backend.
type Server struct {
	app    *fiber.App
	opts   Options
	tokens *tokenIssuer
	gen    *generator
	log    logger.Logger
}

// New builds a server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.Nodes == nil {
		opts.Nodes = DefaultNodes
	}
	if opts.HistoryLen <= 0 {
		opts.HistoryLen = DefaultHistoryLen
	}
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[devserver]")
	}
	if len(opts.Secret) == 0 {
		opts.Secret = make([]byte, 32)
		if _, err := rand.Read(opts.Secret); err != nil {
			return nil, err
		}
	}

	s := &Server{
		opts:   opts,
		tokens: &tokenIssuer{secret: opts.Secret, ttl: opts.TokenTTL, now: opts.Now},
		gen:    newGenerator(opts.Nodes, opts.HistoryLen, opts.Step, opts.Now()),
		log:    opts.Logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "ferro devserver",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestID)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	view := s.app.Group(BasePath)
	view.Post("/"+api.EndpointLogin, s.login)

	protected := map[string]fiber.Handler{
		api.EndpointNodeList:      s.nodeList,
		api.EndpointLatestCPU:     s.latestCPU,
		api.EndpointLatestRAM:     s.latestRAM,
		api.EndpointCPUStat:       s.cpuStat,
		api.EndpointRAMStat:       s.ramStat,
		api.EndpointNodeInfo:      s.nodeInfo,
		api.EndpointServiceStatus: s.serviceStatus,
		api.EndpointNodeServices:  s.nodeServices,
	}
	for endpoint, handler := range protected {
		view.Post("/"+endpoint, s.requireToken, handler)
	}
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// IssueToken signs a session token for username.
func (s *Server) IssueToken(username string) (string, error) {
	return s.tokens.issue(username)
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()

	s.log.Info("serving %s%s for %d nodes (login %s)", addr, BasePath, len(s.opts.Nodes), s.opts.Username)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

// requestID echoes the caller's X-Request-ID or assigns one.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(api.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(api.RequestIDHeader, id)
	c.Locals("request_id", id)

	err := c.Next()
	s.log.Debug("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), id)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request %v failed: %v", c.Locals("request_id"), err)
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
