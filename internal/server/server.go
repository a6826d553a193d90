package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/core"
	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/driver"
	"github.com/bionetlab/interactome/internal/logger"
)

// Build run states reported by the API.
const (
	runStateRunning = "running"
	runStateDone    = "done"
	runStateFailed  = "failed"
)

// buildRun is one pipeline execution. The pipeline pointer stays attached so
// the status endpoint can report per-source progress while the run is live.
type buildRun struct {
	ID      string       `json:"id"`
	State   string       `json:"state"`
	Started time.Time    `json:"started"`
	Result  *core.Result `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`

	pipeline *core.Pipeline
}

// Server exposes the build pipeline over HTTP. One build runs at a time;
// finished runs stay queryable by id for the lifetime of the process.
type Server struct {
	cfg *config.Config
	log *logger.Logger

	mu      sync.Mutex
	current *buildRun
	runs    map[string]*buildRun
}

// NewServer builds the API server from the config file named by CONFIG_PATH
// (default config/config.toml), with environment overrides applied.
func NewServer() (*Server, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}
	return New(cfg, log), nil
}

// New wires a server around an explicit configuration.
func New(cfg *config.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		cfg:  cfg,
		log:  log,
		runs: make(map[string]*buildRun),
	}
}

func applyEnv(cfg *config.Config) {
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}
	if v := os.Getenv("PIPELINE_ORGANISM"); v != "" {
		cfg.Pipeline.Organism = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/v1/builds", s.StartBuild)
	r.GET("/v1/builds/:id", s.GetBuild)
	r.POST("/v1/export", s.Export)

	return r
}

// Port returns the configured listen port, defaulting to 8080.
func (s *Server) Port() string {
	if s.cfg.Server.Port != "" {
		return s.cfg.Server.Port
	}
	return "8080"
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BuildRequest optionally narrows one run without touching the server
// configuration. LoadGraph publishes the finished build into Memgraph.
type BuildRequest struct {
	Sources   []string `json:"sources"`
	Organism  string   `json:"organism"`
	LoadGraph bool     `json:"load_graph"`
}

func (s *Server) StartBuild(c *gin.Context) {
	var req BuildRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	cfg := *s.cfg
	if len(req.Sources) > 0 {
		cfg.Pipeline.Sources = req.Sources
	}
	if req.Organism != "" {
		cfg.Pipeline.Organism = req.Organism
		cfg.UniProt.Organism = req.Organism
	}

	s.mu.Lock()
	if s.current != nil && s.current.State == runStateRunning {
		id := s.current.ID
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "A build is already running", "id": id})
		return
	}

	run := &buildRun{
		ID:       uuid.NewString(),
		State:    runStateRunning,
		Started:  time.Now(),
		pipeline: core.NewPipeline(&cfg, s.log),
	}
	s.current = run
	s.runs[run.ID] = run
	s.mu.Unlock()

	s.log.Info("build started", "id", run.ID, "sources", cfg.Pipeline.Sources)
	go s.execute(run, req.LoadGraph)

	c.JSON(http.StatusAccepted, gin.H{"id": run.ID, "state": run.State})
}

func (s *Server) execute(run *buildRun, load bool) {
	ctx := context.Background()

	res, err := run.pipeline.Run(ctx)
	if err == nil && load {
		err = s.loadGraph(ctx, run.pipeline)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run.Result = res
	if err != nil {
		run.State = runStateFailed
		run.Error = err.Error()
		s.log.Error("build failed", "id", run.ID, "error", err)
		return
	}
	run.State = runStateDone
}

func (s *Server) loadGraph(ctx context.Context, p *core.Pipeline) error {
	d, err := s.graphDriver()
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	return p.Load(ctx, d)
}

func (s *Server) graphDriver() (driver.GraphDriver, error) {
	uri := s.cfg.Memgraph.URI
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	return driver.NewMemgraphDriver(uri, s.cfg.Memgraph.User, s.cfg.Memgraph.Password, s.cfg.Memgraph.BatchSize, s.log)
}

func (s *Server) GetBuild(c *gin.Context) {
	s.mu.Lock()
	run, ok := s.runs[c.Param("id")]
	var snapshot buildRun
	if ok {
		snapshot = *run
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown build"})
		return
	}

	resp := gin.H{
		"id":      snapshot.ID,
		"state":   snapshot.State,
		"started": snapshot.Started,
		"sources": snapshot.pipeline.Statuses(),
		"result":  snapshot.Result,
	}
	if snapshot.Error != "" {
		resp["error"] = snapshot.Error
	}
	c.JSON(http.StatusOK, resp)
}

// ExportRequest optionally redirects the CSV output directory.
type ExportRequest struct {
	Dir string `json:"dir"`
}

func (s *Server) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	s.mu.Lock()
	run := s.current
	running := run != nil && run.State == runStateRunning
	s.mu.Unlock()

	if run == nil || running {
		c.JSON(http.StatusConflict, gin.H{"error": "No completed build to export"})
		return
	}
	if req.Dir != "" {
		run.pipeline.Config.Export.Dir = req.Dir
	}

	files, err := run.pipeline.Export()
	if err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
