// Package server exposes route search over HTTP: one-shot solving and a
// websocket that steps a best-first search (ucs, greedy or A*) for
// visualizers.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pdrpinto/robotroute"
	"github.com/pdrpinto/robotroute/config"
	"github.com/pdrpinto/robotroute/search"
)

const requestIDHeader = "X-Request-ID"

// Server serves the HTTP API. Defaults fill every field a request omits.
type Server struct {
	defaults config.Scenario
	logger   *slog.Logger
	engine   *gin.Engine
}

// New builds the router.
func New(defaults config.Scenario, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware("robotroute"), requestID())

	s := &Server{defaults: defaults, logger: logger, engine: engine}

	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	v1.GET("/grid", s.handleGrid)
	v1.POST("/solve", s.handleSolve)
	v1.GET("/step", s.handleStep)
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// --- Grid ---

type gridResponse struct {
	Order     int                      `json:"order"`
	Fractions robotroute.WallFractions `json:"fractions"`
	Walls     [][2]int                 `json:"walls"`
	Text      string                   `json:"text"`
}

func (s *Server) handleGrid(c *gin.Context) {
	var request gridRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scenario := request.apply(s.defaults)
	grid, err := robotroute.NewGrid(scenario.Order, scenario.Walls)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gridResponse{
		Order:     grid.Order(),
		Fractions: grid.Fractions(),
		Walls:     wallList(grid),
		Text:      grid.String(),
	})
}

type gridRequest struct {
	Order int     `form:"order" binding:"omitempty,gte=3,lte=512"`
	Left  float64 `form:"left" binding:"omitempty,gt=0,lt=1"`
	Span  float64 `form:"span" binding:"omitempty,gt=0,lt=1"`
}

func (request gridRequest) apply(defaults config.Scenario) config.Scenario {
	scenario := defaults
	if request.Order != 0 {
		scenario.Order = request.Order
	}
	if request.Left != 0 {
		scenario.Walls.Left = request.Left
	}
	if request.Span != 0 {
		scenario.Walls.Span = request.Span
	}
	return scenario
}

func wallList(grid *robotroute.Grid) [][2]int {
	walls := make([][2]int, 0, grid.Order()*4)
	for y := 0; y < grid.Order(); y++ {
		for x := 0; x < grid.Order(); x++ {
			if grid.IsWall(x, y) {
				walls = append(walls, [2]int{x, y})
			}
		}
	}
	return walls
}

// --- Solve ---

// SolveRequest overrides parts of the server's default scenario.
type SolveRequest struct {
	Order         int                       `json:"order,omitempty" binding:"omitempty,gte=3,lte=512"`
	Walls         *robotroute.WallFractions `json:"walls,omitempty"`
	Start         *robotroute.Location      `json:"start,omitempty"`
	Goal          *robotroute.Location      `json:"goal,omitempty"`
	Strategy      string                    `json:"strategy,omitempty"`
	Heuristic     string                    `json:"heuristic,omitempty"`
	MaxExpansions int                       `json:"max_expansions,omitempty" binding:"omitempty,gte=0"`
}

func (request SolveRequest) apply(defaults config.Scenario) (config.Scenario, error) {
	scenario := defaults
	if request.Order != 0 {
		scenario.Order = request.Order
	}
	if request.Walls != nil {
		scenario.Walls = *request.Walls
	}
	if request.Start != nil {
		scenario.Start = *request.Start
	}
	if request.Goal != nil {
		scenario.Goal = *request.Goal
	}
	if request.Strategy != "" {
		scenario.Strategy = request.Strategy
	}
	if request.Heuristic != "" {
		scenario.Heuristic = request.Heuristic
	}
	if request.MaxExpansions != 0 {
		scenario.Search.MaxExpansions = request.MaxExpansions
	}
	return scenario, scenario.Validate()
}

// SolveResponse reports one search.
type SolveResponse struct {
	RequestID string   `json:"request_id"`
	Strategy  string   `json:"strategy"`
	Heuristic string   `json:"heuristic,omitempty"`
	Found     bool     `json:"found"`
	Actions   []int    `json:"actions"`
	Moves     []string `json:"moves"`
	Path      [][2]int `json:"path"`
	Cost      float64  `json:"cost"`
	Expanded  int      `json:"expanded"`
	Error     string   `json:"error,omitempty"`
}

func (s *Server) handleSolve(c *gin.Context) {
	var request SolveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scenario, err := request.apply(s.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	problem, err := scenario.Build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	heuristic, err := problem.HeuristicByName(scenario.Heuristic)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if scenario.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scenario.Search.Timeout)
		defer cancel()
	}

	strategy := scenario.SearchStrategy()
	requestLogger := s.logger.With("request_id", c.GetString("request_id"))
	result, err := search.Run(ctx, strategy, problem, heuristic, scenario.SearchOptions(requestLogger)...)

	response := SolveResponse{
		RequestID: c.GetString("request_id"),
		Strategy:  string(strategy),
		Found:     result.Found,
		Actions:   make([]int, 0, len(result.Actions)),
		Moves:     make([]string, 0, len(result.Actions)),
		Path:      make([][2]int, 0, len(result.States)),
		Cost:      result.TotalCost,
		Expanded:  result.ExpandedNodes,
	}
	if strategy.Informed() {
		response.Heuristic = scenario.Heuristic
	}
	for _, action := range result.Actions {
		response.Actions = append(response.Actions, action.Angle())
		response.Moves = append(response.Moves, action.Name())
	}
	for _, state := range result.States {
		response.Path = append(response.Path, [2]int{state.X(), state.Y()})
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, response)
	case errors.Is(err, search.ErrNoSolution), errors.Is(err, search.ErrCutoff):
		response.Error = err.Error()
		c.JSON(http.StatusOK, response)
	case errors.Is(err, search.ErrBudgetExceeded), errors.Is(err, context.DeadlineExceeded):
		response.Error = err.Error()
		c.JSON(http.StatusUnprocessableEntity, response)
	default:
		response.Error = err.Error()
		c.JSON(http.StatusInternalServerError, response)
	}
}
