package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pdrpinto/robotroute/config"
	"github.com/pdrpinto/robotroute/render"
)

// app carries what the root command resolves for its subcommands.
type app struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
	trace      bool
	flags      scenarioFlags

	stdout io.Writer
	stderr io.Writer

	scenario        config.Scenario
	logger          *slog.Logger
	shutdownTracing func(context.Context) error
}

// scenarioFlags override the loaded scenario when set on the command line.
type scenarioFlags struct {
	order         int
	start         string
	goal          string
	direction     string
	strategy      string
	heuristic     string
	workers       int
	maxExpansions int
	maxDepth      int
	timeout       time.Duration
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "robotroute",
		Short: "Plan routes for a robot on a walled grid",
		Long: `robotroute builds a square grid with an outer wall and two inner
wall segments, then searches for a route between two free cells using
uninformed or heuristic search.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&a.configPath, "config", "c", "", "scenario YAML file")
	persistent.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment is read")
	persistent.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	persistent.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")
	persistent.BoolVar(&a.trace, "trace", false, "print trace spans to stderr")

	persistent.IntVar(&a.flags.order, "order", 0, "grid order")
	persistent.StringVar(&a.flags.start, "start", "", "start cell as x,y")
	persistent.StringVar(&a.flags.goal, "goal", "", "goal cell as x,y")
	persistent.StringVar(&a.flags.direction, "direction", "", "initial heading (compass name or angle)")
	persistent.StringVarP(&a.flags.strategy, "strategy", "s", "", "search strategy (bfs, dfs, dls, ids, ucs, greedy, astar)")
	persistent.StringVar(&a.flags.heuristic, "heuristic", "", "heuristic for greedy and astar (manhattan, euclidean, chebyshev, none)")
	persistent.IntVar(&a.flags.workers, "workers", 0, "expansion workers for best-first strategies")
	persistent.IntVar(&a.flags.maxExpansions, "max-expansions", 0, "stop after this many expansions (0 for no limit)")
	persistent.IntVar(&a.flags.maxDepth, "max-depth", 0, "depth limit for dls and ids")
	persistent.DurationVar(&a.flags.timeout, "timeout", 0, "search timeout")

	rootCmd.AddCommand(
		newSolveCommand(a),
		newRenderCommand(a),
		newCompareCommand(a),
		newServeCommand(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}
	scenario, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := a.flags.apply(cmd, &scenario); err != nil {
		return err
	}
	if a.logLevel != "" {
		scenario.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		scenario.Log.Format = a.logFormat
	}
	if err := scenario.Validate(); err != nil {
		return err
	}
	a.scenario = scenario

	logger, err := newLogger(scenario.Log, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if a.trace {
		shutdown, err := setupTracing(a.stderr)
		if err != nil {
			return err
		}
		a.shutdownTracing = shutdown
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.shutdownTracing == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	return a.shutdownTracing(ctx)
}

// searchContext bounds a search by the scenario timeout.
func (a *app) searchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if a.scenario.Search.Timeout > 0 {
		return context.WithTimeout(parent, a.scenario.Search.Timeout)
	}
	return context.WithCancel(parent)
}

func (flags scenarioFlags) apply(cmd *cobra.Command, scenario *config.Scenario) error {
	changed := cmd.Flags().Changed
	if changed("order") {
		scenario.Order = flags.order
	}
	if changed("start") {
		location, err := config.ParseLocation(flags.start)
		if err != nil {
			return err
		}
		scenario.Start = location
	}
	if changed("goal") {
		location, err := config.ParseLocation(flags.goal)
		if err != nil {
			return err
		}
		scenario.Goal = location
	}
	if changed("direction") {
		scenario.InitialDirection = flags.direction
	}
	if changed("strategy") {
		scenario.Strategy = flags.strategy
	}
	if changed("heuristic") {
		scenario.Heuristic = flags.heuristic
	}
	if changed("workers") {
		scenario.Search.Workers = flags.workers
	}
	if changed("max-expansions") {
		scenario.Search.MaxExpansions = flags.maxExpansions
	}
	if changed("max-depth") {
		scenario.Search.MaxDepth = flags.maxDepth
	}
	if changed("timeout") {
		scenario.Search.Timeout = flags.timeout
	}
	return nil
}

func newLogger(logConfig config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if logConfig.Level != "" {
		if err := level.UnmarshalText([]byte(logConfig.Level)); err != nil {
			return nil, fmt.Errorf("%w: log level %q", config.ErrInvalidScenario, logConfig.Level)
		}
	}
	handlerOptions := &slog.HandlerOptions{Level: level}
	switch logConfig.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOptions)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOptions)), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", config.ErrInvalidScenario, logConfig.Format)
	}
}

func setupTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// styled reports whether w is a terminal that should get colors.
func styled(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && render.ShouldStyle(file)
}
