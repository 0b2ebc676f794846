package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Strategy names a search algorithm.
type Strategy string

const (
	BreadthFirstStrategy       Strategy = "bfs"
	DepthFirstStrategy         Strategy = "dfs"
	DepthLimitedStrategy       Strategy = "dls"
	IterativeDeepeningStrategy Strategy = "ids"
	UniformCostStrategy        Strategy = "ucs"
	GreedyStrategy             Strategy = "greedy"
	AStarStrategy              Strategy = "astar"
)

var strategyAliases = map[string]Strategy{
	"bfs":                 BreadthFirstStrategy,
	"breadth-first":       BreadthFirstStrategy,
	"dfs":                 DepthFirstStrategy,
	"depth-first":         DepthFirstStrategy,
	"dls":                 DepthLimitedStrategy,
	"depth-limited":       DepthLimitedStrategy,
	"ids":                 IterativeDeepeningStrategy,
	"iterative-deepening": IterativeDeepeningStrategy,
	"ucs":                 UniformCostStrategy,
	"uniform-cost":        UniformCostStrategy,
	"greedy":              GreedyStrategy,
	"greedy-best-first":   GreedyStrategy,
	"astar":               AStarStrategy,
	"a*":                  AStarStrategy,
}

// Strategies lists every strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		BreadthFirstStrategy,
		DepthFirstStrategy,
		DepthLimitedStrategy,
		IterativeDeepeningStrategy,
		UniformCostStrategy,
		GreedyStrategy,
		AStarStrategy,
	}
}

// ParseStrategy accepts the short names and their long aliases.
func ParseStrategy(name string) (Strategy, error) {
	if strategy, ok := strategyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return strategy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Informed reports whether the strategy needs a heuristic.
func (strategy Strategy) Informed() bool {
	return strategy == GreedyStrategy || strategy == AStarStrategy
}

var tracer = otel.Tracer("robotroute.search")

var (
	searchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robotroute_search_runs_total",
		Help: "Total searches by strategy and outcome",
	}, []string{"strategy", "result"})

	searchExpandedNodes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "robotroute_search_expanded_nodes",
		Help:    "Nodes expanded per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"strategy"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "robotroute_search_duration_seconds",
		Help:    "Search duration",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
	}, []string{"strategy"})
)

// Run dispatches to the algorithm named by strategy, inside a trace span and
// with its outcome recorded in the package metrics. heuristic may be nil for
// uninformed strategies. DepthLimitedStrategy uses the MaxDepth option as its
// limit.
func Run[StateType any, ActionType any, KeyType comparable](
	parentContext context.Context,
	strategy Strategy,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	contextObject, span := tracer.Start(parentContext, "search.Run",
		trace.WithAttributes(attribute.String("search.strategy", string(strategy))))
	defer span.End()

	searchOptions := applyOptions(options)
	started := time.Now()

	var (
		result Result[StateType, ActionType]
		err    error
	)
	switch strategy {
	case BreadthFirstStrategy:
		result, err = BreadthFirst(contextObject, problem, options...)
	case DepthFirstStrategy:
		result, err = DepthFirst(contextObject, problem, options...)
	case DepthLimitedStrategy:
		result, err = DepthLimited(contextObject, problem, searchOptions.MaxDepth, options...)
	case IterativeDeepeningStrategy:
		result, err = IterativeDeepening(contextObject, problem, options...)
	case UniformCostStrategy:
		result, err = UniformCost(contextObject, problem, options...)
	case GreedyStrategy:
		result, err = Greedy(contextObject, problem, heuristic, options...)
	case AStarStrategy:
		result, err = AStar(contextObject, problem, heuristic, options...)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	elapsed := time.Since(started)
	outcome := outcomeLabel(err)
	searchRunsTotal.WithLabelValues(string(strategy), outcome).Inc()
	searchExpandedNodes.WithLabelValues(string(strategy)).Observe(float64(result.ExpandedNodes))
	searchDuration.WithLabelValues(string(strategy)).Observe(elapsed.Seconds())

	span.SetAttributes(
		attribute.Int("search.expanded_nodes", result.ExpandedNodes),
		attribute.Int("search.solution_length", len(result.Actions)),
		attribute.String("search.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	searchOptions.Logger.Info("search finished",
		"strategy", strategy,
		"outcome", outcome,
		"expanded", result.ExpandedNodes,
		"length", len(result.Actions),
		"cost", result.TotalCost,
		"elapsed", elapsed)
	return result, err
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNoSolution):
		return "no_solution"
	case errors.Is(err, ErrCutoff):
		return "cutoff"
	case errors.Is(err, ErrBudgetExceeded):
		return "budget"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
