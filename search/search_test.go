package search

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct {
	to   string
	cost float64
}

// graphProblem is a small weighted digraph whose actions are the names of the
// nodes to move to.
type graphProblem struct {
	start string
	goal  string
	edges map[string][]edge
}

func (problem graphProblem) Initial() string { return problem.start }

func (problem graphProblem) Actions(state string) []string {
	actions := make([]string, 0, len(problem.edges[state]))
	for _, e := range problem.edges[state] {
		actions = append(actions, e.to)
	}
	return actions
}

func (problem graphProblem) Result(_ string, action string) string { return action }
func (problem graphProblem) GoalTest(state string) bool            { return state == problem.goal }
func (problem graphProblem) Key(state string) string               { return state }

func (problem graphProblem) StepCost(from string, action string, _ string) float64 {
	for _, e := range problem.edges[from] {
		if e.to == action {
			return e.cost
		}
	}
	return 0
}

func diamond(goal string) graphProblem {
	return graphProblem{
		start: "A",
		goal:  goal,
		edges: map[string][]edge{
			"A": {{"B", 1}, {"C", 4}},
			"B": {{"C", 1}, {"D", 5}},
			"C": {{"D", 1}},
		},
	}
}

func TestBreadthFirst_FewestEdges(t *testing.T) {
	result, err := BreadthFirst(context.Background(), diamond("D"))
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, []string{"B", "D"}, result.Actions)
	assert.Equal(t, []string{"A", "B", "D"}, result.States)
	assert.Equal(t, 6.0, result.TotalCost)
	assert.Equal(t, 2, result.ExpandedNodes)
}

func TestBreadthFirst_StartIsGoal(t *testing.T) {
	result, err := BreadthFirst(context.Background(), diamond("A"))
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Empty(t, result.Actions)
	assert.Equal(t, []string{"A"}, result.States)
}

func TestDepthFirst(t *testing.T) {
	result, err := DepthFirst(context.Background(), diamond("D"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, result.Actions)
}

func TestUniformCost_Cheapest(t *testing.T) {
	result, err := UniformCost(context.Background(), diamond("D"), WithWorkers(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "D"}, result.Actions)
	assert.Equal(t, 3.0, result.TotalCost)
}

func TestAStar_ZeroHeuristicMatchesUniformCost(t *testing.T) {
	zero := func(string) float64 { return 0 }
	result, err := AStar(context.Background(), diamond("D"), zero, WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "D"}, result.Actions)
	assert.Equal(t, 3.0, result.TotalCost)
}

func TestGreedy_FollowsHeuristic(t *testing.T) {
	estimate := map[string]float64{"A": 3, "B": 2, "C": 1, "D": 0}
	result, err := Greedy(context.Background(), diamond("D"), func(state string) float64 { return estimate[state] })
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "D"}, result.Actions)
	assert.Equal(t, 5.0, result.TotalCost)
}

func TestInformed_RequireHeuristic(t *testing.T) {
	_, err := AStar[string, string, string](context.Background(), diamond("D"), nil)
	assert.ErrorIs(t, err, ErrMissingHeuristic)

	_, err = Greedy[string, string, string](context.Background(), diamond("D"), nil)
	assert.ErrorIs(t, err, ErrMissingHeuristic)
}

func TestBestFirst_WorkersDoNotChangeResult(t *testing.T) {
	estimate := func(state string) float64 { return map[string]float64{"A": 2, "B": 1, "C": 1}[state] }

	single, err := AStar(context.Background(), diamond("D"), estimate, WithWorkers(1))
	require.NoError(t, err)
	for _, workers := range []int{2, 4, 16} {
		parallel, err := AStar(context.Background(), diamond("D"), estimate, WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, single, parallel, "workers=%d", workers)
	}
}

func TestDepthLimited(t *testing.T) {
	_, err := DepthLimited(context.Background(), diamond("D"), 1)
	assert.ErrorIs(t, err, ErrCutoff)

	result, err := DepthLimited(context.Background(), diamond("D"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, result.Actions)
}

func TestIterativeDeepening_Shallowest(t *testing.T) {
	result, err := IterativeDeepening(context.Background(), diamond("D"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, result.Actions)

	_, err = IterativeDeepening(context.Background(), diamond("D"), WithMaxDepth(1))
	assert.ErrorIs(t, err, ErrCutoff)
}

func TestUnreachableGoal(t *testing.T) {
	problem := diamond("E")
	ctx := context.Background()

	_, err := BreadthFirst(ctx, problem)
	assert.ErrorIs(t, err, ErrNoSolution)
	_, err = DepthFirst(ctx, problem)
	assert.ErrorIs(t, err, ErrNoSolution)
	_, err = UniformCost(ctx, problem)
	assert.ErrorIs(t, err, ErrNoSolution)
	_, err = DepthLimited(ctx, problem, 10)
	assert.ErrorIs(t, err, ErrNoSolution)
	_, err = IterativeDeepening(ctx, problem)
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestBudgetExceeded(t *testing.T) {
	result, err := BreadthFirst(context.Background(), diamond("D"), WithMaxExpansions(1))
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.False(t, result.Found)
	assert.Equal(t, 1, result.ExpandedNodes)

	_, err = UniformCost(context.Background(), diamond("D"), WithMaxExpansions(1))
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, strategy := range Strategies() {
		_, err := Run(ctx, strategy, diamond("D"), func(string) float64 { return 0 })
		assert.ErrorIs(t, err, context.Canceled, string(strategy))
	}
}

func TestParseStrategy(t *testing.T) {
	for _, strategy := range Strategies() {
		parsed, err := ParseStrategy(string(strategy))
		require.NoError(t, err)
		assert.Equal(t, strategy, parsed)
	}

	parsed, err := ParseStrategy(" Breadth-First ")
	require.NoError(t, err)
	assert.Equal(t, BreadthFirstStrategy, parsed)

	_, err = ParseStrategy("beam")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	assert.True(t, AStarStrategy.Informed())
	assert.False(t, BreadthFirstStrategy.Informed())
}

func TestRun_RecordsMetrics(t *testing.T) {
	counter := searchRunsTotal.WithLabelValues(string(UniformCostStrategy), "found")
	before := testutil.ToFloat64(counter)

	result, err := Run(context.Background(), UniformCostStrategy, diamond("D"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.TotalCost)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	_, err = Run(context.Background(), Strategy("beam"), diamond("D"), nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStepper(t *testing.T) {
	stepper, err := NewStepper(context.Background(), diamond("D"), func(node *Node[string, string]) float64 {
		return node.PathCost
	}, WithWorkers(2))
	require.NoError(t, err)
	defer stepper.Close()

	var visited []string
	var snapshot StepSnapshot[string, string, string]
	for i := 0; i < 10 && !stepper.Done(); i++ {
		var err error
		snapshot, err = stepper.Step()
		require.NoError(t, err)
		require.True(t, snapshot.HasCurrent)
		visited = append(visited, snapshot.Current)
	}

	assert.Equal(t, []string{"A", "B", "C", "D"}, visited)
	assert.True(t, snapshot.Done)
	assert.True(t, snapshot.Found)
	assert.Equal(t, []string{"A", "B", "C", "D"}, snapshot.Path)
	assert.Equal(t, []string{"B", "C", "D"}, snapshot.Actions)
	assert.Equal(t, 4, snapshot.StepIndex)
	assert.Equal(t, 3, snapshot.ExpandedNodes)
	assert.True(t, snapshot.Closed["C"])

	again, err := stepper.Step()
	require.NoError(t, err)
	assert.True(t, again.Done)
	assert.Equal(t, 4, again.StepIndex)
}

func TestStepper_RequiresHeuristic(t *testing.T) {
	stepper, err := NewAStarStepper[string, string, string](context.Background(), diamond("D"), nil)
	assert.ErrorIs(t, err, ErrMissingHeuristic)
	assert.Nil(t, stepper)

	_, err = NewStepper[string, string, string](context.Background(), diamond("D"), nil)
	assert.ErrorIs(t, err, ErrMissingHeuristic)
}

func TestNewStrategyStepper(t *testing.T) {
	estimate := map[string]float64{"A": 3, "B": 2, "C": 1, "D": 0}
	heuristic := func(state string) float64 { return estimate[state] }

	expected := map[Strategy][]string{
		UniformCostStrategy: {"B", "C", "D"},
		GreedyStrategy:      {"C", "D"},
		AStarStrategy:       {"B", "C", "D"},
	}
	for strategy, actions := range expected {
		stepper, err := NewStrategyStepper(context.Background(), strategy, diamond("D"), heuristic, WithWorkers(1))
		require.NoError(t, err, string(strategy))

		var snapshot StepSnapshot[string, string, string]
		for i := 0; i < 10 && !stepper.Done(); i++ {
			snapshot, err = stepper.Step()
			require.NoError(t, err)
		}
		stepper.Close()
		assert.Equal(t, actions, snapshot.Actions, string(strategy))
	}

	_, err := NewStrategyStepper(context.Background(), BreadthFirstStrategy, diamond("D"), heuristic)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	_, err = NewStrategyStepper[string, string, string](context.Background(), GreedyStrategy, diamond("D"), nil)
	assert.ErrorIs(t, err, ErrMissingHeuristic)
}

func TestStepper_Exhausted(t *testing.T) {
	stepper, err := NewAStarStepper(context.Background(), diamond("E"), func(string) float64 { return 0 }, WithWorkers(1))
	require.NoError(t, err)
	defer stepper.Close()

	var snapshot StepSnapshot[string, string, string]
	for i := 0; i < 10 && !stepper.Done(); i++ {
		var err error
		snapshot, err = stepper.Step()
		require.NoError(t, err)
	}
	assert.True(t, snapshot.Done)
	assert.False(t, snapshot.Found)
	assert.Empty(t, snapshot.Open)
}
