package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdrpinto/robotroute"
	"github.com/pdrpinto/robotroute/render"
	"github.com/pdrpinto/robotroute/search"
)

func newSolveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "solve",
		Short: "Search for a route and draw it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			problem, err := a.scenario.Build()
			if err != nil {
				return err
			}
			heuristic, err := problem.HeuristicByName(a.scenario.Heuristic)
			if err != nil {
				return err
			}

			ctx, cancel := a.searchContext(cmd.Context())
			defer cancel()

			strategy := a.scenario.SearchStrategy()
			result, err := search.Run(ctx, strategy, problem, heuristic, a.scenario.SearchOptions(a.logger)...)
			if err != nil {
				return fmt.Errorf("%s search from %s to %s: %w", strategy, problem.Initial().Location(), problem.Goal(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "strategy  %s\n", strategy)
			if strategy.Informed() {
				fmt.Fprintf(out, "heuristic %s\n", a.scenario.Heuristic)
			}
			fmt.Fprintf(out, "moves     %s\n", render.Actions(result.Actions))
			fmt.Fprintf(out, "cost      %g\n", result.TotalCost)
			fmt.Fprintf(out, "expanded  %d\n\n", result.ExpandedNodes)

			start, goal := problem.Initial().Location(), problem.Goal()
			fmt.Fprint(out, render.Grid(problem.Grid(), render.Options{
				Route:  result.States,
				Start:  &start,
				Goal:   &goal,
				Styled: styled(out),
			}))
			return nil
		},
	}
}

func newRenderCommand(a *app) *cobra.Command {
	var explored bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the grid with its start and goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			problem, err := a.scenario.Build()
			if err != nil {
				return err
			}
			start, goal := problem.Initial().Location(), problem.Goal()
			options := render.Options{Start: &start, Goal: &goal, Styled: styled(cmd.OutOrStdout())}

			if explored {
				heuristic, err := problem.HeuristicByName(a.scenario.Heuristic)
				if err != nil {
					return err
				}
				ctx, cancel := a.searchContext(cmd.Context())
				defer cancel()
				closed, route, err := exploreAStar(ctx, problem, heuristic, a.scenario.SearchOptions(a.logger))
				if err != nil {
					return err
				}
				options.Explored = closed
				options.Route = route
			}

			fmt.Fprint(cmd.OutOrStdout(), render.Grid(problem.Grid(), options))
			return nil
		},
	}
	cmd.Flags().BoolVar(&explored, "explored", false, "step an A* search and mark the cells it closed")
	return cmd
}

// compareRow is one line of the compare table.
type compareRow struct {
	strategy search.Strategy
	result   search.Result[robotroute.Position, robotroute.Action]
	elapsed  time.Duration
	err      error
}

func newCompareCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Run every strategy on the scenario and tabulate the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			problem, err := a.scenario.Build()
			if err != nil {
				return err
			}
			heuristic, err := problem.HeuristicByName(a.scenario.Heuristic)
			if err != nil {
				return err
			}

			ctx, cancel := a.searchContext(cmd.Context())
			defer cancel()

			strategies := search.Strategies()
			rows := make([]compareRow, len(strategies))
			group, groupContext := errgroup.WithContext(ctx)
			for i, strategy := range strategies {
				group.Go(func() error {
					started := time.Now()
					result, err := search.Run(groupContext, strategy, problem, heuristic, a.scenario.SearchOptions(a.logger)...)
					rows[i] = compareRow{strategy: strategy, result: result, elapsed: time.Since(started), err: err}
					// only cancellation stops the other strategies
					return ctx.Err()
				})
			}
			if err := group.Wait(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), compareTable(rows, a.scenario.Heuristic))
			return nil
		},
	}
}

func compareTable(rows []compareRow, heuristic string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STRATEGY", "FOUND", "MOVES", "COST", "EXPANDED", "ELAPSED", "NOTE")
	for _, row := range rows {
		name := string(row.strategy)
		if row.strategy.Informed() {
			name += "/" + heuristic
		}
		note := ""
		if row.err != nil {
			note = row.err.Error()
		}
		t.Row(
			name,
			strconv.FormatBool(row.result.Found),
			strconv.Itoa(len(row.result.Actions)),
			strconv.FormatFloat(row.result.TotalCost, 'g', -1, 64),
			strconv.Itoa(row.result.ExpandedNodes),
			row.elapsed.Round(time.Microsecond).String(),
			note,
		)
	}
	return t.String()
}

// exploreAStar steps an A* search to the end and returns the locations it
// closed and the route it found, if any.
func exploreAStar(
	ctx context.Context,
	problem *robotroute.RouteProblem,
	heuristic search.Heuristic[robotroute.Position],
	options []search.Option,
) (map[robotroute.Location]bool, []robotroute.Position, error) {
	stepper, err := search.NewAStarStepper(ctx, problem, heuristic, options...)
	if err != nil {
		return nil, nil, err
	}
	defer stepper.Close()

	var snapshot search.StepSnapshot[robotroute.Position, robotroute.Action, robotroute.Location]
	for !stepper.Done() {
		var err error
		if snapshot, err = stepper.Step(); err != nil {
			return nil, nil, err
		}
	}
	return snapshot.Closed, snapshot.Path, nil
}
