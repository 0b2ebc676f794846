package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/robotroute"
)

func TestGrid_Plain(t *testing.T) {
	grid, err := robotroute.NewGrid(9, robotroute.DefaultWallFractions)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(Grid(grid, Options{}), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "# # # # # # # # #", lines[0])
	assert.Equal(t, "# . . . . . # . #", lines[1])
	assert.Equal(t, "# . . # . . . . #", lines[7])
}

func TestGrid_RouteOverlay(t *testing.T) {
	grid, err := robotroute.NewGrid(9, robotroute.DefaultWallFractions)
	require.NoError(t, err)
	problem, err := robotroute.NewRouteProblem(grid, robotroute.Location{X: 1, Y: 1}, robotroute.Location{X: 7, Y: 7})
	require.NoError(t, err)

	route := []robotroute.Position{problem.Initial()}
	state := problem.Initial()
	for _, action := range []robotroute.Action{robotroute.East, robotroute.SouthEast, robotroute.SouthEast, robotroute.South} {
		state = problem.Result(state, action)
		route = append(route, state)
	}
	start, goal := problem.Initial().Location(), problem.Goal()

	lines := strings.Split(Grid(grid, Options{
		Route:    route,
		Start:    &start,
		Goal:     &goal,
		Explored: map[robotroute.Location]bool{{X: 5, Y: 5}: true, {X: 2, Y: 1}: true},
	}), "\n")

	assert.Equal(t, "# S → . . . # . #", lines[1])
	assert.Equal(t, "# . . ↘ . . # . #", lines[2])
	assert.Equal(t, "# . . # ↘ . # . #", lines[3])
	assert.Equal(t, "# . . # ↓ . # . #", lines[4])
	assert.Equal(t, "# . . # . o # . #", lines[5])
	assert.Equal(t, "# . . # . . . G #", lines[7])
}

func TestGrid_Styled(t *testing.T) {
	grid, err := robotroute.NewGrid(9, robotroute.DefaultWallFractions)
	require.NoError(t, err)

	styled := Grid(grid, Options{Styled: true})
	assert.Contains(t, styled, "#")
	assert.Equal(t, 9, strings.Count(styled, "\n"))
}

func TestActions(t *testing.T) {
	assert.Equal(t, "E SE S", Actions([]robotroute.Action{robotroute.East, robotroute.SouthEast, robotroute.South}))
	assert.Empty(t, Actions(nil))
}
