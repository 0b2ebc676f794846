// Package render draws grids and routes for terminals.
package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/pdrpinto/robotroute"
)

// Symbols used in plain output.
const (
	WallSymbol     = '#'
	FreeSymbol     = '.'
	ExploredSymbol = 'o'
	StartSymbol    = 'S'
	GoalSymbol     = 'G'
)

var arrows = map[robotroute.Action]rune{
	robotroute.East:      '→',
	robotroute.NorthEast: '↗',
	robotroute.North:     '↑',
	robotroute.NorthWest: '↖',
	robotroute.West:      '←',
	robotroute.SouthWest: '↙',
	robotroute.South:     '↓',
	robotroute.SouthEast: '↘',
}

var (
	wallStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	freeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	exploredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("67"))
	routeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	endpointStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// Options selects what is drawn on top of the grid.
type Options struct {
	// Route is drawn with an arrow per step showing the move that reached it.
	Route    []robotroute.Position
	Start    *robotroute.Location
	Goal     *robotroute.Location
	Explored map[robotroute.Location]bool
	Styled   bool
}

// ShouldStyle reports whether colors should be used when writing to file.
func ShouldStyle(file *os.File) bool {
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Grid renders one line per row, cells separated by a space.
func Grid(grid *robotroute.Grid, options Options) string {
	route := make(map[robotroute.Location]robotroute.Action, len(options.Route))
	for _, position := range options.Route {
		route[position.Location()] = position.Direction()
	}

	var builder strings.Builder
	for y := 0; y < grid.Order(); y++ {
		cells := make([]string, 0, grid.Order())
		for x := 0; x < grid.Order(); x++ {
			cells = append(cells, cell(grid, robotroute.Location{X: x, Y: y}, route, options))
		}
		builder.WriteString(strings.Join(cells, " "))
		builder.WriteByte('\n')
	}
	return builder.String()
}

func cell(grid *robotroute.Grid, location robotroute.Location, route map[robotroute.Location]robotroute.Action, options Options) string {
	symbol, style := symbolAt(grid, location, route, options)
	if !options.Styled {
		return string(symbol)
	}
	return style.Render(string(symbol))
}

func symbolAt(grid *robotroute.Grid, location robotroute.Location, route map[robotroute.Location]robotroute.Action, options Options) (rune, lipgloss.Style) {
	switch {
	case grid.IsWall(location.X, location.Y):
		return WallSymbol, wallStyle
	case options.Start != nil && *options.Start == location:
		return StartSymbol, endpointStyle
	case options.Goal != nil && *options.Goal == location:
		return GoalSymbol, endpointStyle
	}
	if direction, onRoute := route[location]; onRoute {
		if arrow, ok := arrows[direction]; ok {
			return arrow, routeStyle
		}
	}
	if options.Explored[location] {
		return ExploredSymbol, exploredStyle
	}
	return FreeSymbol, freeStyle
}

// Actions formats a move sequence as compass names, e.g. "E SE S".
func Actions(actions []robotroute.Action) string {
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, action.Name())
	}
	return strings.Join(names, " ")
}
