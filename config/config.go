// Package config loads route scenarios from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/robotroute"
	"github.com/pdrpinto/robotroute/search"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "ROBOTROUTE_"

var ErrInvalidScenario = errors.New("invalid scenario")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// accepts exactly the names HeuristicByName resolves
	_ = v.RegisterValidation("heuristic", func(fl validator.FieldLevel) bool {
		return robotroute.IsHeuristicName(fl.Field().String())
	})
	return v
}

// Scenario describes a grid, the robot's start and goal, and how to search it.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Build.
type Scenario struct {
	Order            int                      `json:"order" yaml:"order" validate:"gte=3"`
	Walls            robotroute.WallFractions `json:"walls" yaml:"walls"`
	Start            robotroute.Location      `json:"start" yaml:"start"`
	Goal             robotroute.Location      `json:"goal" yaml:"goal"`
	InitialDirection string                   `json:"initial_direction,omitempty" yaml:"initial_direction,omitempty"`
	Strategy         string                   `json:"strategy" yaml:"strategy" validate:"required"`
	Heuristic        string                   `json:"heuristic" yaml:"heuristic" validate:"heuristic"`
	Search           SearchConfig             `json:"search" yaml:"search"`
	Log              LogConfig                `json:"log" yaml:"log"`
}

// SearchConfig bounds the search.
type SearchConfig struct {
	Workers       int           `json:"workers" yaml:"workers" validate:"gte=0,lte=1024"`
	MaxExpansions int           `json:"max_expansions" yaml:"max_expansions" validate:"gte=0"`
	MaxDepth      int           `json:"max_depth" yaml:"max_depth" validate:"gte=0"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default is the 9x9 grid with the robot crossing from the top-left to the
// bottom-right free cell.
func Default() Scenario {
	return Scenario{
		Order:     9,
		Walls:     robotroute.DefaultWallFractions,
		Start:     robotroute.Location{X: 1, Y: 1},
		Goal:      robotroute.Location{X: 7, Y: 7},
		Strategy:  string(search.BreadthFirstStrategy),
		Heuristic: "manhattan",
		Search: SearchConfig{
			Workers:  runtime.NumCPU(),
			MaxDepth: 64,
			Timeout:  10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("env file not found", "path", path)
				continue
			}
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the scenario at path on top of Default, then applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Scenario, error) {
	scenario := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Scenario{}, fmt.Errorf("reading scenario: %w", err)
		}
		if err := yaml.Unmarshal(data, &scenario); err != nil {
			return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
		}
	}
	if err := scenario.ApplyEnv(os.LookupEnv); err != nil {
		return Scenario{}, err
	}
	if err := scenario.Validate(); err != nil {
		return Scenario{}, err
	}
	return scenario, nil
}

// ApplyEnv overrides fields from ROBOTROUTE_* variables found by lookup.
func (scenario *Scenario) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		value, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(value), ok && strings.TrimSpace(value) != ""
	}

	var err error
	setInt := func(name string, target *int) {
		if value, ok := get(name); ok && err == nil {
			var parsed int
			if parsed, err = strconv.Atoi(value); err != nil {
				err = fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidScenario, EnvPrefix, name, value)
				return
			}
			*target = parsed
		}
	}
	setLocation := func(name string, target *robotroute.Location) {
		if value, ok := get(name); ok && err == nil {
			var parsed robotroute.Location
			if parsed, err = ParseLocation(value); err != nil {
				return
			}
			*target = parsed
		}
	}
	setString := func(name string, target *string) {
		if value, ok := get(name); ok {
			*target = value
		}
	}

	setInt("ORDER", &scenario.Order)
	setLocation("START", &scenario.Start)
	setLocation("GOAL", &scenario.Goal)
	setString("INITIAL_DIRECTION", &scenario.InitialDirection)
	setString("STRATEGY", &scenario.Strategy)
	setString("HEURISTIC", &scenario.Heuristic)
	setInt("WORKERS", &scenario.Search.Workers)
	setInt("MAX_EXPANSIONS", &scenario.Search.MaxExpansions)
	setInt("MAX_DEPTH", &scenario.Search.MaxDepth)
	setString("LOG_LEVEL", &scenario.Log.Level)
	setString("LOG_FORMAT", &scenario.Log.Format)
	if value, ok := get("TIMEOUT"); ok && err == nil {
		timeout, parseErr := time.ParseDuration(value)
		if parseErr != nil {
			return fmt.Errorf("%w: %sTIMEOUT=%q: %v", ErrInvalidScenario, EnvPrefix, value, parseErr)
		}
		scenario.Search.Timeout = timeout
	}
	return err
}

// ParseLocation parses "x,y".
func ParseLocation(text string) (robotroute.Location, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return robotroute.Location{}, fmt.Errorf("%w: location %q is not x,y", ErrInvalidScenario, text)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return robotroute.Location{}, fmt.Errorf("%w: location %q is not x,y", ErrInvalidScenario, text)
	}
	return robotroute.Location{X: x, Y: y}, nil
}

// Validate checks field ranges, then the names that must resolve.
func (scenario Scenario) Validate() error {
	if err := validate.Struct(scenario); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if _, err := search.ParseStrategy(scenario.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if _, err := scenario.initialDirection(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := scenario.Walls.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return nil
}

func (scenario Scenario) initialDirection() (robotroute.Action, error) {
	if scenario.InitialDirection == "" {
		return robotroute.NoDirection, nil
	}
	return robotroute.ParseAction(scenario.InitialDirection)
}

// SearchStrategy returns the parsed strategy; call Validate first.
func (scenario Scenario) SearchStrategy() search.Strategy {
	strategy, _ := search.ParseStrategy(scenario.Strategy)
	return strategy
}

// Build constructs the grid and the route problem.
func (scenario Scenario) Build() (*robotroute.RouteProblem, error) {
	grid, err := robotroute.NewGrid(scenario.Order, scenario.Walls)
	if err != nil {
		return nil, err
	}
	direction, err := scenario.initialDirection()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return robotroute.NewRouteProblem(grid, scenario.Start, scenario.Goal,
		robotroute.WithInitialDirection(direction))
}

// SearchOptions translates the search bounds into search options.
func (scenario Scenario) SearchOptions(logger *slog.Logger) []search.Option {
	options := []search.Option{
		search.WithMaxExpansions(scenario.Search.MaxExpansions),
		search.WithLogger(logger),
	}
	if scenario.Search.Workers > 0 {
		options = append(options, search.WithWorkers(scenario.Search.Workers))
	}
	if scenario.Search.MaxDepth > 0 {
		options = append(options, search.WithMaxDepth(scenario.Search.MaxDepth))
	}
	return options
}
