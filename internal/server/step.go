package server

import (
	"cmp"
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pdrpinto/robotroute"
	"github.com/pdrpinto/robotroute/config"
	"github.com/pdrpinto/robotroute/search"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(*http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 64 * 1024,
}

// Message types accepted on the step socket.
const (
	messageInit = "init"
	messageNext = "next"
	messageRun  = "run"
)

// stepMessage is read from the client. Init carries the scenario overrides;
// its strategy must be ucs, greedy or astar and defaults to astar.
type stepMessage struct {
	Type string `json:"type"`
	SolveRequest
}

// stepSnapshot mirrors one stepper snapshot. Walls only travel with the
// snapshot answering init.
type stepSnapshot struct {
	Step      int      `json:"step"`
	Strategy  string   `json:"strategy,omitempty"`
	Order     int      `json:"order"`
	Walls     [][2]int `json:"walls,omitempty"`
	Open      [][2]int `json:"open"`
	Closed    [][2]int `json:"closed"`
	Current   [2]int   `json:"current"`
	Direction string   `json:"direction,omitempty"`
	Start     [2]int   `json:"start"`
	Goal      [2]int   `json:"goal"`
	Done      bool     `json:"done"`
	Found     bool     `json:"found"`
	Path      [][2]int `json:"path,omitempty"`
	Moves     []string `json:"moves,omitempty"`
	Expanded  int      `json:"expanded"`
	Error     string   `json:"error,omitempty"`
}

type routeStepper = search.Stepper[robotroute.Position, robotroute.Action, robotroute.Location]

// stepSession is the per-connection search state.
type stepSession struct {
	problem  *robotroute.RouteProblem
	strategy search.Strategy
	stepper  *routeStepper
	walls    [][2]int
}

func (session *stepSession) close() {
	if session.stepper != nil {
		session.stepper.Close()
	}
}

func (s *Server) handleStep(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	logger := s.logger.With("request_id", c.GetString("request_id"))
	ctx := c.Request.Context()
	session := &stepSession{}
	defer session.close()

	for {
		var message stepMessage
		if err := ws.ReadJSON(&message); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("step socket closed", "error", err)
			}
			return
		}

		switch message.Type {
		case messageInit:
			next, err := s.newStepSession(ctx, message.SolveRequest)
			if err != nil {
				if writeErr := ws.WriteJSON(stepSnapshot{Error: err.Error()}); writeErr != nil {
					return
				}
				continue
			}
			session.close()
			session = next
			logger.Info("step session started", "strategy", session.strategy, "start", session.problem.Initial().Location(), "goal", session.problem.Goal())
			if err := ws.WriteJSON(session.initialSnapshot()); err != nil {
				return
			}
		case messageNext, messageRun:
			if session.stepper == nil {
				if err := ws.WriteJSON(stepSnapshot{Error: "engine not initialized"}); err != nil {
					return
				}
				continue
			}
			for {
				snapshot := session.step()
				if err := ws.WriteJSON(snapshot); err != nil {
					return
				}
				if message.Type == messageNext || snapshot.Done {
					break
				}
			}
		default:
			if err := ws.WriteJSON(stepSnapshot{Error: "unknown message type " + message.Type}); err != nil {
				return
			}
		}
	}
}

func (s *Server) newStepSession(ctx context.Context, request SolveRequest) (*stepSession, error) {
	if request.Strategy == "" {
		request.Strategy = string(search.AStarStrategy)
	}
	scenario, err := request.apply(s.defaults)
	if err != nil {
		return nil, err
	}
	problem, err := scenario.Build()
	if err != nil {
		return nil, err
	}
	heuristic, err := problem.HeuristicByName(scenario.Heuristic)
	if err != nil {
		return nil, err
	}
	strategy := scenario.SearchStrategy()
	stepper, err := search.NewStrategyStepper(ctx, strategy, problem, heuristic, stepOptions(scenario)...)
	if err != nil {
		return nil, err
	}
	return &stepSession{
		problem:  problem,
		strategy: strategy,
		stepper:  stepper,
		walls:    wallList(problem.Grid()),
	}, nil
}

func stepOptions(scenario config.Scenario) []search.Option {
	if scenario.Search.Workers > 0 {
		return []search.Option{search.WithWorkers(scenario.Search.Workers)}
	}
	return nil
}

func (session *stepSession) initialSnapshot() stepSnapshot {
	initial := session.problem.Initial()
	return stepSnapshot{
		Strategy: string(session.strategy),
		Order:    session.problem.Grid().Order(),
		Walls:    session.walls,
		Open:     [][2]int{{initial.X(), initial.Y()}},
		Closed:   [][2]int{},
		Current:  [2]int{initial.X(), initial.Y()},
		Start:    [2]int{initial.X(), initial.Y()},
		Goal:     [2]int{session.problem.Goal().X, session.problem.Goal().Y},
	}
}

func (session *stepSession) step() stepSnapshot {
	state, err := session.stepper.Step()
	initial := session.problem.Initial()
	goal := session.problem.Goal()

	snapshot := stepSnapshot{
		Step:     state.StepIndex,
		Strategy: string(session.strategy),
		Order:    session.problem.Grid().Order(),
		Open:     locationList(state.Open),
		Closed:   locationList(state.Closed),
		Start:    [2]int{initial.X(), initial.Y()},
		Goal:     [2]int{goal.X, goal.Y},
		Done:     state.Done,
		Found:    state.Found,
		Expanded: state.ExpandedNodes,
	}
	if err != nil {
		snapshot.Error = err.Error()
	}
	if state.HasCurrent {
		snapshot.Current = [2]int{state.Current.X(), state.Current.Y()}
		if state.Current.Direction().Valid() {
			snapshot.Direction = state.Current.Direction().Name()
		}
	}
	for _, position := range state.Path {
		snapshot.Path = append(snapshot.Path, [2]int{position.X(), position.Y()})
	}
	for _, action := range state.Actions {
		snapshot.Moves = append(snapshot.Moves, action.Name())
	}
	return snapshot
}

func locationList(set map[robotroute.Location]bool) [][2]int {
	list := make([][2]int, 0, len(set))
	for location, ok := range set {
		if ok {
			list = append(list, [2]int{location.X, location.Y})
		}
	}
	slices.SortFunc(list, func(a, b [2]int) int {
		if c := cmp.Compare(a[1], b[1]); c != 0 {
			return c
		}
		return cmp.Compare(a[0], b[0])
	})
	return list
}
