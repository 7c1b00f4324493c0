package session

import (
	"fmt"

	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
)

// Phase names a session state for display, logging and tests
type Phase int

const (
	PhaseAuth Phase = iota
	PhaseExerciseStart
	PhaseInSeries
	PhaseRest
	PhaseFinish
)

func (p Phase) String() string {
	switch p {
	case PhaseAuth:
		return "auth"
	case PhaseExerciseStart:
		return "exercise-start"
	case PhaseInSeries:
		return "in-series"
	case PhaseRest:
		return "rest"
	case PhaseFinish:
		return "finish"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Signal is what the RGB indicator shows while a state is active
type Signal struct {
	Color indicator.Color
	Mode  indicator.Mode
}

// Screen is the four display lines
type Screen [4]string

// State is one node of the session state machine. The set is closed: the
// unexported methods keep other packages from adding states, so every state
// the machine can reach has both a handler and a transition.
type State interface {
	Phase() Phase
	Signal() Signal
	// handle renders the prompt and consumes inputs; runs once per cycle
	handle(s *Session) Screen
	// advance runs the transition rule; runs once per cycle after handle
	advance(s *Session) (State, []EventKind)
}

var (
	Auth          State = authState{}
	ExerciseStart State = exerciseStartState{}
	InSeries      State = inSeriesState{}
	Rest          State = restState{}
	Finish        State = finishState{}
)

// States lists every state in phase order
var States = []State{Auth, ExerciseStart, InSeries, Rest, Finish}

type authState struct{}

func (authState) Phase() Phase   { return PhaseAuth }
func (authState) Signal() Signal { return Signal{Color: indicator.Blue, Mode: indicator.ModeBlink} }

func (authState) handle(s *Session) Screen {
	if s.confirm.Take() {
		s.authenticated = true
	}
	return Screen{"Waiting for", "authentication", "via QR code...", ""}
}

func (authState) advance(s *Session) (State, []EventKind) {
	if !consume(&s.authenticated) {
		return Auth, nil
	}
	s.logger.Printf("Session: user authenticated")
	return ExerciseStart, []EventKind{EventAuthenticated}
}

type exerciseStartState struct{}

func (exerciseStartState) Phase() Phase { return PhaseExerciseStart }
func (exerciseStartState) Signal() Signal {
	return Signal{Color: indicator.Yellow, Mode: indicator.ModeSolid}
}

func (exerciseStartState) handle(s *Session) Screen {
	if s.confirm.Take() {
		s.exerciseStarted = true
		s.currentSeries = 1
	}
	return Screen{"Waiting for", "exercise", "to start", ""}
}

func (exerciseStartState) advance(s *Session) (State, []EventKind) {
	if !consume(&s.exerciseStarted) {
		return ExerciseStart, nil
	}
	s.repetitionsDone = 0
	s.startedAt = s.clock.Now()
	s.logger.Printf("Session: exercise started (%d series of %d reps)", s.cfg.TotalSeries, s.cfg.TotalReps)
	return InSeries, []EventKind{EventExerciseStarted}
}

type inSeriesState struct{}

func (inSeriesState) Phase() Phase { return PhaseInSeries }
func (inSeriesState) Signal() Signal {
	return Signal{Color: indicator.Green, Mode: indicator.ModeSolid}
}

func (inSeriesState) handle(s *Session) Screen {
	// Counters are shown as they were at the start of the cycle
	screen := Screen{
		"In series",
		fmt.Sprintf("Reps: %d/%d", s.repetitionsDone, s.cfg.TotalReps),
		fmt.Sprintf("Series: %d/%d", s.currentSeries, s.cfg.TotalSeries),
		"",
	}
	if s.count.Take() {
		s.repetitionsDone++
	}
	return screen
}

func (inSeriesState) advance(s *Session) (State, []EventKind) {
	if s.repetitionsDone < s.cfg.TotalReps {
		return InSeries, nil
	}
	if s.currentSeries < s.cfg.TotalSeries {
		s.logger.Printf("Session: series %d completed", s.currentSeries)
		s.currentSeries++
		s.repetitionsDone = 0
		return Rest, []EventKind{EventSeriesCompleted}
	}
	s.logger.Printf("Session: final series %d completed", s.currentSeries)
	return Finish, []EventKind{EventExerciseCompleted}
}

type restState struct{}

func (restState) Phase() Phase { return PhaseRest }
func (restState) Signal() Signal {
	return Signal{Color: indicator.Yellow, Mode: indicator.ModeBlink}
}

func (restState) handle(s *Session) Screen {
	return Screen{
		"Rest time",
		fmt.Sprintf("Next series: %d/%d", s.currentSeries, s.cfg.TotalSeries),
		"Get ready",
		"",
	}
}

// Rest has no duration of its own: it is shown for one cycle and left
func (restState) advance(s *Session) (State, []EventKind) {
	s.logger.Printf("Session: rest taken before series %d", s.currentSeries)
	return InSeries, []EventKind{EventRested}
}

type finishState struct{}

func (finishState) Phase() Phase { return PhaseFinish }
func (finishState) Signal() Signal {
	return Signal{Color: indicator.White, Mode: indicator.ModeSolid}
}

func (finishState) handle(s *Session) Screen {
	return Screen{"Exercise", "finished!", "Generating", "report..."}
}

func (finishState) advance(s *Session) (State, []EventKind) {
	s.logger.Printf("Session: exercise finished, generating report")
	s.requestReport()
	return Auth, []EventKind{EventReportRequested}
}

// consume reads a one-shot milestone and clears it
func consume(flag *bool) bool {
	v := *flag
	*flag = false
	return v
}
