// Package session is the exercise state machine: authenticate, start, count
// repetitions through a fixed number of series with rests in between, finish
// and hand a report to whoever is listening.
//
// A Session is not safe for concurrent use. It belongs to the cooperative
// driver loop, which calls Handle then Transition once per cycle. The only
// inputs that come from other goroutines are the one-shot button flags, read
// through Input.Take.
package session

import (
	"fmt"
	"log"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lowaak/smart-trainer/rep-coach/internal/events"
)

const (
	DefaultTotalReps   = 12
	DefaultTotalSeries = 3
)

// Config fixes the size of a session
type Config struct {
	TotalReps   int
	TotalSeries int
}

// DefaultConfig returns 3 series of 12 repetitions
func DefaultConfig() Config {
	return Config{TotalReps: DefaultTotalReps, TotalSeries: DefaultTotalSeries}
}

// Validate rejects empty sessions
func (c Config) Validate() error {
	if c.TotalReps <= 0 {
		return fmt.Errorf("total reps must be positive, got %d", c.TotalReps)
	}
	if c.TotalSeries <= 0 {
		return fmt.Errorf("total series must be positive, got %d", c.TotalSeries)
	}
	return nil
}

// Display replaces the four display lines. Implementations must not block.
type Display interface {
	Render(lines [4]string)
}

// Input is a one-shot press flag
type Input interface {
	Take() bool
}

// EventKind is a one-time action fired by a transition
type EventKind int

const (
	EventAuthenticated EventKind = iota
	EventExerciseStarted
	EventSeriesCompleted
	EventRested
	EventExerciseCompleted
	EventReportRequested
)

func (k EventKind) String() string {
	switch k {
	case EventAuthenticated:
		return "authenticated"
	case EventExerciseStarted:
		return "exercise-started"
	case EventSeriesCompleted:
		return "series-completed"
	case EventRested:
		return "rested"
	case EventExerciseCompleted:
		return "exercise-completed"
	case EventReportRequested:
		return "report-requested"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Transition records what one call to Transition did
type Transition struct {
	From   Phase
	To     Phase
	Events []EventKind
	// Counters after the transition
	RepetitionsDone int
	CurrentSeries   int
}

// Changed reports whether the phase moved
func (t Transition) Changed() bool { return t.From != t.To }

// Has reports whether kind fired during the transition
func (t Transition) Has(kind EventKind) bool {
	for _, k := range t.Events {
		if k == kind {
			return true
		}
	}
	return false
}

// Report summarises one finished session
type Report struct {
	SessionNumber   int       `json:"session_number"`
	SeriesCompleted int       `json:"series_completed"`
	RepsPerSeries   int       `json:"reps_per_series"`
	TotalReps       int       `json:"total_reps"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Duration is the time between the exercise start and the report
func (r Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Snapshot is a copy of the session for rendering elsewhere
type Snapshot struct {
	Phase             Phase
	Screen            Screen
	Signal            Signal
	RepetitionsDone   int
	CurrentSeries     int
	TotalReps         int
	TotalSeries       int
	SessionsCompleted int
}

// Session holds the state machine and its counters
type Session struct {
	cfg     Config
	display Display
	confirm Input
	count   Input
	clock   clock.Clock
	logger  *log.Logger

	state           State
	repetitionsDone int
	currentSeries   int
	// one-shot milestones, cleared by the transition that reads them
	authenticated   bool
	exerciseStarted bool

	startedAt         time.Time
	sessionsCompleted int
	screen            Screen

	transitionEvent *events.CallbackEvent[Transition]
	reportEvent     *events.CallbackEvent[Report]
}

// NewSessionArg holds the arguments for creating a new Session
type NewSessionArg struct {
	Config  Config
	Display Display
	Confirm Input // confirm button: authenticate, start
	Count   Input // count button: one repetition
	Clock   clock.Clock
	Logger  *log.Logger
}

// New creates a session waiting for authentication
func New(args NewSessionArg) *Session {
	if err := args.Config.Validate(); err != nil {
		panic("Session: " + err.Error())
	}
	if args.Display == nil {
		panic("Session: display cannot be nil")
	}
	if args.Confirm == nil || args.Count == nil {
		panic("Session: inputs cannot be nil")
	}
	if args.Clock == nil {
		panic("Session: clock cannot be nil")
	}
	if args.Logger == nil {
		panic("Session: logger cannot be nil")
	}
	return &Session{
		cfg:             args.Config,
		display:         args.Display,
		confirm:         args.Confirm,
		count:           args.Count,
		clock:           args.Clock,
		logger:          args.Logger,
		state:           Auth,
		currentSeries:   1,
		transitionEvent: events.NewCallbackEvent[Transition](),
		reportEvent:     events.NewCallbackEvent[Report](),
	}
}

// Handle runs the current state's handler: render its prompt and consume the
// inputs it cares about
func (s *Session) Handle() {
	s.screen = s.state.handle(s)
	s.display.Render(s.screen)
}

// Transition runs the current state's transition rule once
func (s *Session) Transition() Transition {
	from := s.state
	next, fired := from.advance(s)
	if next == nil {
		panic(fmt.Sprintf("Session: %s transitioned to a nil state", from.Phase()))
	}
	s.state = next

	t := Transition{
		From:            from.Phase(),
		To:              next.Phase(),
		Events:          fired,
		RepetitionsDone: s.repetitionsDone,
		CurrentSeries:   s.currentSeries,
	}
	if t.Changed() || len(fired) > 0 {
		s.transitionEvent.Notify(t)
	}
	return t
}

// State returns the current state
func (s *Session) State() State { return s.state }

// Phase returns the current phase
func (s *Session) Phase() Phase { return s.state.Phase() }

// RepetitionsDone returns the repetitions counted in the current series
func (s *Session) RepetitionsDone() int { return s.repetitionsDone }

// CurrentSeries returns the 1-based series number
func (s *Session) CurrentSeries() int { return s.currentSeries }

// Config returns the session size
func (s *Session) Config() Config { return s.cfg }

// Snapshot copies the session for other goroutines
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:             s.state.Phase(),
		Screen:            s.screen,
		Signal:            s.state.Signal(),
		RepetitionsDone:   s.repetitionsDone,
		CurrentSeries:     s.currentSeries,
		TotalReps:         s.cfg.TotalReps,
		TotalSeries:       s.cfg.TotalSeries,
		SessionsCompleted: s.sessionsCompleted,
	}
}

// OnTransition registers a callback for transitions that change phase or fire
// events. Callbacks run on the driver goroutine.
// Returns a deregistration function.
func (s *Session) OnTransition(fn func(Transition)) func() {
	return s.transitionEvent.Listen(fn)
}

// OnReport registers a report hook, called once per finished session on the
// driver goroutine. Returns a deregistration function.
func (s *Session) OnReport(fn func(Report)) func() {
	return s.reportEvent.Listen(fn)
}

func (s *Session) requestReport() {
	s.sessionsCompleted++
	r := Report{
		SessionNumber:   s.sessionsCompleted,
		SeriesCompleted: s.currentSeries,
		RepsPerSeries:   s.cfg.TotalReps,
		TotalReps:       (s.currentSeries-1)*s.cfg.TotalReps + s.repetitionsDone,
		StartedAt:       s.startedAt,
		FinishedAt:      s.clock.Now(),
	}
	if n := s.reportEvent.Notify(r); n == 0 {
		s.logger.Printf("Session: no report hook registered for session %d", r.SessionNumber)
	}
}
