package panel

// Event is a message crossing the boundary between the controller and its surface.
// Inbound: GenerateEvent, CommitEvent. Outbound: CommitResultEvent, InfoEvent.
type Event interface {
	isEvent()
}

// GenerateEvent asks for a new commit message
type GenerateEvent struct {
	CommitType string
	TicketID   string
}

// CommitEvent commits the given text verbatim
type CommitEvent struct {
	Message string
}

// CommitResultEvent carries a formatted commit message ready for editing
type CommitResultEvent struct {
	Message         string
	DurationSeconds float64
}

// Level classifies an InfoEvent for presentation
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// InfoEvent is a user-facing notice
type InfoEvent struct {
	Text  string
	Level Level
}

func (GenerateEvent) isEvent()     {}
func (CommitEvent) isEvent()       {}
func (CommitResultEvent) isEvent() {}
func (InfoEvent) isEvent()         {}

// Surface receives outbound events
type Surface interface {
	Emit(Event)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(Event)

// Emit calls f(e)
func (f SurfaceFunc) Emit(e Event) {
	f(e)
}
