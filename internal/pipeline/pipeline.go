// Package pipeline defines the progress events the driver reports while it
// compiles. The CLI turns them into a live view.
package pipeline

import "time"

// Stage is a compiler pass.
type Stage string

const (
	StageLoad     Stage = "load"
	StageParse    Stage = "parse"
	StageBuild    Stage = "build"
	StageResolve  Stage = "resolve"
	StageValidate Stage = "validate"
)

// Status is the state of a file or pass within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one file, or for the whole compilation when
// File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events. Implementations must be safe for
// concurrent use; parse workers report from their own goroutines.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

// Report sends evt to s unless s is nil.
func Report(s Sink, evt Event) {
	if s != nil {
		s.OnEvent(evt)
	}
}

// Order is the position of stage in a compilation, starting at 1. Unknown
// stages are 0.
func (s Stage) Order() int {
	switch s {
	case StageLoad:
		return 1
	case StageParse:
		return 2
	case StageBuild:
		return 3
	case StageResolve:
		return 4
	case StageValidate:
		return 5
	}
	return 0
}
