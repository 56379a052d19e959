package domain

// EngineState is the lifecycle position of a dump engine.
type EngineState uint8

const (
	StateCreated EngineState = iota // no sink attached yet
	StateOpen                       // sink open, dumps accepted
	StateFailed                     // a fatal fault happened; only Close is accepted
	StateClosed                     // sink finalized
)

// String returns the string representation of EngineState.
func (s EngineState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
