package protocol

// State is a connection phase. Exactly one is active per session; transitions
// are one-directional except Play -> Closed, and Closed is terminal.
type State int32

const (
	StateHandshaking State = iota
	StateStatus
	StateLogin
	StatePlay
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StatePlay:
		return "play"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
