package models

// ConnectionState reflects the outcome of the most recent network attempt
type ConnectionState int

const (
	// StateUnknown is only observed before the first attempt completes
	StateUnknown ConnectionState = iota
	StateConnected
	StateDisconnected
)

// String returns the display name of the state
func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	default:
		return "Checking"
	}
}

// Connected is a convenience for s == StateConnected
func (s ConnectionState) Connected() bool {
	return s == StateConnected
}

// StateFromOutcome maps a network outcome onto the binary state
func StateFromOutcome(ok bool) ConnectionState {
	if ok {
		return StateConnected
	}
	return StateDisconnected
}
