package chat

// stateChangedMsg is sent when the controller reports a state change.
type stateChangedMsg struct{}

// requestDoneMsg is sent when a controller request settles.
type requestDoneMsg struct {
	Op  string
	Err error

	// Unsent holds the line of a send the controller refused as busy.
	Unsent string
}
