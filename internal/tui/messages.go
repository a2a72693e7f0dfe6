package tui

// changedMsg tells the model to re-read the orchestrator snapshot
type changedMsg struct{}

// doneMsg is sent when a background action finishes
type doneMsg struct {
	action string
	notice string
	err    error
}

// confirmMsg asks a yes/no question; the answer goes to reply
type confirmMsg struct {
	prompt string
	reply  chan<- bool
}

// alertMsg reports a failed attachment operation; ack is closed once the
// user dismisses it
type alertMsg struct {
	name string
	err  error
	ack  chan<- struct{}
}
