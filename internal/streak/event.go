package streak

// Event reports that a synchronization increased the streak.
type Event struct {
	Previous int `json:"previous"`
	Current  int `json:"current"`
}

// Evaluate returns an Event when current exceeds previous, nil otherwise.
func Evaluate(previous, current int) *Event {
	if current <= previous {
		return nil
	}
	return &Event{Previous: previous, Current: current}
}
