package projects

// StateMachine enforces expert-request status transitions
type StateMachine struct {
	allowedTransitions map[RequestStatus][]RequestStatus
}

// NewStateMachine creates a state machine with the allowed transitions.
// Sibling bulk rejection during quote acceptance deliberately bypasses the
// table: it overwrites any state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[RequestStatus][]RequestStatus{
			RequestStatusRequested: {RequestStatusResponded, RequestStatusRejected, RequestStatusExpired},
			RequestStatusResponded: {RequestStatusAccepted, RequestStatusRejected},
			RequestStatusAccepted:  {},
			RequestStatusRejected:  {},
			RequestStatusExpired:   {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to RequestStatus) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// Quotable reports whether an expert may still attach a quote to a request
// in the given state.
func (sm *StateMachine) Quotable(status RequestStatus) bool {
	return status == RequestStatusRequested || status == RequestStatusResponded
}
