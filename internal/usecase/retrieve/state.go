package retrieve

// State tracks a request's position in the retrieval pipeline.
type State string

// Pipeline states, in processing order.
const (
	StateReceived  State = "RECEIVED"
	StateFannedOut State = "FANNED_OUT"
	StateFused     State = "FUSED"
	StateFiltered  State = "FILTERED"
	StateReranked  State = "RERANKED"
	StateAssembled State = "ASSEMBLED"
	StateReturned  State = "RETURNED"
	StateFailed    State = "FAILED"
)

// next defines the allowed transitions. Reranking and assembly are
// optional stages, so several states can jump ahead.
var next = map[State][]State{
	StateReceived:  {StateFannedOut, StateFailed},
	StateFannedOut: {StateFused, StateFailed},
	StateFused:     {StateFiltered},
	StateFiltered:  {StateReranked, StateAssembled, StateReturned},
	StateReranked:  {StateAssembled, StateReturned},
	StateAssembled: {StateReturned},
}

// advance moves to the target state if the transition is legal and
// reports whether it happened. Illegal transitions leave the state put,
// which keeps a pipeline bug observable rather than silently absorbed.
func (s *State) advance(to State) bool {
	for _, allowed := range next[*s] {
		if allowed == to {
			*s = to
			return true
		}
	}
	return false
}
