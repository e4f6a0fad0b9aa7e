package models

// StatusMachine is a transition table keyed by the current status. A status
// absent from the table is terminal. Every status mutation in the system is
// validated against one of these tables; call sites never check statuses
// ad hoc.
type StatusMachine[S ~string] map[S][]S

// Allowed reports whether the machine permits moving from one status to
// another.
func (m StatusMachine[S]) Allowed(from, to S) bool {
	for _, next := range m[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions.
func (m StatusMachine[S]) Terminal(s S) bool {
	return len(m[s]) == 0
}
