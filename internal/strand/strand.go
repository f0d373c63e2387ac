// Package strand accumulates the human-readable decision trace threaded
// through a session's bind and search calls. The trace is diagnostic only;
// no control decision ever reads it.
package strand

// Strand is an append-only audit trace. The front end passes the
// accumulated value in with every call and carries the returned value
// forward, so each operation appends one parenthesized segment:
//
//	bind(uid=bob,ou=users,... user login allowed) ->
//
// The zero value is an empty trace.
type Strand string

// Open starts a segment for an operation on a subject, e.g.
// Open("bind", dn).
func (s Strand) Open(op, subject string) Strand {
	return s + Strand(op+"("+subject+" ")
}

// Note appends a decision phrase to the open segment.
func (s Strand) Note(phrase string) Strand {
	return s + Strand(phrase)
}

// Close terminates the open segment with the arrow separator.
func (s Strand) Close() Strand {
	return s + ") -> "
}

// String returns the accumulated trace.
func (s Strand) String() string {
	return string(s)
}
