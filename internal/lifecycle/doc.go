// Package lifecycle owns the timed behavior of a single visible notification:
// the entrance transition, the auto-dismiss countdown, the exit transition,
// and the removal signal sent back to the stack manager once the record is gone.
package lifecycle
