package stack

// RemovalReason explains why a notification left the visible set.
type RemovalReason int

const (
	// ReasonExpired means the countdown elapsed and the exit transition finished.
	ReasonExpired RemovalReason = iota + 1
	// ReasonDismissed means Dismiss was called for the notification.
	ReasonDismissed
	// ReasonDismissedAll means DismissAll cleared the visible set.
	ReasonDismissedAll
	// ReasonEvicted means a newer notification pushed it out of a full stack.
	ReasonEvicted
)

// String returns the string representation of the removal reason.
func (r RemovalReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissed:
		return "dismissed"
	case ReasonDismissedAll:
		return "dismissed-all"
	case ReasonEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// RemovalCallback observes every removal from the visible set.
// It runs after the manager has released its lock.
type RemovalCallback func(id string, reason RemovalReason)

// ChangeType indicates the type of stack change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a notification was enqueued.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeRemove indicates a single notification was removed.
	ChangeTypeRemove
	// ChangeTypeClear indicates the whole visible set was cleared.
	ChangeTypeClear
	// ChangeTypeState indicates a lifecycle state change of a visible notification.
	ChangeTypeState
	// ChangeTypeReconfigure indicates layout settings changed.
	ChangeTypeReconfigure
)

// ChangeEvent signals that the snapshot changed. Subscribers re-read Snapshot.
type ChangeEvent struct {
	Type   ChangeType
	ID     string
	Reason RemovalReason
	Count  int
}
