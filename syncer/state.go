package syncer

// State is the connection state of a remote document-collection sync.
type State int

const (
	// Idle means no workspace is selected.
	Idle State = iota
	// Connecting means a workspace was selected and the subscription is
	// being established.
	Connecting
	// Synced means the latest snapshot was confirmed by the server with no
	// local pending writes.
	Synced
	// Pending means local writes are in flight.
	Pending
	// Offline means the latest snapshot was served from a local cache
	// without server confirmation.
	Offline
	// Error means the subscription failed. Terminal until re-subscribed.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Synced:
		return "synced"
	case Pending:
		return "pending"
	case Offline:
		return "offline"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a sync lifecycle occurrence driving state transitions.
type Event int

const (
	// EventConnect fires on workspace selection or re-subscription.
	EventConnect Event = iota
	// EventSnapshotConfirmed fires when a server-confirmed snapshot arrives
	// with no pending writes.
	EventSnapshotConfirmed
	// EventSnapshotFromCache fires when a snapshot is served locally
	// without server confirmation.
	EventSnapshotFromCache
	// EventLocalWrite fires when local writes are put in flight.
	EventLocalWrite
	// EventSubscribeFailed fires when the subscription breaks.
	EventSubscribeFailed
)

// Transition returns the state after an event. It is total: every
// state/event pair has a defined successor.
func Transition(s State, e Event) State {
	// connecting again is always allowed, and is the only way out of Error
	if e == EventConnect {
		return Connecting
	}
	switch s {
	case Idle:
		// nothing happens before a workspace is selected
		return Idle
	case Error:
		return Error
	default:
	}
	switch e {
	case EventSnapshotConfirmed:
		return Synced
	case EventSnapshotFromCache:
		return Offline
	case EventLocalWrite:
		return Pending
	case EventSubscribeFailed:
		return Error
	default:
		return s
	}
}
