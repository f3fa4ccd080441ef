package shard

type State uint8

const (
	// Free fragments have no joint and collide normally.
	Free State = iota
	// Reforming fragments are weakly coupled to their guide and converging.
	Reforming
	// Locked fragments are stiffly coupled to the guide or the root.
	Locked
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Reforming:
		return "reforming"
	case Locked:
		return "locked"
	}
	return "unknown"
}

const (
	PositionTolerance = 0.1
	RotationTolerance = 10.0

	LockedDrag        = 0.01
	LockedAngularDrag = 0.05

	// ThrowFactor scales the root's point velocity handed to a thrown fragment.
	ThrowFactor = 3.0
	// ReattachDelay is the minimum time between losing a joint and reforming.
	ReattachDelay = 0.1

	FarPull    = 6.0
	LockedPull = 0.5

	FadeDuration  = 0.5
	FlashDuration = 0.5
)
