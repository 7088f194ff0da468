package biclique

// Phase identifies the two halves of an iteration.
type Phase int

const (
	// DeltaPhase builds forward trails.
	DeltaPhase Phase = iota
	// NablaPhase builds backward trails and tests them against the forward ones.
	NablaPhase
)

func (p Phase) String() string {
	switch p {
	case DeltaPhase:
		return "delta"
	case NablaPhase:
		return "nabla"
	default:
		return "unknown"
	}
}
