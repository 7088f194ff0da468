package biclique

import (
	"time"

	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/model"
)

// IterationStats summarizes one iteration of a search.
type IterationStats struct {
	Index           int           `json:"index"`
	DeltaCandidates uint64        `json:"deltaCandidates"`
	NablaCandidates uint64        `json:"nablaCandidates"`
	ForwardTrails   int           `json:"forwardTrails"`
	Comparisons     uint64        `json:"comparisons"`
	Independent     uint64        `json:"independent"`
	Duration        time.Duration `json:"duration"`
}

// Result is the outcome of searching one window.
type Result struct {
	CipherName     string            `json:"cipherName"`
	Window         cipher.Window     `json:"window"`
	Dimension      int               `json:"dimension"`
	Bicliques      []*model.Biclique `json:"bicliques"`
	MaxScore       int               `json:"maxScore"`
	NumDifferences uint64            `json:"numDifferences"`
	Plan           Plan              `json:"plan"`
	Iterations     []IterationStats  `json:"iterations"`
	StoppedEarly   bool              `json:"stoppedEarly"`
	FailedWorkers  int               `json:"failedWorkers"`
	Duration       time.Duration     `json:"duration"`

	// WorkerErrors joins the *WorkerError of every worker that stopped early.
	WorkerErrors error `json:"-"`
}

// Found reports whether at least one biclique survived.
func (r *Result) Found() bool { return len(r.Bicliques) > 0 }

// DeltaCandidates returns the delta candidates processed across iterations.
func (r *Result) DeltaCandidates() uint64 {
	var n uint64
	for _, it := range r.Iterations {
		n += it.DeltaCandidates
	}
	return n
}
