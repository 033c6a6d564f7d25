package run

import (
	"chainbench/domain/core"
)

// Manifest describes one benchmark invocation: where the keys came from and
// how the shuffle was seeded, so a stored run can be related back to its input.
type Manifest struct {
	RunID     core.RunID     `json:"run_id" db:"run_id"`
	Source    string         `json:"source" db:"source"`
	Limit     int            `json:"limit" db:"key_limit"`
	Seed      int64          `json:"seed" db:"seed"`
	CreatedAt core.Timestamp `json:"created_at" db:"-"`
}

// NewManifest creates a manifest with a fresh run ID stamped at ts.
func NewManifest(source string, limit int, seed int64, ts core.Timestamp) *Manifest {
	return &Manifest{
		RunID:     core.NewRunID(),
		Source:    source,
		Limit:     limit,
		Seed:      seed,
		CreatedAt: ts,
	}
}
