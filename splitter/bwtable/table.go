// Package bwtable implements the bandwidth lookup table splitter.go consults
// to price the cache-only and backend-only operating points (spec.md §4.1).
// The table itself is an external collaborator in spec.md's scope ("owned by
// the external table loader"); this package is that loader, with a simple
// in-memory backend and a go.etcd.io/bbolt-backed one for larger pre-baked
// calibration tables.
package bwtable

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Row is one calibration data point: the expected IOPS at a given
// (io_depth, numjobs, split_pct) operating point.
type Row struct {
	IODepth  int    `yaml:"io_depth"`
	NumJobs  int    `yaml:"numjobs"`
	SplitPct int    `yaml:"split_pct"`
	IOPS     uint64 `yaml:"iops"`
}

// fileFormat is the on-disk YAML shape for a human-authored table.
type fileFormat struct {
	Rows []Row `yaml:"rows"`
}

// MemoryTable is a read-only, in-memory bandwidth table. Lookups are total:
// a missing (io_depth, numjobs) returns 0 IOPS (the optimizer's A+B==0 guard
// then falls back to SplitScale, matching spec.md §7's "table is empty"
// policy); a missing split_pct falls back to the row with the closest
// split_pct among exact (io_depth, numjobs) matches.
type MemoryTable struct {
	rows []Row
}

// NewMemoryTable builds a MemoryTable from rows. The table is treated as
// read-only after construction (spec.md §4.1).
func NewMemoryTable(rows []Row) *MemoryTable {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &MemoryTable{rows: cp}
}

// LoadMemoryTableYAML reads a YAML bandwidth table from path.
func LoadMemoryTableYAML(path string) (*MemoryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bwtable: reading %s: %w", path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("bwtable: parsing %s: %w", path, err)
	}
	return NewMemoryTable(ff.Rows), nil
}

// Lookup implements ratio.Table and splitter.BandwidthTable.
func (t *MemoryTable) Lookup(ioDepth, numJobs, splitPct int) uint64 {
	var best *Row
	bestDist := 0
	for i := range t.rows {
		r := &t.rows[i]
		if r.IODepth != ioDepth || r.NumJobs != numJobs {
			continue
		}
		dist := r.SplitPct - splitPct
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = r
			bestDist = dist
		}
	}
	if best == nil {
		return 0
	}
	return best.IOPS
}

// Rows returns a copy of the table's rows, for inspection and export.
func (t *MemoryTable) Rows() []Row {
	cp := make([]Row, len(t.rows))
	copy(cp, t.rows)
	return cp
}
