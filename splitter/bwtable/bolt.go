package bwtable

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// bucketName is the single bbolt bucket holding IOPS rows.
var bucketName = []byte("bandwidth")

// BoltTable is a read-only bandwidth table backed by a bbolt database,
// intended for large pre-baked calibration tables where parsing a YAML file
// on every process start is wasteful. Keys are zero-padded
// "io_depth|numjobs|split_pct" strings so a prefix scan visits all rows for
// an operating point in split_pct order; values are little-endian uint64
// IOPS.
type BoltTable struct {
	db *bolt.DB
}

// OpenBoltTable opens path read-only. The caller must call Close.
func OpenBoltTable(path string) (*BoltTable, error) {
	db, err := bolt.Open(path, 0o444, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("bwtable: opening %s: %w", path, err)
	}
	return &BoltTable{db: db}, nil
}

// Close releases the underlying database handle.
func (t *BoltTable) Close() error { return t.db.Close() }

func encodeKey(ioDepth, numJobs, splitPct int) []byte {
	return []byte(fmt.Sprintf("%08d|%08d|%03d", ioDepth, numJobs, splitPct))
}

func encodePrefix(ioDepth, numJobs int) []byte {
	return []byte(fmt.Sprintf("%08d|%08d|", ioDepth, numJobs))
}

// Lookup implements ratio.Table and splitter.BandwidthTable. Same nearest-
// neighbour-on-split_pct contract as MemoryTable; missing (io_depth, numjobs)
// returns 0.
func (t *BoltTable) Lookup(ioDepth, numJobs, splitPct int) uint64 {
	var best uint64
	haveBest := false
	bestDist := 0

	_ = t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		prefix := encodePrefix(ioDepth, numJobs)
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var pct int
			if _, err := fmt.Sscanf(string(k[len(prefix):]), "%d", &pct); err != nil {
				continue
			}
			dist := pct - splitPct
			if dist < 0 {
				dist = -dist
			}
			if !haveBest || dist < bestDist {
				best = binary.LittleEndian.Uint64(v)
				bestDist = dist
				haveBest = true
			}
		}
		return nil
	})

	return best
}

// ConvertYAMLToBolt reads a YAML bandwidth table (see fileFormat) and writes
// it to a fresh bbolt database at dstPath, for cmd table convert.
func ConvertYAMLToBolt(srcYAMLPath, dstPath string) error {
	mt, err := LoadMemoryTableYAML(srcYAMLPath)
	if err != nil {
		return err
	}

	db, err := bolt.Open(dstPath, 0o644, nil)
	if err != nil {
		return fmt.Errorf("bwtable: creating %s: %w", dstPath, err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("bwtable: creating bucket: %w", err)
		}
		for _, row := range mt.Rows() {
			key := encodeKey(row.IODepth, row.NumJobs, row.SplitPct)
			val := make([]byte, 8)
			binary.LittleEndian.PutUint64(val, row.IOPS)
			if err := b.Put(key, val); err != nil {
				return fmt.Errorf("bwtable: writing row %+v: %w", row, err)
			}
		}
		return nil
	})
}
