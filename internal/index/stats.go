package index

import "sync/atomic"

// counters holds the live atomic counters of one bucket.
type counters struct {
	scannedFiles  atomic.Int64
	deepScans     atomic.Int64
	queries       atomic.Int64
	fallbackScans atomic.Int64
	invalidated   atomic.Int64
}

// Stats is a point-in-time snapshot of a bucket's activity and size.
type Stats struct {
	Dialect         string `json:"dialect"`
	TopLevelEntries int    `json:"toplevelEntries"`
	Definitions     int    `json:"definitions"`
	ScannedFiles    int64  `json:"scannedFiles"`
	DeepScans       int64  `json:"deepScans"`
	Queries         int64  `json:"queries"`
	FallbackScans   int64  `json:"fallbackScans"`
	Invalidated     int64  `json:"invalidated"`
}

// merge adds another snapshot into s for aggregate reporting.
func (s *Stats) merge(other Stats) {
	s.TopLevelEntries += other.TopLevelEntries
	s.Definitions += other.Definitions
	s.ScannedFiles += other.ScannedFiles
	s.DeepScans += other.DeepScans
	s.Queries += other.Queries
	s.FallbackScans += other.FallbackScans
	s.Invalidated += other.Invalidated
}
