package model

import "time"

// Datasets is the immutable result of one fetch cycle.
type Datasets struct {
	Protocols     []Protocol
	Pools         []Pool
	AdapterPaths  []string
	TreeTruncated bool
	AdaptersErr   error // non-nil when the repository listing failed and coverage relies on pools only
	FetchedAt     time.Time
}
