package model

import "time"

// MaxPatternVectorBytes bounds the opaque feature vector accepted with a
// cheat detection report. Vectors larger than this are truncated on ingest.
const MaxPatternVectorBytes = 4096

// ScoreRecord is an immutable append-only fact recording a single score
// submission. Records are never mutated or deleted while the player exists.
type ScoreRecord struct {
	PlayerID   PlayerID
	Score      int
	RecordedAt time.Time
}

// MovementPattern is an immutable detection fact. PatternVector is an opaque
// feature buffer produced by the upstream detection model; the hub stores and
// routes it without interpreting its contents.
type MovementPattern struct {
	PlayerID         PlayerID
	PatternVector    []byte
	CheatProbability float64
	DetectedAt       time.Time
}

// BanRecord records an automated ban. At most one active ban record exists
// per player at any time; PlayerStore.AppendBanRecord enforces this.
type BanRecord struct {
	PlayerID PlayerID
	Reason   string
	BannedAt time.Time
	UnbanAt  time.Time
}
