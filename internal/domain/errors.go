package domain

import "errors"

// Storage-level errors. Both repository implementations translate their
// backend's failures into these so callers never match on driver errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrAnalysisTerminal = errors.New("analysis already reached a terminal state")
)
