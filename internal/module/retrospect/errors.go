package retrospect

import "errors"

// Retrospect module errors.
var (
	ErrRetrospectNotFound = errors.New("retrospect not found")
	ErrAnalysisNotFound   = errors.New("weekly analysis not found")
	ErrNoRetrospects      = errors.New("no retrospects in the requested period")
)
