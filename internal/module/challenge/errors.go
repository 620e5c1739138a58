package challenge

import "errors"

// Challenge module errors.
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrPlanNotFound      = errors.New("plan not found")
)
