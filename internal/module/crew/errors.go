package crew

import "errors"

// Crew module errors.
var (
	ErrCrewNotFound       = errors.New("crew not found")
	ErrCrewNameTaken      = errors.New("crew name already taken")
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrMembershipExists is returned by request-join when any
	// membership already exists for the (user, crew) pair.
	ErrMembershipExists = errors.New("membership already exists")

	// ErrAlreadyMember is returned by join on an ACCEPTED membership.
	ErrAlreadyMember = errors.New("already an accepted member")

	// ErrJoinRejected is returned by join when a REJECTED membership
	// exists; rejected users cannot re-join on their own.
	ErrJoinRejected = errors.New("join request was rejected")

	// ErrNotPending is returned by reject on a non-PENDING membership.
	ErrNotPending = errors.New("membership is not pending")

	// ErrCreatorOnly is returned when an operation requires the crew
	// CREATOR role.
	ErrCreatorOnly = errors.New("crew creator role required")
)
