package command

import (
	"errors"

	"github.com/goliatone/go-activities/pkg/types"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrActivityIDRequired indicates the target activity id is missing.
	ErrActivityIDRequired = types.ErrActivityIDRequired
	// ErrReplyIDRequired indicates the target reply id is missing.
	ErrReplyIDRequired = types.ErrReplyIDRequired
	// ErrShareSubjectRequired indicates a share toggle without a subject.
	ErrShareSubjectRequired = errors.New("go-activities: share requires a subject")
	// ErrRepositoryRequired indicates the command was built without a repository.
	ErrRepositoryRequired = types.ErrMissingActivityRepository
)

// boundaryError translates repository sentinels into rich errors so transports
// can map them onto status codes. Errors that are already rich pass through.
func boundaryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrActivityNotFound):
		return types.NotFoundError(err, types.TextCodeActivityNotFound)
	case errors.Is(err, types.ErrReplyNotFound):
		return types.NotFoundError(err, types.TextCodeReplyNotFound)
	case errors.Is(err, types.ErrInvalidAction),
		errors.Is(err, types.ErrInvalidSource),
		errors.Is(err, types.ErrInvalidPrivacy),
		errors.Is(err, types.ErrInvalidSubject),
		errors.Is(err, types.ErrReplyTextRequired),
		errors.Is(err, types.ErrReplyTooLong),
		errors.Is(err, types.ErrReplyToMismatch),
		errors.Is(err, types.ErrGroupNotFound),
		errors.Is(err, types.ErrActorRequired),
		errors.Is(err, types.ErrActivityIDRequired),
		errors.Is(err, types.ErrReplyIDRequired),
		errors.Is(err, ErrShareSubjectRequired):
		return types.ValidationError(err)
	default:
		return types.InternalError(err)
	}
}
