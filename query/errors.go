package query

import (
	"errors"

	"github.com/goliatone/go-activities/pkg/types"
)

func boundaryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrActivityNotFound):
		return types.NotFoundError(err, types.TextCodeActivityNotFound)
	case errors.Is(err, types.ErrReplyNotFound):
		return types.NotFoundError(err, types.TextCodeReplyNotFound)
	case errors.Is(err, types.ErrSubjectRequired),
		errors.Is(err, types.ErrInvalidSubject),
		errors.Is(err, types.ErrActivityIDRequired),
		errors.Is(err, types.ErrReplyIDRequired):
		return types.ValidationError(err)
	default:
		return types.InternalError(err)
	}
}
