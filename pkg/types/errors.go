package types

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrActivityNotFound indicates the activity id does not exist.
	ErrActivityNotFound = errors.New("go-activities: activity not found")
	// ErrReplyNotFound indicates the reply id does not exist on the activity.
	ErrReplyNotFound = errors.New("go-activities: reply not found")
	// ErrPermissionDenied indicates the viewer cannot read or mutate the activity.
	ErrPermissionDenied = errors.New("go-activities: permission denied")
	// ErrInvalidAction indicates the verb is not part of the vocabulary.
	ErrInvalidAction = errors.New("go-activities: invalid action")
	// ErrInvalidSource indicates the source is not USER or SYSTEM.
	ErrInvalidSource = errors.New("go-activities: invalid source")
	// ErrInvalidPrivacy indicates the privacy is not PUBLIC or PRIVATE.
	ErrInvalidPrivacy = errors.New("go-activities: invalid privacy")
	// ErrInvalidSubject indicates a malformed subject reference.
	ErrInvalidSubject = errors.New("go-activities: invalid subject reference")
	// ErrSubjectRequired indicates a feed was requested without a subject.
	ErrSubjectRequired = errors.New("go-activities: subject required")
	// ErrUnknownSubjectKind indicates no kind is registered for the type tag.
	ErrUnknownSubjectKind = errors.New("go-activities: unknown subject kind")
	// ErrReplyTextRequired indicates an empty reply.
	ErrReplyTextRequired = errors.New("go-activities: reply text required")
	// ErrReplyTooLong indicates the reply exceeds the maximum length.
	ErrReplyTooLong = errors.New("go-activities: reply text too long")
	// ErrReplyToMismatch indicates reply_to points at a reply of another activity.
	ErrReplyToMismatch = errors.New("go-activities: reply_to must belong to the same activity")
	// ErrGroupNotFound indicates the group reference does not exist.
	ErrGroupNotFound = errors.New("go-activities: group activity not found")
	// ErrActorRequired indicates a mutation was attempted anonymously.
	ErrActorRequired = errors.New("go-activities: actor reference required")
	// ErrUserIDRequired indicates a user feed was requested without a user.
	ErrUserIDRequired = errors.New("go-activities: user id required")
	// ErrActivityIDRequired indicates a missing activity id.
	ErrActivityIDRequired = errors.New("go-activities: activity id required")
	// ErrReplyIDRequired indicates a missing reply id.
	ErrReplyIDRequired = errors.New("go-activities: reply id required")
	// ErrFeatureDisabled indicates the operation is switched off by a feature gate.
	ErrFeatureDisabled = errors.New("go-activities: feature disabled")
	// ErrMissingActivityRepository occurs when no activity repository was supplied.
	ErrMissingActivityRepository = errors.New("go-activities: missing activity repository")
	// ErrMissingSubjectRegistry occurs when no subject registry was supplied.
	ErrMissingSubjectRegistry = errors.New("go-activities: missing subject registry")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-activities: service not ready")
)

const (
	TextCodeActivityNotFound = "ACTIVITY_NOT_FOUND"
	TextCodeReplyNotFound    = "ACTIVITY_REPLY_NOT_FOUND"
	TextCodePermission       = "ACTIVITY_PERMISSION_DENIED"
	TextCodeValidation       = "ACTIVITY_VALIDATION_FAILED"
	TextCodeFeatureDisabled  = "ACTIVITY_FEATURE_DISABLED"
	TextCodeInternal         = "ACTIVITY_INTERNAL"
)

// NotFoundError wraps a not-found sentinel into a go-errors rich error.
func NotFoundError(err error, textCode string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(textCode)
}

// PermissionDeniedError wraps err as a forbidden rich error.
func PermissionDeniedError(err error) error {
	if err == nil {
		err = ErrPermissionDenied
	}
	return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodePermission)
}

// ValidationError wraps err as a bad-request rich error.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidation)
}

// InternalError wraps a storage or resolver failure as an internal rich
// error. Errors that are already rich pass through unchanged.
func InternalError(err error) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeInternal)
}

// FeatureDisabledError wraps a feature gate rejection.
func FeatureDisabledError(feature string) error {
	return goerrors.Wrap(ErrFeatureDisabled, goerrors.CategoryAuthz, ErrFeatureDisabled.Error()+": "+feature).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeFeatureDisabled)
}

// IsNotFound reports whether err is one of the not-found sentinels or a rich
// not-found error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrActivityNotFound) || errors.Is(err, ErrReplyNotFound) {
		return true
	}
	var rich *goerrors.Error
	return goerrors.As(err, &rich) && rich.Category == goerrors.CategoryNotFound
}

// IsPermissionDenied reports whether err denies access.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	var rich *goerrors.Error
	return goerrors.As(err, &rich) && rich.Category == goerrors.CategoryAuthz
}
