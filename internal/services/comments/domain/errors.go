package domain

import (
	perr "agora/internal/platform/errors"
)

// Reason codes carried on comment errors
// values are stable wire identifiers
const (
	ReasonNotAllowed       = "not_allowed"
	ReasonCommentsDisabled = "comments_disabled"
	ReasonMalformedInput   = perr.ReasonMalformedInput
	ReasonParentDeleted    = "parent_deleted"
	ReasonParentIsReply    = "parent_is_reply"
	ReasonNotFound         = "not_found"
	ReasonAlreadyDeleted   = "already_deleted"
	ReasonStorageFailure   = "storage_failure"
	ReasonInvalidArgument  = "invalid_argument"
	ReasonMalformedRow     = "malformed_row"
)

// NotAllowed reports a caller without the needed capability
func NotAllowed(msg string) error {
	return perr.Reasoned(perr.ErrorCodeForbidden, ReasonNotAllowed, msg)
}

// CommentsDisabled reports a page where comments cannot be shown or posted
func CommentsDisabled(msg string) error {
	return perr.Reasoned(perr.ErrorCodeForbidden, ReasonCommentsDisabled, msg)
}

// MalformedInput reports an empty body or a missing reply target
func MalformedInput(msg string) error {
	return perr.Reasoned(perr.ErrorCodeValidation, ReasonMalformedInput, msg)
}

// ParentDeleted reports a reply aimed at a soft deleted comment
func ParentDeleted(msg string) error {
	return perr.Reasoned(perr.ErrorCodeValidation, ReasonParentDeleted, msg)
}

// ParentIsReply reports a reply aimed at another reply
func ParentIsReply(msg string) error {
	return perr.Reasoned(perr.ErrorCodeValidation, ReasonParentIsReply, msg)
}

// NotFound reports a missing comment or page
func NotFound(msg string) error {
	return perr.Reasoned(perr.ErrorCodeNotFound, ReasonNotFound, msg)
}

// AlreadyDeleted reports a second soft delete of the same comment
func AlreadyDeleted(msg string) error {
	return perr.Reasoned(perr.ErrorCodeConflict, ReasonAlreadyDeleted, msg)
}

// InvalidArgument reports an identifier that can never resolve
func InvalidArgument(msg string) error {
	return perr.Reasoned(perr.ErrorCodeInvalidArgument, ReasonInvalidArgument, msg)
}

// MalformedRow reports a stored row missing an expected column
func MalformedRow(msg string) error {
	return perr.Reasoned(perr.ErrorCodeDB, ReasonMalformedRow, msg)
}

// StorageFailure wraps a store error; a nil err stays nil
// errors that already carry a reason pass through untouched
func StorageFailure(err error, msg string) error {
	if err == nil {
		return nil
	}
	if perr.ReasonOf(err) != "" {
		return err
	}
	code := perr.ErrorCodeDB
	if perr.IsRetryable(err) {
		code = perr.ErrorCodeUnavailable
	}
	return perr.WithReason(perr.Wrap(err, code, msg), ReasonStorageFailure)
}

// Is reports whether err carries the reason code
func Is(err error, reason string) bool { return perr.IsReason(err, reason) }
