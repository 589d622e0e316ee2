package services

import "errors"

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified, client-safe failure. Code is the numeric API code
// carried in the response envelope.
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches errors by code, so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code int, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Sentinel failures shared by the services.
var (
	ErrUnauthenticated    = newError(KindUnauthenticated, 40100, "authentication required")
	ErrInvalidToken       = newError(KindUnauthenticated, 40101, "invalid or expired token")
	ErrInvalidCredentials = newError(KindUnauthenticated, 40102, "invalid email or password")

	ErrForbidden = newError(KindForbidden, 40300, "not allowed to perform this action")

	ErrArticleNotFound  = newError(KindNotFound, 40401, "article not found")
	ErrCommentNotFound  = newError(KindNotFound, 40402, "comment not found")
	ErrPollNotFound     = newError(KindNotFound, 40403, "poll not found")
	ErrUserNotFound     = newError(KindNotFound, 40404, "user not found")
	ErrQuestionNotFound = newError(KindNotFound, 40405, "question not found")

	ErrInvalidOption   = newError(KindValidation, 40001, "option index out of range")
	ErrInvalidReaction = newError(KindValidation, 40002, "unknown reaction type")
	ErrNestedReply     = newError(KindValidation, 40003, "replies can only target a root comment")

	ErrAlreadyVoted = newError(KindConflict, 40901, "you have already voted in this poll")
	ErrPollClosed   = newError(KindConflict, 40902, "poll is closed")
	ErrUserExists   = newError(KindConflict, 40903, "user with this email or username already exists")
)

// Validation builds a request validation failure with a custom message.
func Validation(msg string) *Error {
	return newError(KindValidation, 40000, msg)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
