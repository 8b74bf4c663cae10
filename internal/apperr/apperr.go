// Package apperr defines the error taxonomy shared by the services and the
// HTTP boundary. Every failure carries a stable machine-checkable kind plus a
// human-readable message; the boundary maps kinds to transport status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure. Kinds are terminal for the current
// operation; nothing in the services retries on them.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFoundUser
	KindNotFoundChatRoom
	KindNotFoundChat
	KindAccessDenied
	KindInvalidArgument
	KindDuplicate
	KindUnauthenticated
)

// String returns the stable code exposed to API clients.
func (k Kind) String() string {
	switch k {
	case KindNotFoundUser:
		return "NOT_FOUND_USER"
	case KindNotFoundChatRoom:
		return "NOT_FOUND_CHATROOM"
	case KindNotFoundChat:
		return "NOT_FOUND_CHAT"
	case KindAccessDenied:
		return "ACCESS_DENIED"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindDuplicate:
		return "DUPLICATE"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// Error is a kind-tagged error. Two Errors match under errors.Is when their
// kinds are equal, so callers can test against the exported sentinels below
// without caring about the message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	NotFoundUser     = &Error{Kind: KindNotFoundUser, Msg: "user not found"}
	NotFoundChatRoom = &Error{Kind: KindNotFoundChatRoom, Msg: "chat room not found"}
	NotFoundChat     = &Error{Kind: KindNotFoundChat, Msg: "chat not found"}
	AccessDenied     = &Error{Kind: KindAccessDenied, Msg: "access denied"}
	InvalidArgument  = &Error{Kind: KindInvalidArgument, Msg: "invalid argument"}
	Duplicate        = &Error{Kind: KindDuplicate, Msg: "duplicate resource"}
	Unauthenticated  = &Error{Kind: KindUnauthenticated, Msg: "authentication required"}
)

// New creates an error of the given kind with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, unwrapping as needed.
// Returns KindUnknown for nil or untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
