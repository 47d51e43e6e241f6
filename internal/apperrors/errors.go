package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups failures by how the UI should surface them
type Kind int

const (
	KindInternal Kind = iota
	KindNetwork
	KindHTTP
	KindEmpty
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindEmpty:
		return "empty"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Fallback messages shown when the upstream gave no detail
const (
	MsgConnection = "Connection error, please try again"
	MsgGeneric    = "Something went wrong, please try again"
)

// Error is a classified failure. Status and Detail are only set for KindHTTP.
type Error struct {
	Kind    Kind
	Status  int
	Detail  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTP && e.Err != nil:
		return fmt.Sprintf("[%s %d] %s: %v", e.Kind, e.Status, e.Message, e.Err)
	case e.Kind == KindHTTP:
		return fmt.Sprintf("[%s %d] %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an existing error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Network wraps a transport failure
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: MsgConnection, Err: err}
}

// HTTP builds an error for a non-2xx upstream response
func HTTP(status int, detail string) *Error {
	msg := detail
	if msg == "" {
		msg = MsgGeneric
	}
	return &Error{Kind: KindHTTP, Status: status, Detail: detail, Message: msg}
}

// KindOf returns the kind of err, KindInternal when it is not classified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// UserMessage is the text shown inline for err
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return MsgGeneric
	}
	switch e.Kind {
	case KindNetwork:
		return MsgConnection
	case KindHTTP:
		if e.Detail != "" {
			return e.Detail
		}
		return MsgGeneric
	}
	if e.Message != "" {
		return e.Message
	}
	return MsgGeneric
}

// StatusCode maps err to the status the gateway answers with
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNetwork:
		return http.StatusBadGateway
	case KindHTTP:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	case KindEmpty:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// IsStatus reports whether err is an upstream response with the given status
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindHTTP && e.Status == status
}
