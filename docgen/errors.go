package docgen

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines document generation error kinds.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindImageDecode ErrorKind = "image_decode"
	KindRender      ErrorKind = "render"
	KindUnsupported ErrorKind = "unsupported"
	KindNotFound    ErrorKind = "not_found"
	KindTimeout     ErrorKind = "timeout"
	KindCanceled    ErrorKind = "canceled"
	KindInternal    ErrorKind = "internal"
)

// Error wraps errors with a kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new document error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// ValidationError is returned when input fails validation before rendering.
// Fields maps the offending field to its user facing message.
type ValidationError struct {
	Fields map[string]string
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var docErr *Error
	if errors.As(err, &docErr) && docErr.Msg != "" {
		msg = docErr.Msg
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return errorslib.New(valErr.Msg, errorslib.CategoryValidation).WithTextCode("validation")
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindImageDecode:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("image_decode")
	case KindRender:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("render")
	case KindUnsupported:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("unsupported")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}

	var docErr *Error
	if errors.As(err, &docErr) {
		return docErr.Kind
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		if kind := ErrorKind(ge.TextCode); kind.known() {
			return kind
		}
		switch ge.Category {
		case errorslib.CategoryValidation:
			return KindValidation
		case errorslib.CategoryNotFound:
			return KindNotFound
		}
	}

	return KindInternal
}

// IsUnsupported reports whether err signals an environment that cannot
// produce the requested format.
func IsUnsupported(err error) bool {
	return KindFromError(err) == KindUnsupported
}

func (k ErrorKind) known() bool {
	switch k {
	case KindValidation, KindImageDecode, KindRender, KindUnsupported,
		KindNotFound, KindTimeout, KindCanceled, KindInternal:
		return true
	}
	return false
}
