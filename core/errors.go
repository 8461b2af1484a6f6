package core

import (
	"errors"
	"fmt"
)

// General error codes
const (
	NOERROR   int = 0
	EMISSING  int = 122 // resource does not exist
	EINVALID  int = 123 // validation failed
	EINTERNAL int = 125 // internal error
)

// Error codes of the sample pipeline
const (
	EUNKNOWNCHAR  int = 130 // character not covered by the shaping table
	EEMPTYSEGMENT int = 131 // glyph slice without enough ink
	EDEGENERATE   int = 132 // box edges crossed during tightening
	EMALFORMED    int = 133 // raster inconsistent with its own component labeling
)

// Sentinel errors for the sample pipeline. Errors produced by the engine wrap one
// of these, so clients may test with errors.Is.
var (
	ErrUnknownCharacter = errors.New("unknown character")
	ErrEmptySegment     = errors.New("empty segment")
	ErrDegenerateBox    = errors.New("degenerate box")
	ErrMalformedRaster  = errors.New("malformed raster")
)

func errorText(ecode int) string {
	switch ecode {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case EINTERNAL:
		return "internal error"
	case EUNKNOWNCHAR:
		return ErrUnknownCharacter.Error()
	case EEMPTYSEGMENT:
		return ErrEmptySegment.Error()
	case EDEGENERATE:
		return ErrDegenerateBox.Error()
	case EMALFORMED:
		return ErrMalformedRaster.Error()
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	error
	code int
	msg  string
}

func (e coreError) Unwrap() error {
	return e.error
}

func (e coreError) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.error)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

var _ AppError = coreError{}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
// If err is nil, an error denoting NOERROR is returned.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	msg := fmt.Sprintf(format, v...)
	return coreError{err, code, msg}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message associated with an error.
// If no message is found, it checks StatusCode and returns that message.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{
		errors.New(errorText(code)),
		code,
		fmt.Sprintf(format, v...),
	}
}

// IsFatal reports whether err invalidates a whole generation run instead of a
// single sample. A malformed raster means the rasterizer itself is broken.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMalformedRaster)
}

// UserError formats err for display: its error code followed by its user
// message. Errors without a code are formatted as they are.
func UserError(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return fmt.Sprintf("[%d] %s", e.ErrorCode(), e.UserMessage())
	}
	return err.Error()
}
