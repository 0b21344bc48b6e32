package errcode

import (
	"fmt"
)

const (
	NetErrorBase = iota * 1000
	MessageErrorBase
	ConfigErrorBase
)

// ProjectError is the error type returned across package boundaries. Cause
// holds the lower-level error, if any, and is reachable through
// errors.Cause and errors.Unwrap.
type ProjectError struct {
	Module string
	Code   int
	Desc   string
	Cause  error
}

func (e ProjectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("module: %s, global errcode: %v,  desc: %s, cause: %v", e.Module, e.Code, e.Desc, e.Cause)
	}
	return fmt.Sprintf("module: %s, global errcode: %v,  desc: %s", e.Module, e.Code, e.Desc)
}

func (e ProjectError) Unwrap() error {
	return e.Cause
}

func getCodeAndName(errCode fmt.Stringer) (int, string) {
	code := 0
	name := ""

	switch t := errCode.(type) {
	case NetErr:
		code = int(t)
		name = "net"
	case MessageErr:
		code = int(t)
		name = "message"
	case ConfigErr:
		code = int(t)
		name = "conf"
	default:
	}

	return code, name
}

// IsErrorCode reports whether err, or the error it wraps, is a ProjectError
// carrying errCode.
func IsErrorCode(err error, errCode fmt.Stringer) bool {
	e, ok := rootProjectError(err)
	icode, _ := getCodeAndName(errCode)
	return ok && icode == e.Code
}

func New(errCode fmt.Stringer) error {
	return NewWithCause(errCode, nil)
}

func NewWithCause(errCode fmt.Stringer, cause error) error {
	code, name := getCodeAndName(errCode)

	return ProjectError{
		Module: name,
		Code:   code,
		Desc:   errCode.String(),
		Cause:  cause,
	}
}

// rootProjectError walks the Cause/Unwrap chain looking for a ProjectError.
// Both pkg/errors wrappers and standard %w wrappers are followed.
func rootProjectError(err error) (ProjectError, bool) {
	for err != nil {
		if e, ok := err.(ProjectError); ok {
			return e, true
		}
		switch t := err.(type) {
		case interface{ Cause() error }:
			err = t.Cause()
		case interface{ Unwrap() error }:
			err = t.Unwrap()
		default:
			return ProjectError{}, false
		}
	}
	return ProjectError{}, false
}
