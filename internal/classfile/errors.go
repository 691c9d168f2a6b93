package classfile

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic   = errors.New("not a class file")
	ErrMalformed  = errors.New("malformed class file")
	ErrUnknownTag = errors.New("unknown constant tag")
)

// DecodeError describes where decoding stopped.
type DecodeError struct {
	Kind   error
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s at offset %d", e.Kind.Error(), e.Offset)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Kind.Error(), e.Offset, e.Msg)
}

func (e *DecodeError) Unwrap() error { return e.Kind }

func malformedf(offset int, format string, args ...any) error {
	return &DecodeError{Kind: ErrMalformed, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
