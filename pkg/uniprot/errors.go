package uniprot

import "fmt"

// DecodeError marks malformed input: broken XML, bad UTF-8, or invalid
// integer attributes. It is fatal for the file being parsed.
type DecodeError struct {
	Msg string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Msg, e.Err)
	}
	return "decode: " + e.Msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErrorf(err error, format string, args ...interface{}) error {
	return &DecodeError{Msg: fmt.Sprintf(format, args...), Err: err}
}
