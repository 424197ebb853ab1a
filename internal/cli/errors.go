package cli

import (
	"errors"
	"io"

	"github.com/charmbracelet/fang"
)

// reportedError marks a failure the command already printed to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// ErrorHandler prints command errors through fang, skipping ones already shown
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	var r *reportedError
	if errors.As(err, &r) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
