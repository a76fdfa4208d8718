package cli

import "errors"

// codedError carries a process exit code through the normal error return
// path. Commands wrap errors that must exit with something other than 1
// (the poll timeout exits 2).
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

func exitWithCode(code int, err error) error {
	return &codedError{code: code, err: err}
}

// ExitCode maps a Run error to the process exit status: 0 for nil, the
// embedded code for coded errors, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return 1
}
