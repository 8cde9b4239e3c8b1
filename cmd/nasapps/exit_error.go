// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/stumpfworks/nasapps/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
// An ExitError without Err is silent: the command already reported the failure.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// failed returns a silent ExitFailure.
func failed() *ExitError {
	return &ExitError{Code: types.ExitFailure}
}
