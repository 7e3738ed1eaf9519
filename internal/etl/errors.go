package etl

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers classify pipeline failures: load and write errors abort the
// run with a non-zero exit, render errors are recorded and reported but never
// block the report artifacts.
var (
	ErrLoad   = errors.New("load error")
	ErrWrite  = errors.New("write error")
	ErrRender = errors.New("render error")
)

// Wrap tags err with a marker and stage context for later classification.
func Wrap(marker error, stage, operation string, err error) error {
	detail := stage
	if operation = strings.TrimSpace(operation); operation != "" {
		detail += ": " + operation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort the invocation.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrRender)
}
