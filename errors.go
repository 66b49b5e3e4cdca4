package inkwell

import (
	"errors"
	"fmt"
)

// ConfigError reports a malformed or missing configuration field. It is
// returned before any content processing begins and always aborts the build.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("inkwell: config %s: %s", e.Field, e.Reason)
}

// ParseError reports malformed front matter in a content file.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("inkwell: parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingLayoutError reports a front matter layout reference that does not
// resolve in the layout registry. The build fails rather than falling back
// to a default layout.
type MissingLayoutError struct {
	Source string
	Layout string
}

func (e *MissingLayoutError) Error() string {
	return fmt.Sprintf("inkwell: %s: layout %q is not registered", e.Source, e.Layout)
}

// ErrUnclosedFrontMatter indicates a content file opened a front matter
// block but never closed it.
var ErrUnclosedFrontMatter = errors.New("front matter opening delimiter found but closing delimiter is missing")
