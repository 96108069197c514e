package template

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVars reports variables that are not a string-keyed mapping of
	// supported values.
	ErrInvalidVars = errors.New("template: invalid vars")
	// ErrTemplateNotFound reports a template file that cannot be located.
	ErrTemplateNotFound = errors.New("template: template not found")
)

// NotFoundError carries the template name and the resolved path, which is
// empty when no theme or plugin candidate exists.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template: template file %q does not exist", e.Path)
}

// Is reports whether the target is ErrTemplateNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}
