package template

import "errors"

// Template module errors.
var (
	ErrTemplateNotFound = errors.New("template not found")
)
