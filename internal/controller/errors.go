package controller

import "errors"

var (
	ErrMissingCollaborator = errors.New("missing collaborator")
	ErrInvalidConfig       = errors.New("invalid controller config")
)
