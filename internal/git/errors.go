package git

import "errors"

var (
	ErrNothingToCompare   = errors.New("git reference was null")
	ErrTargetNotFound     = errors.New("selected reference does not exist in repository")
	ErrHeadNotFound       = errors.New("repository HEAD could not be found")
	ErrRepositoryNotFound = errors.New("git repository not found")
)
