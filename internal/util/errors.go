package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNoActiveOrganization = errors.New("user does not belong to an active organization")
	ErrEmptyQuestionSet     = errors.New("no questions found for this module")
	ErrModuleNotFound       = errors.New("module not found")
	ErrModuleNotPublished   = errors.New("module not published")
	ErrCertificateNotFound  = errors.New("certificate not found")
	ErrEvaluationNotFound   = errors.New("evaluation not found")
)
