package domain

import "errors"

var (
	// ErrDocumentRead marks a case folder whose documents could not be read or
	// yielded no extractable text. The case is skipped; the batch continues.
	ErrDocumentRead = errors.New("document unreadable")

	// ErrModelUnavailable marks a network, auth, or server-side failure of a
	// model backend. The (case, model) pair is skipped; the batch continues.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelTimeout marks a model call that exceeded its deadline.
	ErrModelTimeout = errors.New("model call timed out")

	ErrNotFound        = errors.New("resource not found")
	ErrUnknownTask     = errors.New("unknown extraction task")
	ErrUnknownProvider = errors.New("unknown model provider")
)
