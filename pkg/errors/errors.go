package errors

import "errors"

// Error codes shared by the domain packages.
const (
	CodeInvalidInput = "invalid_input"
	CodeNotFound     = "not_found"
	CodeEmbedding    = "embedding_error"
	CodeVector       = "vector_error"
	CodeStorage      = "storage_error"
	CodeLLM          = "llm_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return Code(err) == code
}

// Code returns the outermost AppError code, or "" for foreign errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
