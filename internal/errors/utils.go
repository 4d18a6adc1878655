package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a FolioError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *FolioError {
	if err == nil {
		return nil
	}

	var fe *FolioError
	if errors.As(err, &fe) {
		return &FolioError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       fe,
			Context:     fe.Context,
			Component:   fe.Component,
			Path:        fe.Path,
			Recoverable: fe.Recoverable,
		}
	}

	return &FolioError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeNetwork,
	}
}

// WrapIO wraps an error as an I/O error for the given path.
func WrapIO(err error, code, message, path string) *FolioError {
	fe := Wrap(err, ErrorTypeIO, code, message)
	if fe != nil {
		fe.Path = path
	}
	return fe
}

// WrapNetwork wraps an error as a network error.
func WrapNetwork(err error, code, message string) *FolioError {
	return Wrap(err, ErrorTypeNetwork, code, message)
}

// WrapContent wraps an error as a content document error for the given path.
func WrapContent(err error, code, message, path string) *FolioError {
	fe := Wrap(err, ErrorTypeContent, code, message)
	if fe != nil {
		fe.Path = path
	}
	return fe
}
