package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifica as falhas que um handler devolve ao cliente.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindConfig
	KindInvalidInput
	KindForbidden
	KindNotFound
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInvalidInput:
		return "invalid_input"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// StatusCode devolve o status HTTP correspondente ao tipo de erro.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func ConfigError(message string) *AppError       { return NewError(KindConfig, message) }
func InvalidInputError(message string) *AppError { return NewError(KindInvalidInput, message) }
func ForbiddenError(message string) *AppError    { return NewError(KindForbidden, message) }
func NotFoundError(message string) *AppError     { return NewError(KindNotFound, message) }

func InternalError(message string, err error) *AppError {
	return WrapError(KindInternal, message, err)
}

// KindOf devolve o tipo de um erro; erros sem tipo são internos.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func StatusFor(err error) int {
	return KindOf(err).StatusCode()
}

// PublicMessage é o texto enviado no envelope de erro.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == KindUpstream && appErr.Err != nil {
			return appErr.Error()
		}
		return appErr.Message
	}
	return "Erro interno do servidor"
}
