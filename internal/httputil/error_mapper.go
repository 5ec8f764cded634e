// Package httputil translates domain failures into HTTP responses.
package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

// HTTPErrorInfo is the status and client-facing text for one error.  Kind is
// the short label written to the "error" field of the response body;
// Unexpected marks errors whose detail must only be logged.
type HTTPErrorInfo struct {
	Status     int
	Message    string
	Kind       string
	Unexpected bool
}

// ErrorMapping binds a sentinel to a status and label.
type ErrorMapping struct {
	Error  error
	Status int
	Kind   string
}

// ErrorMapper maps domain errors to HTTP status codes and messages.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping adds a mapping.  Mappings are tried in insertion order.
func (m *ErrorMapper) WithMapping(err error, status int, kind string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Kind: kind})
	return m
}

// WithDefault sets the status and message for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// Map converts err into status and message.  A typed repository error keeps
// its own message; anything unmatched gets the default, generic message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}
	for _, mp := range m.mappings {
		if errors.Is(err, mp.Error) {
			return HTTPErrorInfo{Status: mp.Status, Message: messageOf(err, mp.Error), Kind: mp.Kind}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request timeout", Kind: "unavailable"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled", Kind: "unavailable"}
	}
	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage, Kind: "unexpected", Unexpected: true}
}

func messageOf(err, sentinel error) string {
	var typed *repository.Error
	if errors.As(err, &typed) && typed.Message != "" {
		return typed.Message
	}
	return sentinel.Error()
}

// DomainMapper is the mapper for the repository failure taxonomy.
func DomainMapper() *ErrorMapper {
	return NewErrorMapper().
		WithMapping(repository.ErrNotFound, http.StatusNotFound, "not_found").
		WithMapping(repository.ErrConflict, http.StatusConflict, "conflict").
		WithMapping(repository.ErrReferentialConflict, http.StatusBadRequest, "referential_conflict").
		WithMapping(repository.ErrValidation, http.StatusBadRequest, "validation_failed").
		WithMapping(repository.ErrAuthentication, http.StatusUnauthorized, "authentication_failed").
		WithMapping(repository.ErrUnavailable, http.StatusServiceUnavailable, "unavailable")
}
