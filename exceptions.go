package vmwiz

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrBackendUnreachable error = errors.New("backend unreachable")
	ErrNoRedirectTarget   error = errors.New("unauthorized response without redirect target")
	ErrInvalidMethod      error = errors.New("invalid request method")
	ErrInvalidConfig      error = errors.New("invalid configuration")
	ErrRouteNotFound      error = errors.New("route not found")
	ErrDuplicateRoute     error = errors.New("register a duplicate route path error")
	ErrEmptyRoutePath     error = errors.New("register a empty route path error")
	ErrResponseRead       error = errors.New("read response to buffer error")
	ErrUnexpectedStatus   error = errors.New("unexpected response status")
	ErrRequestBody        error = errors.New("encode request body error")
	ErrSessionExpired     error = errors.New("session expired")
)

// BackendError the backend could not be reached or the transfer failed
type BackendError struct {
	Method string
	URL    string
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("request %s %s error: %s", e.Method, e.URL, e.Err.Error())
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnreachable
}

// UnauthorizedError a 401 whose body carries no redirectUrl
type UnauthorizedError struct {
	Status int
	Body   []byte
}

func (e *UnauthorizedError) Error() string {
	return "status " + strconv.Itoa(e.Status) + ": " + ErrNoRedirectTarget.Error()
}

func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrNoRedirectTarget
}

// StatusError a response status that the typed decoders do not accept
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return ErrUnexpectedStatus.Error() + " " + strconv.Itoa(e.Status) + ": " + string(e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
