package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyCompletion is returned when the model answers with no text at all.
var ErrEmptyCompletion = errors.New("empty completion from model")

const previewLimit = 1500

// ValidationError reports the first field of a parsed value that does not match its shape.
type ValidationError struct {
	Path     string
	Expected string
	Actual   string
	Message  string
}

func (e *ValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("validation failed at %s: expected %s, got %s", path, e.Expected, e.Actual)
}

// StructuredOutputError is returned when every recovery strategy failed to produce a
// schema-valid value.
type StructuredOutputError struct {
	TextLength int
	Preview    string
	Errors     []error
	Attempts   []RecoveryAttempt
}

func newStructuredOutputError(raw string, attempts []RecoveryAttempt, errs ...error) *StructuredOutputError {
	return &StructuredOutputError{
		TextLength: len(raw),
		Preview:    preview(raw),
		Errors:     errs,
		Attempts:   attempts,
	}
}

func (e *StructuredOutputError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("model returned unparseable output (%d bytes): %s", e.TextLength, strings.Join(msgs, "; "))
}

func (e *StructuredOutputError) Unwrap() []error {
	return e.Errors
}

// UserMessage is the text shown to end users instead of parser details.
func (e *StructuredOutputError) UserMessage() string {
	return "ИИ вернул некорректный ответ. Пожалуйста, попробуйте еще раз."
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit])
}

// UpstreamError wraps a failure of the model provider with the HTTP status it maps to.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm upstream error (status %d): %v", e.Status, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UserMessage returns the localized explanation for the status.
func (e *UpstreamError) UserMessage() string {
	switch e.Status {
	case http.StatusTooManyRequests:
		return "Слишком много запросов к ИИ-сервису. Пожалуйста, подождите немного и попробуйте снова."
	case http.StatusUnauthorized:
		return "Ошибка авторизации ИИ-сервиса. Проверьте ключ доступа."
	case http.StatusNotFound:
		return "Модель не найдена. Убедитесь, что используется правильная модель для вашего типа доступа."
	case http.StatusUnprocessableEntity:
		return "Некорректные параметры запроса к ИИ-сервису."
	default:
		return fmt.Sprintf("Ошибка ИИ-сервиса (%d)", e.Status)
	}
}

// Is5xx reports whether the failure is a server-side condition.
func (e *UpstreamError) Is5xx() bool {
	return e.Status >= http.StatusInternalServerError
}

// AsUpstream wraps err into an UpstreamError unless it already is one.
func AsUpstream(err error) *UpstreamError {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up
	}
	return &UpstreamError{Status: http.StatusInternalServerError, Err: err}
}
