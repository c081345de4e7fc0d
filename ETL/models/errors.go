package models

import (
	"fmt"
)

// AuthError - ошибка аутентификации на продакшн-сервере.
// Status равен 0, если ответ не был получен.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to authenticate (status %d): %v", e.Status, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DataReadError - ошибка чтения из локальной базы данных.
// Не фатальна: после неё читается JSON-снимок.
type DataReadError struct {
	Category string
	Err      error
}

func (e *DataReadError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("failed to read from database: %v", e.Err)
	}
	return fmt.Sprintf("failed to read %s from database: %v", e.Category, e.Err)
}

func (e *DataReadError) Unwrap() error { return e.Err }

// FallbackReadError - ошибка чтения JSON-снимка
type FallbackReadError struct {
	Path string
	Err  error
}

func (e *FallbackReadError) Error() string {
	return fmt.Sprintf("failed to read snapshot %s: %v", e.Path, e.Err)
}

func (e *FallbackReadError) Unwrap() error { return e.Err }

// EndpointError - сбой запроса импорта категории на уровне HTTP:
// статус не 2xx, таймаут или ошибка транспорта
type EndpointError struct {
	Category string
	Status   int
	Timeout  bool
	Err      error
}

func (e *EndpointError) Error() string {
	switch {
	case e.Timeout:
		return "Request timeout"
	case e.Status != 0:
		return fmt.Sprintf("Status %d", e.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

func (e *EndpointError) Unwrap() error { return e.Err }
