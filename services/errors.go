// Package services holds the business logic of the CRM: sale lifecycle,
// commission calculation, notifications, auditing, dashboards, partner
// onboarding and commission reports. Handlers stay thin and map the
// error types defined here onto HTTP status codes.
package services

import (
	"errors"
	"fmt"
)

// Not-found sentinels, mapped to 404 by the handlers.
var (
	ErrSaleNotFound     = errors.New("venda não encontrada")
	ErrPartnerNotFound  = errors.New("parceiro não encontrado")
	ErrOperatorNotFound = errors.New("operadora não encontrada")
	ErrUserNotFound     = errors.New("utilizador não encontrado")
	ErrReportNotFound   = errors.New("relatório não encontrado")
	ErrAlertNotFound    = errors.New("alerta não encontrado")
)

// ValidationError rejects a request whose payload violates a business
// rule. Mapped to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DuplicateError rejects a value that must be unique. Mapped to 409.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

// InvalidTransitionError rejects a sale status change the state machine
// does not allow. Mapped to 422.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transição de estado inválida: %s -> %s", e.From, e.To)
}

// ForbiddenError rejects an operation the acting user may not perform.
// Mapped to 403.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }
