package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates the failure classes of the settlement engine.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindInsufficientFunds
	KindNoActiveShift
	KindShiftAlreadyOpen
	KindReconciliation
	KindPersistence
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNoActiveShift:
		return "no_active_shift"
	case KindShiftAlreadyOpen:
		return "shift_already_open"
	case KindReconciliation:
		return "reconciliation"
	case KindPersistence:
		return "persistence"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

const (
	categoryDatos        = "datos inválidos"
	categoryPago         = "pago insuficiente"
	categoryCajaCerrada  = "caja no abierta"
	categoryCajaAbierta  = "caja ya abierta"
	categoryPedido       = "pedido ya procesado"
	categoryFallo        = "fallo de comunicación"
	categoryVerificacion = "requiere verificación"
	categoryNoEncontrado = "no encontrado"
)

// Error is the domain error carried through every layer. Msg is safe to show
// to the operator; Err keeps the underlying cause for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
	// NeedsVerification is set when the outcome is ambiguous: the external
	// store accepted a write but it could not be proven to have applied.
	NeedsVerification bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Category returns the operator-facing message category for the error.
func (e *Error) Category() string {
	if e.NeedsVerification {
		return categoryVerificacion
	}
	switch e.Kind {
	case KindValidation:
		return categoryDatos
	case KindInsufficientFunds:
		return categoryPago
	case KindNoActiveShift:
		return categoryCajaCerrada
	case KindShiftAlreadyOpen:
		return categoryCajaAbierta
	case KindReconciliation:
		return categoryPedido
	case KindNotFound:
		return categoryNoEncontrado
	default:
		return categoryFallo
	}
}

// HTTPStatus maps the error to the response status used by the handlers.
func (e *Error) HTTPStatus() int {
	if e.NeedsVerification {
		return http.StatusBadGateway
	}
	switch e.Kind {
	case KindValidation, KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case KindNoActiveShift, KindShiftAlreadyOpen, KindReconciliation:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

func InsufficientFunds(msg string) *Error { return &Error{Kind: KindInsufficientFunds, Msg: msg} }

func NoActiveShift() *Error {
	return &Error{Kind: KindNoActiveShift, Msg: "No hay caja abierta"}
}

func ShiftAlreadyOpen() *Error {
	return &Error{Kind: KindShiftAlreadyOpen, Msg: "Ya existe una caja abierta"}
}

func Reconciliation(msg string, cause error) *Error {
	return &Error{Kind: KindReconciliation, Msg: msg, Err: cause}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// Persistence wraps a failed or timed-out store call.
func Persistence(op string, cause error) *Error {
	msg := "Fallo de comunicación con el almacén de datos"
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "Tiempo de espera agotado con el almacén de datos"
	}
	return &Error{Kind: KindPersistence, Msg: msg, Err: fmt.Errorf("%s: %w", op, cause)}
}

// Ambiguous is a PersistenceError whose outcome must be verified by a human.
func Ambiguous(msg string, cause error) *Error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: cause, NeedsVerification: true}
}

// As extracts the domain error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries a domain error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
