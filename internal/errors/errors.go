package errors

import (
	stderrors "errors"
	"fmt"
)

// Códigos de error de la aplicación. El primer dígito agrupa por etapa.
const (
	CodeInvalidInput        = 20000
	CodeSettings            = 30000
	CodeNoContent           = 40001
	CodeColumnNotFound      = 40002
	CodeNoValidValues       = 40003
	CodeDatabase            = 50000
	CodeRefundTransport     = 60001
	CodeRefundStatus        = 60002
	CodeLockWait            = 60003
	CodeAuthInvalid         = 60004
	CodeEndpointUnavailable = 60005
)

// AppError representa un error de aplicación con código y contexto
type AppError struct {
	Code      int                    `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Internal  error                  `json:"-"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Retryable bool                   `json:"retryable"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is compara por código, así errors.Is(err, ErrNoContent) funciona con
// cualquier instancia creada por el constructor correspondiente.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAppError crea un nuevo error de aplicación
func NewAppError(code int, message string, internal error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Internal:  internal,
		Metadata:  make(map[string]interface{}),
		Retryable: false,
	}
}

// WithDetails agrega detalles adicionales al error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithMetadata agrega metadata al error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithRetryable marca el error como reintentable
func (e *AppError) WithRetryable(retryable bool) *AppError {
	e.Retryable = retryable
	return e
}

// Errores de referencia para errors.Is
var (
	ErrNoContent           = &AppError{Code: CodeNoContent, Message: "Excel 檔案沒有內容"}
	ErrColumnNotFound      = &AppError{Code: CodeColumnNotFound, Message: "找不到訂單號欄位"}
	ErrNoValidValues       = &AppError{Code: CodeNoValidValues, Message: "無有效的訂單號"}
	ErrAuthInvalid         = &AppError{Code: CodeAuthInvalid, Message: "退款異常，token無效"}
	ErrEndpointUnavailable = &AppError{Code: CodeEndpointUnavailable, Message: "refund endpoint unavailable"}
)

// Constructores predefinidos por etapa
var (
	InvalidInput = func(details string, err error) *AppError {
		return NewAppError(CodeInvalidInput, "Invalid input", err).
			WithDetails(details)
	}

	Settings = func(details string, err error) *AppError {
		return NewAppError(CodeSettings, "載入設定檔時發生錯誤", err).
			WithDetails(details)
	}

	NoContent = func(sheet string) *AppError {
		return NewAppError(CodeNoContent, ErrNoContent.Message, nil).
			WithMetadata("sheet", sheet)
	}

	ColumnNotFound = func(label string) *AppError {
		return NewAppError(CodeColumnNotFound, fmt.Sprintf("找不到「%s」欄位", label), nil).
			WithMetadata("label", label)
	}

	NoValidValues = func(label string) *AppError {
		return NewAppError(CodeNoValidValues, ErrNoValidValues.Message, nil).
			WithMetadata("label", label)
	}

	Database = func(details string, err error) *AppError {
		return NewAppError(CodeDatabase, "資料庫查詢錯誤", err).
			WithDetails(details)
	}

	RefundTransport = func(err error) *AppError {
		return NewAppError(CodeRefundTransport, "refund request failed", err).
			WithRetryable(true)
	}

	RefundStatus = func(statusCode int) *AppError {
		return NewAppError(CodeRefundStatus, fmt.Sprintf("refund endpoint returned status %d", statusCode), nil).
			WithMetadata("status_code", statusCode).
			WithRetryable(true)
	}

	LockWait = func(body string) *AppError {
		return NewAppError(CodeLockWait, "Lock wait timeout exceeded", nil).
			WithMetadata("body", body).
			WithRetryable(true)
	}

	AuthInvalid = func(orderNo string) *AppError {
		return NewAppError(CodeAuthInvalid, ErrAuthInvalid.Message, nil).
			WithMetadata("order_no", orderNo)
	}

	EndpointUnavailable = func(err error) *AppError {
		return NewAppError(CodeEndpointUnavailable, ErrEndpointUnavailable.Message, err)
	}
)

// IsRetryable verifica si un error es reintentable
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetCode obtiene el código de un error; 0 si no es un AppError
func GetCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// IsInputError indica si el error proviene de la entrada del usuario
// (archivo inválido o contenido del Excel) y no de una dependencia externa.
func IsInputError(err error) bool {
	code := GetCode(err)
	return code == CodeInvalidInput || (code >= CodeNoContent && code <= CodeNoValidValues)
}
