package models

// Outcome clasificación terminal de los intentos de reembolso de una orden
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeAuthInvalid      Outcome = "auth_invalid"
	OutcomeUnsupported      Outcome = "unsupported"
	OutcomeRetriesExhausted Outcome = "retries_exhausted"
	OutcomeFailed           Outcome = "failed"
	OutcomeCanceled         Outcome = "canceled"
)

// RefundForm cuerpo del POST de reembolso (application/x-www-form-urlencoded)
type RefundForm struct {
	T           string `url:"t"`
	ID          int64  `url:"id"`
	RefundThird int    `url:"refund_third"`
}

// RefundResult resultado final de una orden
type RefundResult struct {
	Order    OrderRecord `json:"order"`
	Outcome  Outcome     `json:"outcome"`
	Attempts int         `json:"attempts"`
	Response string      `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`

	// TimedOut marca un éxito que en realidad fue un timeout local de la llamada
	TimedOut bool `json:"timed_out,omitempty"`
}
