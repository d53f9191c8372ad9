// internal/models/serviceresponse/types.go
package serviceresponse

import "github.com/juancollazo-ch/autoreturn/internal/models"

// ProcessResult representa el resultado final de una corrida de reembolsos.
type ProcessResult struct {
	RunID            string                `json:"run_id"`
	FilePath         string                `json:"file_path"`
	OrdersExtracted  int                   `json:"orders_extracted"`
	OrdersFound      int                   `json:"orders_found"`
	OrdersProcessed  int                   `json:"orders_processed"`
	Succeeded        int                   `json:"succeeded"`
	TimedOut         int                   `json:"timed_out,omitempty"`
	Unsupported      int                   `json:"unsupported"`
	RetriesExhausted int                   `json:"retries_exhausted"`
	Failed           int                   `json:"failed"`
	NotFound         []string              `json:"not_found,omitempty"`
	Orders           []models.OrderRecord  `json:"orders,omitempty"`
	Details          []models.RefundResult `json:"details"`
	DryRun           bool                  `json:"dry_run,omitempty"`
	Aborted          bool                  `json:"aborted,omitempty"`
	AbortReason      string                `json:"abort_reason,omitempty"`
}

// Record acumula el resultado de una orden en los contadores
func (r *ProcessResult) Record(res models.RefundResult) {
	r.Details = append(r.Details, res)
	r.OrdersProcessed++

	switch res.Outcome {
	case models.OutcomeSuccess:
		r.Succeeded++
		if res.TimedOut {
			r.TimedOut++
		}
	case models.OutcomeUnsupported:
		r.Unsupported++
	case models.OutcomeRetriesExhausted:
		r.RetriesExhausted++
	case models.OutcomeFailed:
		r.Failed++
	}
}
