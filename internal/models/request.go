package models

// ProcessRequest parámetros de una corrida de reembolsos
type ProcessRequest struct {
	FilePath    string `json:"file_path"`
	ColumnLabel string `json:"column_label"`
	DryRun      bool   `json:"dry_run,omitempty"`

	RunID string `json:"run_id,omitempty"`
}
