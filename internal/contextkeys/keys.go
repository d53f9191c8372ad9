// internal/contextkeys/keys.go
package contextkeys

// contextKey es un tipo privado para evitar colisiones de claves en el contexto.
type contextKey string

const RunIDKey contextKey = "run_id"
const SourceFileKey contextKey = "source_file"
