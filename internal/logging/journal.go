package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// JournalName es el nombre del logger cuyas entradas van al archivo diario
	JournalName = "journal"

	// OrderNoKey campo con el número de orden de cada línea del journal
	OrderNoKey = "order_no"

	journalTimeLayout = "2006-01-02 15:04:05"
	journalFileLayout = "20060102"
)

// journalCore escribe una línea de texto por entrada en
// <dir>/refund_log_yyyyMMdd.txt. Los errores de escritura se descartan.
type journalCore struct {
	zapcore.LevelEnabler

	dir     string
	orderNo string
	mu      *sync.Mutex
}

// NewJournalCore crea el core del journal diario. Solo acepta entradas del
// logger JournalName (ver Journal).
func NewJournalCore(dir string, enab zapcore.LevelEnabler) zapcore.Core {
	return &journalCore{
		LevelEnabler: enab,
		dir:          dir,
		mu:           &sync.Mutex{},
	}
}

// Journal devuelve el logger hijo cuyas entradas terminan en el journal
func Journal(logger *zap.Logger) *zap.Logger {
	return logger.Named(JournalName)
}

// JournalFileName nombre del archivo del día de t
func JournalFileName(t time.Time) string {
	return fmt.Sprintf("refund_log_%s.txt", t.Format(journalFileLayout))
}

// FormatJournalLine arma una línea: [timestamp] [LEVEL] 訂單編號: <order_no> - <message>
func FormatJournalLine(t time.Time, level zapcore.Level, orderNo, message string) string {
	return fmt.Sprintf("[%s] [%s] 訂單編號: %s - %s\n",
		t.Format(journalTimeLayout), LevelToSeverity(level), orderNo, message)
}

func (c *journalCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	if orderNo, ok := orderNoField(fields); ok {
		clone.orderNo = orderNo
	}
	return &clone
}

func (c *journalCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !isJournalLogger(ent.LoggerName) || !c.Enabled(ent.Level) {
		return ce
	}
	return ce.AddCore(ent, c)
}

func (c *journalCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	orderNo := c.orderNo
	if v, ok := orderNoField(fields); ok {
		orderNo = v
	}

	line := FormatJournalLine(ent.Time, ent.Level, orderNo, ent.Message)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Fallar al escribir el journal nunca interrumpe la corrida
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(c.dir, JournalFileName(ent.Time)), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	defer f.Close()
	_, _ = f.WriteString(line)
	return nil
}

func (c *journalCore) Sync() error {
	return nil
}

func isJournalLogger(name string) bool {
	return name == JournalName || strings.HasSuffix(name, "."+JournalName)
}

func orderNoField(fields []zapcore.Field) (string, bool) {
	for _, f := range fields {
		if f.Key == OrderNoKey && f.Type == zapcore.StringType {
			return f.String, true
		}
	}
	return "", false
}
