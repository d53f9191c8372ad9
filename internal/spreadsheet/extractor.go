package spreadsheet

import (
	"fmt"
	"strings"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Extractor lee números de orden desde libros .xlsx
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.L()
	}
	return &Extractor{logger: logger}
}

// Extract abre el archivo y lee, en la primera hoja, la columna cuyo
// encabezado es label
func (e *Extractor) Extract(path, label string) (*models.OrderSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.InvalidInput("cannot open workbook", err).
			WithMetadata("path", path)
	}
	defer f.Close()

	return e.extract(f, strings.TrimSpace(label))
}

func (e *Extractor) extract(f *excelize.File, label string) (*models.OrderSet, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NoContent("")
	}
	sheet := sheets[0]

	// GetRows devuelve el texto formateado de cada celda y omite las filas vacías del final
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NoContent(sheet)
	}

	col := ColumnIndex(rows[0], label)
	if col == -1 {
		return nil, apperrors.ColumnNotFound(label)
	}

	orders := models.NewOrderSet()
	duplicates := 0
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		if !orders.Add(value) {
			duplicates++
		}
	}

	if orders.Len() == 0 {
		return nil, apperrors.NoValidValues(label)
	}

	e.logger.Info("orders extracted",
		zap.String("sheet", sheet),
		zap.String("column", label),
		zap.Int("rows", len(rows)-1),
		zap.Int("orders", orders.Len()),
		zap.Int("duplicates", duplicates),
	)

	return orders, nil
}

// ColumnIndex posición (base 0) de la celda del encabezado igual a label
// después de recortar espacios; -1 si no existe.
func ColumnIndex(header []string, label string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == label {
			return i
		}
	}
	return -1
}
