package validator

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/juancollazo-ch/autoreturn/internal/models"
)

// RequestValidator valida la entrada del usuario y el documento de settings
type RequestValidator struct {
	allowedExtensions []string
}

// NewRequestValidator creates a new RequestValidator instance
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		// Solo libros .xlsx
		allowedExtensions: []string{".xlsx"},
	}
}

// ValidateFilePath verifica que el Excel exista y tenga extensión válida
func (v *RequestValidator) ValidateFilePath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("請先選擇一個有效的 Excel 檔案")
	}

	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, e := range v.allowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("unsupported file extension %q, expected one of %v", ext, v.allowedExtensions)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s does not exist", path)
		}
		return fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return nil
}

// ValidateColumnLabel el encabezado buscado no puede estar vacío
func (v *RequestValidator) ValidateColumnLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("column_label is required")
	}
	return nil
}

// ValidateRequest validates the entire request
func (v *RequestValidator) ValidateRequest(req *models.ProcessRequest) error {
	if err := v.ValidateFilePath(req.FilePath); err != nil {
		return err
	}
	return v.ValidateColumnLabel(req.ColumnLabel)
}

// ValidateSettings revisa el documento remoto antes de usarlo
func (v *RequestValidator) ValidateSettings(s models.Settings) error {
	if strings.TrimSpace(s.ConnectionString) == "" {
		return errors.New("connectionString is required")
	}
	if strings.TrimSpace(s.APIURL) == "" {
		return errors.New("apiUrl is required")
	}
	u, err := url.Parse(s.APIURL)
	if err != nil {
		return fmt.Errorf("apiUrl is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("apiUrl must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("apiUrl must include a host")
	}

	if s.Token == "" {
		return errors.New("token is required")
	}
	// El token va dentro del header Cookie
	if strings.ContainsAny(s.Token, ";\r\n") {
		return errors.New("token contains invalid characters")
	}
	return nil
}
