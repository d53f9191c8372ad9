package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "orders.XLSX")
	require.NoError(t, os.WriteFile(xlsx, []byte("x"), 0o644))
	csv := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(csv, []byte("x"), 0o644))
	folder := filepath.Join(dir, "folder.xlsx")
	require.NoError(t, os.Mkdir(folder, 0o755))

	v := NewRequestValidator()

	assert.NoError(t, v.ValidateFilePath(xlsx))
	assert.NoError(t, v.ValidateFilePath("  "+xlsx+" "))
	assert.Error(t, v.ValidateFilePath(""))
	assert.Error(t, v.ValidateFilePath(csv))
	assert.Error(t, v.ValidateFilePath(filepath.Join(dir, "missing.xlsx")))
	assert.Error(t, v.ValidateFilePath(folder))
}

func TestValidateRequest(t *testing.T) {
	xlsx := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, os.WriteFile(xlsx, []byte("x"), 0o644))

	v := NewRequestValidator()
	assert.NoError(t, v.ValidateRequest(&models.ProcessRequest{FilePath: xlsx, ColumnLabel: "訂單號"}))
	assert.Error(t, v.ValidateRequest(&models.ProcessRequest{FilePath: xlsx, ColumnLabel: " "}))
}

func TestValidateSettings(t *testing.T) {
	valid := models.Settings{
		ConnectionString: "Server=db;Database=shop;",
		APIURL:           "https://shop.example.com/refund",
		Token:            "abc",
	}

	v := NewRequestValidator()
	assert.NoError(t, v.ValidateSettings(valid))

	tests := map[string]func(s *models.Settings){
		"no connection string": func(s *models.Settings) { s.ConnectionString = "" },
		"no api url":           func(s *models.Settings) { s.APIURL = "" },
		"relative api url":     func(s *models.Settings) { s.APIURL = "/refund" },
		"no host":              func(s *models.Settings) { s.APIURL = "https:///refund" },
		"no token":             func(s *models.Settings) { s.Token = "" },
		"token with newline":   func(s *models.Settings) { s.Token = "abc\r\nX-Evil: 1" },
		"token with semicolon": func(s *models.Settings) { s.Token = "abc; admin=1" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			assert.Error(t, v.ValidateSettings(s))
		})
	}
}
