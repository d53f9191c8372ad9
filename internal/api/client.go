package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/juancollazo-ch/autoreturn/internal/validator"
	"go.uber.org/zap"
)

// Tamaño máximo aceptado para el documento de settings
const maxSettingsBytes = 1 << 20

// SettingsClient descarga el documento de configuración remoto
type SettingsClient struct {
	http      *http.Client
	url       string
	validator *validator.RequestValidator
	logger    *zap.Logger
}

func NewSettingsClient(settingsURL string, timeout time.Duration, logger *zap.Logger) (*SettingsClient, error) {
	if settingsURL == "" {
		return nil, errors.New("settings url is required")
	}
	if logger == nil {
		logger = zap.L()
	}

	return &SettingsClient{
		http:      &http.Client{Timeout: timeout},
		url:       settingsURL,
		validator: validator.NewRequestValidator(),
		logger:    logger,
	}, nil
}

// FetchSettings hace GET del documento JSON y lo valida.
// Cualquier fallo se devuelve como apperrors.Settings.
func (c *SettingsClient) FetchSettings(ctx context.Context) (models.Settings, error) {
	var settings models.Settings

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return settings, apperrors.Settings("error building request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return settings, apperrors.Settings("request error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return settings, apperrors.Settings(fmt.Sprintf("status %d", resp.StatusCode), nil).
			WithMetadata("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSettingsBytes))
	if err != nil {
		return settings, apperrors.Settings("error reading body", err)
	}

	// "null" deja settings vacío y lo rechaza la validación
	if err := json.Unmarshal(body, &settings); err != nil {
		return settings, apperrors.Settings("invalid JSON", err)
	}

	if err := c.validator.ValidateSettings(settings); err != nil {
		return models.Settings{}, apperrors.Settings("無法載入設定檔", err)
	}

	c.logger.Info("settings loaded",
		zap.String("settings_url", c.url),
		zap.String("api_url", settings.APIURL),
	)

	return settings, nil
}
