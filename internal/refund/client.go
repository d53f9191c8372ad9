package refund

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// Valor fijo del campo "t" que espera el backend
	formT = "0.49321006292624636"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodyBytes = 4 << 20
)

// ErrLocalTimeout la llamada superó el timeout local antes de recibir respuesta
var ErrLocalTimeout = errors.New("refund call timed out locally")

// Options parámetros del cliente de reembolso
type Options struct {
	Timeout          time.Duration
	BreakerThreshold uint32
	BreakerCooldown  time.Duration

	// StrictTimeout: el timeout local cuenta como fallo para el breaker.
	// Si es false el servicio lo reporta como éxito y el breaker también.
	StrictTimeout bool

	Logger *zap.Logger
}

// Client hace un POST por intento contra apiUrl
type Client struct {
	http    *http.Client
	apiURL  string
	token   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewClient(settings models.Settings, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	c := &Client{
		// Sin Client.Timeout: el límite por llamada va en el context
		// para poder distinguir timeout local de cancelación de la corrida.
		http:    &http.Client{},
		apiURL:  settings.APIURL,
		token:   settings.Token,
		timeout: opts.Timeout,
		logger:  logger,
	}

	if opts.BreakerThreshold > 0 {
		threshold := opts.BreakerThreshold
		strict := opts.StrictTimeout
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "refund-endpoint",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				// Cancelar la corrida no dice nada de la salud del endpoint
				if err == nil || errors.Is(err, context.Canceled) {
					return true
				}
				return !strict && errors.Is(err, ErrLocalTimeout)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// Submit envía un intento de reembolso y devuelve el cuerpo de la respuesta.
// Errores: ctx.Err() si se canceló la corrida, apperrors.EndpointUnavailable
// con el breaker abierto, y errores reintentables de transporte o status.
func (c *Client) Submit(ctx context.Context, orderID int64) (string, error) {
	if c.breaker == nil {
		return c.submit(ctx, orderID)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.submit(ctx, orderID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", apperrors.EndpointUnavailable(err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) submit(ctx context.Context, orderID int64) (string, error) {
	form, err := query.Values(models.RefundForm{
		T:           formT,
		ID:          orderID,
		RefundThird: 0,
	})
	if err != nil {
		return "", fmt.Errorf("error encoding form: %w", err)
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "token="+c.token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Connection", "keep-alive")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.transportError(ctx, callCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", c.transportError(ctx, callCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.RefundStatus(resp.StatusCode).
			WithDetails(truncate(string(body), 200))
	}

	return string(body), nil
}

// transportError separa la cancelación de la corrida del timeout local
func (c *Client) transportError(parent, call context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		return apperrors.RefundTransport(fmt.Errorf("%w after %s: %v", ErrLocalTimeout, c.timeout, err))
	}
	return apperrors.RefundTransport(err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
