package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
)

// ErrExhausted se devuelve (envuelto junto al último error) cuando se agotan los reintentos
var ErrExhausted = errors.New("retries exhausted")

// Policy reintento con demora fija: MaxRetries intentos extra después del primero
type Policy struct {
	MaxRetries int
	Delay      time.Duration

	// OnRetry se llama antes de cada espera; retry empieza en 1
	OnRetry func(retry int, err error)

	// sleep se puede reemplazar en tests
	sleep func(ctx context.Context, d time.Duration) error
}

// Do ejecuta fn hasta que devuelva nil, un error no reintentable
// (ver apperrors.IsRetryable) o se agote el presupuesto.
// attempt empieza en 1.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= p.MaxRetries+1; attempt++ {
		// Verificar si el context expiró
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if !apperrors.IsRetryable(err) {
			return err
		}

		// No hacer sleep en el último intento
		if attempt > p.MaxRetries {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		if sleepErr := sleep(ctx, p.Delay); sleepErr != nil {
			return sleepErr
		}
	}

	return fmt.Errorf("%w after %d retries: %w", ErrExhausted, p.MaxRetries, err)
}

// Sleep espera d o hasta que se cancele el context
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
