package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juancollazo-ch/autoreturn/internal/classify"
	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/logging"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/juancollazo-ch/autoreturn/internal/models/serviceresponse"
	"github.com/juancollazo-ch/autoreturn/internal/refund"
	"github.com/juancollazo-ch/autoreturn/internal/retry"
	"go.uber.org/zap"
)

// Mensajes del journal
const (
	msgSuccess        = "退款請求成功"
	msgAuthInvalid    = "退款異常，token無效"
	msgUnsupported    = "訂單已退款過或不支持退款"
	msgLockWaitRetry  = "退款請求遇到資料庫鎖定，即將進行第 %d 次重試"
	msgErrorRetry     = "退款請求發生錯誤: %s，即將進行第 %d 次重試"
	msgAPIError       = "API 呼叫錯誤: %s"
	msgExhausted      = "退款請求失敗，已重試 %d 次"
	msgBatchCompleted = "批量退款完成"
)

type OrderExtractor interface {
	Extract(path, label string) (*models.OrderSet, error)
}

type OrderResolver interface {
	Resolve(ctx context.Context, orders *models.OrderSet) ([]models.OrderRecord, error)
}

type RefundSubmitter interface {
	Submit(ctx context.Context, orderID int64) (string, error)
}

type Options struct {
	MaxRetries int
	RetryDelay time.Duration

	// StrictTimeout trata el timeout local como error reintentable.
	// Por defecto se reporta como éxito con TimedOut=true.
	StrictTimeout bool

	Logger *zap.Logger
}

type RefundService struct {
	extractor     OrderExtractor
	resolver      OrderResolver
	client        RefundSubmitter
	maxRetries    int
	retryDelay    time.Duration
	strictTimeout bool
	logger        *zap.Logger
	journal       *zap.Logger
}

func NewRefundService(extractor OrderExtractor, resolver OrderResolver, client RefundSubmitter, opts Options) *RefundService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &RefundService{
		extractor:     extractor,
		resolver:      resolver,
		client:        client,
		maxRetries:    maxRetries,
		retryDelay:    opts.RetryDelay,
		strictTimeout: opts.StrictTimeout,
		logger:        logger,
		journal:       logging.Journal(logger),
	}
}

// ---------------------------------------------------------
// MÉTODO PRINCIPAL
// ---------------------------------------------------------
func (s *RefundService) HandleRefundRequest(ctx context.Context, req models.ProcessRequest) (*serviceresponse.ProcessResult, error) {
	logger := logging.FromContext(ctx, s.logger)

	// 1) Leer el Excel
	orders, err := s.extractor.Extract(req.FilePath, req.ColumnLabel)
	if err != nil {
		logger.Error("error extracting orders", zap.Error(err))
		return nil, err
	}

	result := &serviceresponse.ProcessResult{
		RunID:           req.RunID,
		FilePath:        req.FilePath,
		OrdersExtracted: orders.Len(),
		Details:         make([]models.RefundResult, 0),
		DryRun:          req.DryRun,
	}

	logger.Debug("extracted order numbers", zap.String("orders", orders.Literal()))

	// 2) Buscar ids en la base
	records, err := s.resolver.Resolve(ctx, orders)
	if err != nil {
		logger.Error("error resolving orders", zap.Error(err))
		return nil, err
	}

	result.OrdersFound = len(records)
	result.NotFound = orders.Missing(records)

	logger.Info("orders to refund",
		zap.Int("orders_extracted", result.OrdersExtracted),
		zap.Int("orders_found", result.OrdersFound),
		zap.Int("orders_not_found", len(result.NotFound)),
	)

	// Si no hay órdenes, retornar resultado vacío (no es un error)
	if len(records) == 0 {
		logger.Info("資料庫中無符合的訂單")
		return result, nil
	}

	if req.DryRun {
		result.Orders = records
		logger.Info("dry run: refunds not submitted")
		return result, nil
	}

	// 3) Reembolsos uno por uno; cada llamada termina antes de empezar la siguiente
	for i, rec := range records {
		res, err := s.SubmitRefund(ctx, rec)
		result.Record(res)

		if err != nil {
			result.Aborted = true
			result.AbortReason = err.Error()
			logger.Error("batch aborted",
				zap.String("order_no", rec.OrderNo),
				zap.Int("orders_remaining", len(records)-i-1),
				zap.Error(err),
			)
			return result, err
		}
	}

	s.journal.Info(msgBatchCompleted, zap.String(logging.OrderNoKey, ""))

	logger.Info("batch completed",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("unsupported", result.Unsupported),
		zap.Int("retries_exhausted", result.RetriesExhausted),
		zap.Int("failed", result.Failed),
		zap.Int("timed_out", result.TimedOut),
	)

	return result, nil
}

// SubmitRefund lleva una orden hasta un resultado terminal.
// El error es distinto de nil solo cuando la corrida completa debe detenerse:
// token inválido, endpoint caído (breaker abierto) o context cancelado.
func (s *RefundService) SubmitRefund(ctx context.Context, order models.OrderRecord) (models.RefundResult, error) {
	res := models.RefundResult{Order: order}
	journal := s.journal.With(zap.String(logging.OrderNoKey, order.OrderNo))
	logger := logging.FromContext(ctx, s.logger).With(
		zap.Int64("order_id", order.ID),
		zap.String("order_no", order.OrderNo),
	)

	var (
		kind     classify.Kind
		body     string
		timedOut bool
	)

	policy := retry.Policy{
		MaxRetries: s.maxRetries,
		Delay:      s.retryDelay,
		OnRetry: func(n int, err error) {
			if apperrors.GetCode(err) == apperrors.CodeLockWait {
				journal.Warn(fmt.Sprintf(msgLockWaitRetry, n))
				return
			}
			journal.Error(fmt.Sprintf(msgErrorRetry, err.Error(), n))
		},
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		out, err := s.client.Submit(ctx, order.ID)
		// Rechazado por el breaker: la llamada no salió
		if !errors.Is(err, apperrors.ErrEndpointUnavailable) {
			res.Attempts = attempt
		}
		if err != nil {
			if errors.Is(err, refund.ErrLocalTimeout) && !s.strictTimeout {
				timedOut = true
				return nil
			}
			return err
		}

		body = out
		kind = classify.Response(out)
		if kind == classify.KindLockWait {
			return apperrors.LockWait(out)
		}
		return nil
	})

	switch {
	case err == nil && timedOut:
		// Sin respuesta a tiempo: éxito en el journal, marcado para revisión
		res.Outcome = models.OutcomeSuccess
		res.TimedOut = true
		res.Response = msgSuccess
		journal.Info(msgSuccess)
		logger.Warn("refund call timed out locally, reported as success; verify manually",
			zap.Int("attempts", res.Attempts))
		return res, nil

	case err == nil:
		res.Response = body
		switch kind {
		case classify.KindAuthInvalid:
			res.Outcome = models.OutcomeAuthInvalid
			journal.Error(msgAuthInvalid)
			return res, apperrors.AuthInvalid(order.OrderNo)
		case classify.KindUnsupported:
			res.Outcome = models.OutcomeUnsupported
			journal.Warn(msgUnsupported)
		default:
			res.Outcome = models.OutcomeSuccess
			journal.Info(msgSuccess)
		}
		logger.Info("refund finished",
			zap.String("outcome", string(res.Outcome)),
			zap.Int("attempts", res.Attempts))
		return res, nil

	case ctx.Err() != nil:
		res.Outcome = models.OutcomeCanceled
		res.Error = ctx.Err().Error()
		logger.Warn("refund canceled", zap.Int("attempts", res.Attempts))
		return res, ctx.Err()

	case errors.Is(err, apperrors.ErrEndpointUnavailable):
		res.Outcome = models.OutcomeCanceled
		res.Error = err.Error()
		journal.Error(fmt.Sprintf(msgAPIError, err.Error()))
		return res, err

	case errors.Is(err, retry.ErrExhausted):
		res.Outcome = models.OutcomeRetriesExhausted
		res.Error = err.Error()
		if apperrors.GetCode(err) == apperrors.CodeLockWait {
			journal.Error(fmt.Sprintf(msgExhausted, s.maxRetries))
		} else {
			journal.Error(fmt.Sprintf(msgAPIError, lastCause(err)))
		}
		logger.Error("refund retries exhausted",
			zap.Int("attempts", res.Attempts),
			zap.Error(err))
		return res, nil

	default:
		res.Outcome = models.OutcomeFailed
		res.Error = err.Error()
		journal.Error(fmt.Sprintf(msgAPIError, err.Error()))
		logger.Error("refund failed", zap.Error(err))
		return res, nil
	}
}

// lastCause texto del último AppError envuelto por retry.ErrExhausted
func lastCause(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
