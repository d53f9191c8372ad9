package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/logging"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/juancollazo-ch/autoreturn/internal/models/serviceresponse"
	"github.com/juancollazo-ch/autoreturn/internal/validator"
	"go.uber.org/zap"
)

type RefundRunner interface {
	HandleRefundRequest(ctx context.Context, req models.ProcessRequest) (*serviceresponse.ProcessResult, error)
}

// ProcessHandler valida la entrada, ejecuta la corrida y escribe el resumen
type ProcessHandler struct {
	svc       RefundRunner
	validator *validator.RequestValidator
	out       io.Writer
	asJSON    bool
}

func NewProcessHandler(svc RefundRunner, out io.Writer, asJSON bool) *ProcessHandler {
	return &ProcessHandler{
		svc:       svc,
		validator: validator.NewRequestValidator(),
		out:       out,
		asJSON:    asJSON,
	}
}

func (h *ProcessHandler) ProcessOrders(ctx context.Context, req models.ProcessRequest) (*serviceresponse.ProcessResult, error) {
	req.FilePath = strings.TrimSpace(req.FilePath)

	if err := h.validator.ValidateRequest(&req); err != nil {
		zap.L().Error("Request validation failed",
			zap.Error(err),
			zap.String("file_path", req.FilePath),
		)
		return nil, apperrors.InvalidInput(err.Error(), nil)
	}

	ctx = logging.WithLoggingFields(ctx, req.RunID, req.FilePath)
	logger := logging.FromContext(ctx, zap.L())

	logger.Info("Processing request",
		zap.String("column_label", req.ColumnLabel),
		zap.Bool("dry_run", req.DryRun),
	)

	result, err := h.svc.HandleRefundRequest(ctx, req)

	// Con corrida abortada igual hay resultado parcial para mostrar
	if result != nil {
		if writeErr := h.writeResult(result); writeErr != nil {
			logger.Warn("failed to write summary", zap.Error(writeErr))
		}
	}

	if err != nil {
		logger.Error("Processing error", zap.Error(err))
		return result, err
	}

	logger.Info("Process completed successfully",
		zap.Int("orders_found", result.OrdersFound),
		zap.Int("orders_processed", result.OrdersProcessed),
		zap.Int("succeeded", result.Succeeded),
	)

	return result, nil
}

func (h *ProcessHandler) writeResult(result *serviceresponse.ProcessResult) error {
	if h.asJSON {
		enc := json.NewEncoder(h.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := io.WriteString(h.out, FormatSummary(result))
	return err
}

// FormatSummary resumen legible de la corrida
func FormatSummary(r *serviceresponse.ProcessResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Excel 訂單數: %d\n", r.OrdersExtracted)
	fmt.Fprintf(&b, "共有%d，需要退款...\n", r.OrdersFound)

	if len(r.NotFound) > 0 {
		fmt.Fprintf(&b, "資料庫中找不到 %d 筆: %s\n", len(r.NotFound), strings.Join(r.NotFound, ", "))
	}

	if r.OrdersFound == 0 {
		b.WriteString("資料庫中無符合的訂單\n")
		return b.String()
	}

	if r.DryRun {
		b.WriteString("dry run: 未提交退款請求\n")
		for _, o := range r.Orders {
			fmt.Fprintf(&b, "  %s (id %d)\n", o.OrderNo, o.ID)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "已處理: %d\n", r.OrdersProcessed)
	fmt.Fprintf(&b, "  成功: %d\n", r.Succeeded)
	if r.TimedOut > 0 {
		fmt.Fprintf(&b, "  其中逾時 (請人工確認): %d\n", r.TimedOut)
	}
	fmt.Fprintf(&b, "  已退款或不支持退款: %d\n", r.Unsupported)
	fmt.Fprintf(&b, "  重試後仍失敗: %d\n", r.RetriesExhausted)
	if r.Failed > 0 {
		fmt.Fprintf(&b, "  其他錯誤: %d\n", r.Failed)
	}

	if r.Aborted {
		fmt.Fprintf(&b, "批量退款中止: %s\n", r.AbortReason)
	} else {
		b.WriteString("批量退款完成\n")
	}
	return b.String()
}
