package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/juancollazo-ch/autoreturn/internal/models/serviceresponse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	result *serviceresponse.ProcessResult
	err    error
	got    models.ProcessRequest
	called bool
}

func (f *fakeRunner) HandleRefundRequest(ctx context.Context, req models.ProcessRequest) (*serviceresponse.ProcessResult, error) {
	f.called = true
	f.got = req
	return f.result, f.err
}

func tempWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestProcessOrders_InvalidInput(t *testing.T) {
	runner := &fakeRunner{}
	var out bytes.Buffer

	_, err := NewProcessHandler(runner, &out, false).ProcessOrders(context.Background(), models.ProcessRequest{
		FilePath:    filepath.Join(t.TempDir(), "missing.xlsx"),
		ColumnLabel: "訂單號",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.False(t, runner.called)
	assert.Empty(t, out.String())
}

func TestProcessOrders_TextSummary(t *testing.T) {
	runner := &fakeRunner{result: &serviceresponse.ProcessResult{
		OrdersExtracted:  3,
		OrdersFound:      2,
		OrdersProcessed:  2,
		Succeeded:        1,
		RetriesExhausted: 1,
		NotFound:         []string{"A300"},
	}}
	var out bytes.Buffer
	path := tempWorkbook(t)

	_, err := NewProcessHandler(runner, &out, false).ProcessOrders(context.Background(), models.ProcessRequest{
		FilePath:    " " + path + " ",
		ColumnLabel: "訂單號",
		RunID:       "run-1",
	})

	require.NoError(t, err)
	assert.Equal(t, path, runner.got.FilePath)
	assert.Contains(t, out.String(), "共有2，需要退款...")
	assert.Contains(t, out.String(), "資料庫中找不到 1 筆: A300")
	assert.Contains(t, out.String(), "重試後仍失敗: 1")
	assert.Contains(t, out.String(), "批量退款完成")
}

func TestProcessOrders_AbortedRunStillPrintsSummary(t *testing.T) {
	runner := &fakeRunner{
		result: &serviceresponse.ProcessResult{
			OrdersFound:     3,
			OrdersProcessed: 1,
			Aborted:         true,
			AbortReason:     "退款異常，token無效",
		},
		err: apperrors.AuthInvalid("A100"),
	}
	var out bytes.Buffer

	result, err := NewProcessHandler(runner, &out, false).ProcessOrders(context.Background(), models.ProcessRequest{
		FilePath:    tempWorkbook(t),
		ColumnLabel: "訂單號",
	})

	assert.ErrorIs(t, err, apperrors.ErrAuthInvalid)
	require.NotNil(t, result)
	assert.Contains(t, out.String(), "批量退款中止: 退款異常，token無效")
	assert.NotContains(t, out.String(), "批量退款完成")
}

func TestProcessOrders_JSON(t *testing.T) {
	runner := &fakeRunner{result: &serviceresponse.ProcessResult{
		RunID:       "run-9",
		OrdersFound: 1,
		Details: []models.RefundResult{
			{Order: models.OrderRecord{ID: 1, OrderNo: "A100"}, Outcome: models.OutcomeSuccess, Attempts: 1},
		},
	}}
	var out bytes.Buffer

	_, err := NewProcessHandler(runner, &out, true).ProcessOrders(context.Background(), models.ProcessRequest{
		FilePath:    tempWorkbook(t),
		ColumnLabel: "訂單號",
	})
	require.NoError(t, err)

	var decoded serviceresponse.ProcessResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "run-9", decoded.RunID)
	require.Len(t, decoded.Details, 1)
	assert.Equal(t, models.OutcomeSuccess, decoded.Details[0].Outcome)
}

func TestFormatSummary_NoOrdersAndDryRun(t *testing.T) {
	assert.Contains(t, FormatSummary(&serviceresponse.ProcessResult{OrdersExtracted: 2}), "資料庫中無符合的訂單")

	dry := FormatSummary(&serviceresponse.ProcessResult{
		OrdersFound: 1,
		DryRun:      true,
		Orders:      []models.OrderRecord{{ID: 5, OrderNo: "A100"}},
	})
	assert.Contains(t, dry, "A100 (id 5)")
	assert.NotContains(t, dry, "批量退款完成")
}
