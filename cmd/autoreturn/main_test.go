package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/juancollazo-ch/autoreturn/internal/config"
	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitInput, exitCode(apperrors.InvalidInput("bad", nil)))
	assert.Equal(t, exitInput, exitCode(fmt.Errorf("extract: %w", apperrors.ColumnNotFound("訂單號"))))
	assert.Equal(t, exitError, exitCode(apperrors.AuthInvalid("A1")))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
}

func TestPromptFilePath(t *testing.T) {
	var out bytes.Buffer

	path, err := promptFilePath(strings.NewReader("\"C:\\data\\orders.xlsx\"\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, `C:\data\orders.xlsx`, path)
	assert.Contains(t, out.String(), ".xlsx")

	path, err = promptFilePath(strings.NewReader("orders.xlsx"), &out)
	require.NoError(t, err)
	assert.Equal(t, "orders.xlsx", path)

	_, err = promptFilePath(strings.NewReader("\n"), &out)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestApplyFlags_OnlyChangedFlags(t *testing.T) {
	f := runCmd.Flags()
	t.Cleanup(func() {
		for _, name := range []string{"json", "strict-timeout", "breaker-threshold"} {
			flag := f.Lookup(name)
			require.NoError(t, flag.Value.Set(flag.DefValue))
			flag.Changed = false
		}
	})

	t.Setenv("AUTORETURN_MAX_RETRIES", "5")
	cfg, err := config.Load()
	require.NoError(t, err)

	require.NoError(t, f.Set("json", "true"))
	require.NoError(t, f.Set("strict-timeout", "true"))
	require.NoError(t, f.Set("breaker-threshold", "20"))
	applyFlags(runCmd, cfg)

	assert.True(t, cfg.JSONOutput)
	assert.True(t, cfg.StrictTimeout)
	assert.Equal(t, uint32(20), cfg.BreakerThreshold)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.NoError(t, cfg.Validate())
}
