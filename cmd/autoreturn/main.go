package main

import (
	"fmt"
	"os"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitInput = 2
)

var rootCmd = &cobra.Command{
	Use:   "autoreturn",
	Short: "Submit refunds for the orders listed in an Excel file",
	Long: `autoreturn reads order numbers from an Excel file, looks them up in
lt_order and submits one refund request per order, sequentially, retrying
transient failures. Every attempt is written to the daily refund journal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// MAIN: ejecuta el comando y traduce el error a código de salida
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "發生錯誤: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if apperrors.IsInputError(err) {
		return exitInput
	}
	return exitError
}
