// Package cmd provides the command-line interface for the receiving validators.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"receiving/bootstrap"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// defaultTimeout bounds a single CLI operation
const defaultTimeout = 30 * time.Second

// errSystemNotification is returned after a SYSTEM notification was printed so
// the process exits non-zero without repeating the message
var errSystemNotification = errors.New("validation could not be completed")

// rootOptions holds the persistent flags
type rootOptions struct {
	outputJSON bool
	configFile string
	noColor    bool
	logLevel   string
}

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "receiving",
		Short: "Validate received blood products",
		Long: `Decode receiving barcodes and check shipment temperature and transit time
against the configured product consequence rules.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file path (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level")

	rootCmd.AddCommand(newBarcodeCmd(opts))
	rootCmd.AddCommand(newTemperatureCmd(opts))
	rootCmd.AddCommand(newTransitCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	rootCmd.AddCommand(newShipmentCmd(opts))

	return rootCmd
}

// withApp initializes the application for one command invocation
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	app, err := bootstrap.NewApp(ctx, bootstrap.Options{
		ConfigFile: o.configFile,
		LogLevel:   o.logLevel,
		LogOutput:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Shutdown()

	return fn(ctx, app)
}

// writeJSON writes data as indented JSON
func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
