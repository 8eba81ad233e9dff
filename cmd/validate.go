package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"receiving/bootstrap"
	"receiving/core"
	"receiving/service"
)

// wallClockLayouts are accepted for transit and expiration times; no zone is read
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseWallClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range wallClockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date time %q: expected YYYY-MM-DDTHH:MM[:SS]", value)
}

// parseParseType accepts "UNIT_NUMBER" as well as "BARCODE_UNIT_NUMBER", in any case
func parseParseType(value string) core.ParseType {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if upper != "" && !strings.HasPrefix(upper, "BARCODE_") {
		upper = "BARCODE_" + upper
	}
	return core.ParseType(upper)
}

func newBarcodeCmd(opts *rootOptions) *cobra.Command {
	barcodeCmd := &cobra.Command{
		Use:   "barcode",
		Short: "Decode receiving barcodes",
	}

	var (
		parseType string
		value     string
		category  string
	)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Decode one scanned barcode field",
		Long: `Decode one scanned barcode field with the configured pattern for its parse type.

Parse types: UNIT_NUMBER, PRODUCT_CODE, EXPIRATION_DATE, BLOOD_GROUP.
Product codes are matched against the products of --category.`,
		Example: `  receiving barcode validate --type UNIT_NUMBER --value '=W03689878680000'
  receiving barcode validate --type PRODUCT_CODE --value '=<E0869V00' --category FROZEN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				// field checks happen in the use case so they surface as SYSTEM notifications
				req := &core.ValidateBarcodeCommand{
					BarcodeValue:        value,
					ParseType:           parseParseType(parseType),
					TemperatureCategory: category,
				}
				out, err := app.Service.ValidateBarcode(ctx, req)
				if err != nil {
					return err
				}
				return renderOutput(cmd, opts, "Barcode", out)
			})
		},
	}
	validateCmd.Flags().StringVar(&parseType, "type", "", "Parse type (required)")
	validateCmd.Flags().StringVar(&value, "value", "", "Scanned barcode text (required)")
	validateCmd.Flags().StringVar(&category, "category", "", "Temperature category, for product codes")
	_ = validateCmd.MarkFlagRequired("type")
	_ = validateCmd.MarkFlagRequired("value")

	barcodeCmd.AddCommand(validateCmd)
	return barcodeCmd
}

func newTemperatureCmd(opts *rootOptions) *cobra.Command {
	temperatureCmd := &cobra.Command{
		Use:   "temperature",
		Short: "Check shipment temperatures",
	}

	var (
		category string
		value    string
	)

	validateCmd := &cobra.Command{
		Use:     "validate",
		Short:   "Check a measured temperature against the category's rules",
		Example: `  receiving temperature validate --category FROZEN --value -20.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			temperature, err := decimal.NewFromString(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("invalid temperature %q: %w", value, err)
			}

			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				req, err := core.NewValidateTemperatureCommand(temperature, category)
				if err != nil {
					return err
				}
				out, err := app.Service.ValidateTemperature(ctx, req)
				if err != nil {
					return err
				}
				return renderOutput(cmd, opts, "Temperature", out)
			})
		},
	}
	validateCmd.Flags().StringVar(&category, "category", "", "Temperature category (required)")
	validateCmd.Flags().StringVar(&value, "value", "", "Measured temperature (required)")
	_ = validateCmd.MarkFlagRequired("category")
	_ = validateCmd.MarkFlagRequired("value")

	temperatureCmd.AddCommand(validateCmd)
	return temperatureCmd
}

func newTransitCmd(opts *rootOptions) *cobra.Command {
	transitCmd := &cobra.Command{
		Use:   "transit",
		Short: "Check shipment transit times",
	}

	var (
		category  string
		start     string
		startZone string
		end       string
		endZone   string
	)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the elapsed transit time against the category's rules",
		Long: `Check the elapsed transit time against the category's rules.

--start and --end are local wall-clock times read in --start-zone and
--end-zone respectively (IANA names such as America/New_York).`,
		Example: `  receiving transit validate --category FROZEN \
    --start 2026-01-20T06:00 --start-zone America/New_York \
    --end 2026-01-20T11:00 --end-zone America/Los_Angeles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime, err := parseWallClock(start)
			if err != nil {
				return err
			}
			endTime, err := parseWallClock(end)
			if err != nil {
				return err
			}

			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.Service.ValidateTransitTime(ctx, &core.ValidateTransitTimeCommand{
					TemperatureCategory: category,
					StartDateTime:       startTime,
					StartTimeZone:       startZone,
					EndDateTime:         endTime,
					EndTimeZone:         endZone,
				})
				if err != nil {
					return err
				}
				return renderOutput(cmd, opts, "Transit time", out)
			})
		},
	}
	validateCmd.Flags().StringVar(&category, "category", "", "Temperature category (required)")
	validateCmd.Flags().StringVar(&start, "start", "", "Transit start, local time (required)")
	validateCmd.Flags().StringVar(&startZone, "start-zone", "", "Transit start time zone (required)")
	validateCmd.Flags().StringVar(&end, "end", "", "Transit end, local time (required)")
	validateCmd.Flags().StringVar(&endZone, "end-zone", "", "Transit end time zone (required)")
	for _, name := range []string{"category", "start", "start-zone", "end", "end-zone"} {
		_ = validateCmd.MarkFlagRequired(name)
	}

	transitCmd.AddCommand(validateCmd)
	return transitCmd
}

// renderOutput prints a use-case output and maps a SYSTEM notification to a
// non-zero exit
func renderOutput(cmd *cobra.Command, opts *rootOptions, title string, out *service.UseCaseOutput) error {
	if opts.outputJSON {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		renderUseCaseOutput(cmd.OutOrStdout(), title, out)
	}

	if out.HasSystemError() {
		return errSystemNotification
	}
	return nil
}
