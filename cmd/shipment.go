package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"receiving/bootstrap"
	"receiving/shipment"
)

// maxShipmentFileSize guards against loading huge files into memory
const maxShipmentFileSize = 1 * 1024 * 1024

// shipmentFile is the YAML description of a received shipment
type shipmentFile struct {
	TemperatureCategory string `yaml:"temperatureCategory"`
	Temperature         string `yaml:"temperature"`
	ThermometerCode     string `yaml:"thermometerCode"`
	TransitStart        string `yaml:"transitStart"`
	TransitStartZone    string `yaml:"transitStartZone"`
	TransitEnd          string `yaml:"transitEnd"`
	TransitEndZone      string `yaml:"transitEndZone"`
	LocationCode        string `yaml:"locationCode"`
	Comments            string `yaml:"comments"`
	EmployeeID          string `yaml:"employeeId"`
	Items               []struct {
		UnitNumber       string `yaml:"unitNumber"`
		ProductCode      string `yaml:"productCode"`
		AboRh            string `yaml:"aboRh"`
		ExpirationDate   string `yaml:"expirationDate"`
		VisualInspection string `yaml:"visualInspection"`
		LicenseStatus    string `yaml:"licenseStatus"`
		EmployeeID       string `yaml:"employeeId"`
	} `yaml:"items"`
	CompleteEmployeeID string `yaml:"completeEmployeeId"`
}

// validateFilePath rejects traversal sequences, including URL-encoded ones
func validateFilePath(filename string) error {
	decoded, err := url.QueryUnescape(filename)
	if err != nil {
		decoded = filename
	}
	if strings.Contains(decoded, "..") || strings.Contains(filename, "..") {
		return fmt.Errorf("path traversal detected: '..' not allowed in file path")
	}
	if strings.ContainsRune(decoded, 0) {
		return fmt.Errorf("invalid file path: null byte")
	}
	return nil
}

func loadShipmentFile(path string) (*shipmentFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shipment file: %w", err)
	}
	if info.Size() > maxShipmentFileSize {
		return nil, fmt.Errorf("shipment file exceeds %d bytes", maxShipmentFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shipment file: %w", err)
	}

	var f shipmentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse shipment file: %w", err)
	}
	return &f, nil
}

// createCommand converts the header fields, leaving empty readings unset
func (f *shipmentFile) createCommand() (*shipment.CreateAssessmentCommand, error) {
	cmd := &shipment.CreateAssessmentCommand{
		TemperatureCategory:  f.TemperatureCategory,
		ThermometerCode:      f.ThermometerCode,
		TransitStartTimeZone: f.TransitStartZone,
		TransitEndTimeZone:   f.TransitEndZone,
		LocationCode:         f.LocationCode,
		Comments:             f.Comments,
		EmployeeID:           f.EmployeeID,
	}

	if strings.TrimSpace(f.Temperature) != "" {
		t, err := decimal.NewFromString(strings.TrimSpace(f.Temperature))
		if err != nil {
			return nil, fmt.Errorf("invalid temperature %q: %w", f.Temperature, err)
		}
		cmd.Temperature = &t
	}

	var err error
	if strings.TrimSpace(f.TransitStart) != "" {
		if cmd.TransitStartDateTime, err = parseWallClock(f.TransitStart); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(f.TransitEnd) != "" {
		if cmd.TransitEndDateTime, err = parseWallClock(f.TransitEnd); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

// assess builds the assessment, adds every item and completes it when a
// completing employee is named
func (f *shipmentFile) assess(ctx context.Context, app *bootstrap.App, maxProducts int) (*shipment.Assessment, error) {
	create, err := f.createCommand()
	if err != nil {
		return nil, err
	}

	a, err := shipment.NewAssessment(ctx, create, app.Stores.Consequences, maxProducts)
	if err != nil {
		return nil, err
	}

	for i, it := range f.Items {
		itemCmd, err := shipment.NewAddItemCommand(it.UnitNumber, it.ProductCode, it.AboRh, parseOptionalWallClock(it.ExpirationDate),
			it.VisualInspection, it.LicenseStatus, it.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		if _, err := a.AddItem(ctx, itemCmd, app.Stores.Configuration, app.Stores.Consequences); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
	}

	if strings.TrimSpace(f.CompleteEmployeeID) != "" {
		if err := a.Complete(f.CompleteEmployeeID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// parseOptionalWallClock returns the zero time for unparseable input so the
// item command reports the missing expiration date
func parseOptionalWallClock(value string) (t time.Time) {
	t, _ = parseWallClock(value)
	return t
}

func newShipmentCmd(opts *rootOptions) *cobra.Command {
	shipmentCmd := &cobra.Command{
		Use:   "shipment",
		Short: "Assess received shipments",
	}

	var (
		file        string
		maxProducts int
	)

	assessCmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a shipment described in a YAML file",
		Long: `Record a received shipment: check its temperature and transit time, add every
listed product with the consequences that apply to it, and complete the
assessment when completeEmployeeId is set.`,
		Example: `  receiving shipment assess --file shipment.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFilePath(file); err != nil {
				return err
			}
			f, err := loadShipmentFile(file)
			if err != nil {
				return err
			}

			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				a, err := f.assess(ctx, app, maxProducts)
				if err != nil {
					app.Sugar.Warnw("Shipment assessment rejected", "file", file, "error", err)
					return err
				}
				app.Sugar.Infow("Shipment assessed",
					"id", a.ID,
					"items", len(a.Items),
					"quarantined", a.Quarantined(),
					"status", a.Status)

				if opts.outputJSON {
					return writeJSON(cmd.OutOrStdout(), a)
				}
				renderAssessment(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
	assessCmd.Flags().StringVar(&file, "file", "", "Shipment YAML file (required)")
	assessCmd.Flags().IntVar(&maxProducts, "max-products", 50, "Maximum number of products per shipment")
	_ = assessCmd.MarkFlagRequired("file")

	shipmentCmd.AddCommand(assessCmd)
	return shipmentCmd
}
