package shipment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"receiving/core"
	"receiving/threshold"
)

// CreateAssessmentCommand describes a received shipment before any product is
// scanned. Temperature and the transit window are optional; when present they
// are validated against the category's rules.
type CreateAssessmentCommand struct {
	TemperatureCategory string
	// Temperature is nil when no reading was taken
	Temperature     *decimal.Decimal
	ThermometerCode string
	// TransitStartDateTime is zero when no transit window was recorded
	TransitStartDateTime time.Time
	TransitStartTimeZone string
	TransitEndDateTime   time.Time
	TransitEndTimeZone   string
	LocationCode         string
	Comments             string
	EmployeeID           string
}

// Assessment is the receiving record of one shipment and the products scanned
// from it.
type Assessment struct {
	ID                  uuid.UUID        `json:"id"`
	TemperatureCategory string           `json:"temperatureCategory"`
	Temperature         *decimal.Decimal `json:"temperature,omitempty"`
	ThermometerCode     string           `json:"thermometerCode,omitempty"`
	TemperatureResult   string           `json:"temperatureResult,omitempty"`
	TransitStart        time.Time        `json:"transitStart,omitempty"`
	TransitStartZone    string           `json:"transitStartZone,omitempty"`
	TransitEnd          time.Time        `json:"transitEnd,omitempty"`
	TransitEndZone      string           `json:"transitEndZone,omitempty"`
	TotalTransitTime    string           `json:"totalTransitTime,omitempty"`
	TransitTimeResult   string           `json:"transitTimeResult,omitempty"`
	LocationCode        string           `json:"locationCode"`
	Comments            string           `json:"comments,omitempty"`
	Status              Status           `json:"status"`
	EmployeeID          string           `json:"employeeId"`
	MaxProducts         int              `json:"maxProducts"`
	Items               []*Item          `json:"items"`
	CreatedAt           time.Time        `json:"createdAt"`
	ModifiedAt          time.Time        `json:"modifiedAt"`
	CompletedAt         *time.Time       `json:"completedAt,omitempty"`
	CompleteEmployeeID  string           `json:"completeEmployeeId,omitempty"`
}

// NewAssessment creates a pending assessment, recording ACCEPTABLE or
// UNACCEPTABLE for the temperature and transit time when they were supplied.
// The temperature is stored rounded half-up to two decimals.
func NewAssessment(ctx context.Context, cmd *CreateAssessmentCommand, repo core.ProductConsequenceRepository, maxProducts int) (*Assessment, error) {
	if cmd == nil {
		return nil, core.NewPreconditionError(MsgCreateCommandRequired)
	}
	if repo == nil {
		return nil, core.NewPreconditionError(core.MsgConsequenceRepositoryRequired)
	}
	if err := checkCreate(cmd); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &Assessment{
		ID:                  uuid.New(),
		TemperatureCategory: cmd.TemperatureCategory,
		ThermometerCode:     cmd.ThermometerCode,
		TransitStart:        cmd.TransitStartDateTime,
		TransitStartZone:    cmd.TransitStartTimeZone,
		TransitEnd:          cmd.TransitEndDateTime,
		TransitEndZone:      cmd.TransitEndTimeZone,
		LocationCode:        cmd.LocationCode,
		Comments:            cmd.Comments,
		Status:              StatusPending,
		EmployeeID:          cmd.EmployeeID,
		MaxProducts:         maxProducts,
		Items:               []*Item{},
		CreatedAt:           now,
		ModifiedAt:          now,
	}

	if cmd.Temperature != nil {
		if err := a.assessTemperature(ctx, *cmd.Temperature, repo); err != nil {
			return nil, err
		}
	}
	if !cmd.TransitStartDateTime.IsZero() {
		if err := a.assessTransitTime(ctx, cmd, repo); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func checkCreate(cmd *CreateAssessmentCommand) error {
	if isBlank(cmd.TemperatureCategory) {
		return core.NewPreconditionError(core.MsgTemperatureCategoryRequired)
	}
	if isBlank(cmd.LocationCode) {
		return core.NewPreconditionError(MsgLocationCodeRequired)
	}
	if len(cmd.Comments) > maxCommentsLength {
		return core.NewPreconditionError(MsgCommentsTooLong)
	}
	if isBlank(cmd.EmployeeID) {
		return core.NewPreconditionError(MsgEmployeeIDRequired)
	}
	if cmd.Temperature != nil && isBlank(cmd.ThermometerCode) {
		return core.NewPreconditionError(MsgThermometerCodeRequired)
	}
	if !cmd.TransitStartDateTime.IsZero() {
		if isBlank(cmd.TransitStartTimeZone) {
			return core.NewPreconditionError(core.MsgTransitStartTimeZoneRequired)
		}
		if cmd.TransitEndDateTime.IsZero() {
			return core.NewPreconditionError(core.MsgTransitEndDateRequired)
		}
		if isBlank(cmd.TransitEndTimeZone) {
			return core.NewPreconditionError(core.MsgTransitEndTimeZoneRequired)
		}
	}
	return nil
}

func (a *Assessment) assessTemperature(ctx context.Context, temperature decimal.Decimal, repo core.ProductConsequenceRepository) error {
	rules, err := repo.FindConsequencesByCategoryAndProperty(ctx, a.TemperatureCategory, core.PropertyTemperature)
	if err != nil {
		return fmt.Errorf("failed to load temperature rules: %w", err)
	}

	result, err := threshold.ValidateTemperature(&core.ValidateTemperatureCommand{
		Temperature:         temperature,
		TemperatureCategory: a.TemperatureCategory,
	}, rules)
	if err != nil {
		return err
	}

	rounded := temperature.Round(2)
	a.Temperature = &rounded
	a.TemperatureResult = resultLabel(result.Valid)
	return nil
}

func (a *Assessment) assessTransitTime(ctx context.Context, cmd *CreateAssessmentCommand, repo core.ProductConsequenceRepository) error {
	rules, err := repo.FindConsequencesByCategoryAndProperty(ctx, a.TemperatureCategory, core.PropertyTransitTime)
	if err != nil {
		return fmt.Errorf("failed to load transit time rules: %w", err)
	}

	transitCmd := &core.ValidateTransitTimeCommand{
		TemperatureCategory: a.TemperatureCategory,
		StartDateTime:       cmd.TransitStartDateTime,
		StartTimeZone:       cmd.TransitStartTimeZone,
		EndDateTime:         cmd.TransitEndDateTime,
		EndTimeZone:         cmd.TransitEndTimeZone,
	}

	result, err := threshold.ValidateTransitTime(transitCmd, rules)
	if err != nil {
		return err
	}

	transit, err := threshold.ComputeTransitTime(transitCmd)
	if err != nil {
		return err
	}
	if transit.Elapsed < 0 {
		return core.NewPreconditionError(MsgNegativeTransitTime)
	}

	a.TotalTransitTime = result.ResultDescription
	a.TransitTimeResult = resultLabel(result.Valid)
	return nil
}

func resultLabel(valid bool) string {
	if valid {
		return core.ResultAcceptable
	}
	return core.ResultUnacceptable
}

// Quarantined reports whether the shipment failed its temperature or transit-time thresholds.
func (a *Assessment) Quarantined() bool {
	return a.TemperatureResult == core.ResultUnacceptable || a.TransitTimeResult == core.ResultUnacceptable
}

// CanComplete reports whether the assessment is pending and holds at least one product.
func (a *Assessment) CanComplete() bool {
	return a.Status == StatusPending && len(a.Items) > 0
}

// Complete closes the assessment on behalf of employeeID.
func (a *Assessment) Complete(employeeID string) error {
	if isBlank(employeeID) {
		return core.NewPreconditionError(MsgCompleteEmployeeIDRequired)
	}
	if a.Status == StatusCompleted {
		return core.NewPreconditionError(MsgAlreadyCompleted)
	}
	if len(a.Items) == 0 {
		return core.NewPreconditionError(MsgNoProducts)
	}

	now := time.Now().UTC()
	a.Status = StatusCompleted
	a.CompleteEmployeeID = employeeID
	a.ModifiedAt = now
	a.CompletedAt = &now
	return nil
}
