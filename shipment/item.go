package shipment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"receiving/core"
)

// AddItemCommand describes one product scanned into an assessment
type AddItemCommand struct {
	UnitNumber       string
	ProductCode      string
	AboRh            core.AboRh
	ExpirationDate   time.Time
	VisualInspection VisualInspection
	LicenseStatus    LicenseStatus
	EmployeeID       string
}

// NewAddItemCommand builds an item command from scanned text, rejecting blank
// or unknown values.
func NewAddItemCommand(unitNumber, productCode, aboRh string, expiration time.Time, visualInspection, licenseStatus, employeeID string) (*AddItemCommand, error) {
	if isBlank(unitNumber) {
		return nil, core.NewPreconditionError(MsgUnitNumberRequired)
	}
	if isBlank(productCode) {
		return nil, core.NewPreconditionError(MsgProductCodeRequired)
	}
	abo, err := core.ParseAboRh(aboRh)
	if err != nil {
		return nil, err
	}
	if expiration.IsZero() {
		return nil, core.NewPreconditionError(MsgExpirationDateRequired)
	}
	inspection, err := ParseVisualInspection(visualInspection)
	if err != nil {
		return nil, err
	}
	license, err := ParseLicenseStatus(licenseStatus)
	if err != nil {
		return nil, err
	}

	return &AddItemCommand{
		UnitNumber:       unitNumber,
		ProductCode:      productCode,
		AboRh:            abo,
		ExpirationDate:   expiration,
		VisualInspection: inspection,
		LicenseStatus:    license,
		EmployeeID:       employeeID,
	}, nil
}

// Item is one product received under an assessment
type Item struct {
	ID               uuid.UUID              `json:"id"`
	UnitNumber       string                 `json:"unitNumber"`
	ProductCode      string                 `json:"productCode"`
	AboRh            core.AboRh             `json:"aboRh"`
	ExpirationDate   time.Time              `json:"expirationDate"`
	VisualInspection VisualInspection       `json:"visualInspection"`
	LicenseStatus    LicenseStatus          `json:"licenseStatus"`
	EmployeeID       string                 `json:"employeeId"`
	Consequences     []core.ItemConsequence `json:"consequences"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// Quarantined reports whether any consequence applies to the item
func (i *Item) Quarantined() bool {
	return len(i.Consequences) > 0
}

// AddItem validates the scanned product against the reference data and the
// assessment's state, then appends it with the consequences of every failed
// property: an unsatisfactory visual inspection and an UNACCEPTABLE
// temperature or transit time.
func (a *Assessment) AddItem(ctx context.Context, cmd *AddItemCommand, cfg core.ConfigurationService, repo core.ProductConsequenceRepository) (*Item, error) {
	if cmd == nil {
		return nil, core.NewPreconditionError(MsgAddItemCommandRequired)
	}
	if cfg == nil {
		return nil, core.NewPreconditionError(core.MsgConfigurationServiceRequired)
	}
	if repo == nil {
		return nil, core.NewPreconditionError(core.MsgConsequenceRepositoryRequired)
	}
	if len(a.Items)+1 > a.MaxProducts {
		return nil, core.NewPreconditionError(MsgMaxProductsReached)
	}
	if a.Status == StatusCompleted {
		return nil, core.NewPreconditionError(MsgAssessmentCompleted)
	}

	if err := a.checkFacility(ctx, cmd.UnitNumber, cfg); err != nil {
		return nil, err
	}
	if err := a.checkProduct(ctx, cmd.ProductCode, cfg); err != nil {
		return nil, err
	}

	consequences, err := a.itemConsequences(ctx, cmd, repo)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:               uuid.New(),
		UnitNumber:       cmd.UnitNumber,
		ProductCode:      cmd.ProductCode,
		AboRh:            cmd.AboRh,
		ExpirationDate:   cmd.ExpirationDate,
		VisualInspection: cmd.VisualInspection,
		LicenseStatus:    cmd.LicenseStatus,
		EmployeeID:       cmd.EmployeeID,
		Consequences:     consequences,
		CreatedAt:        time.Now().UTC(),
	}
	a.Items = append(a.Items, item)
	a.ModifiedAt = item.CreatedAt
	return item, nil
}

func (a *Assessment) checkFacility(ctx context.Context, unitNumber string, cfg core.ConfigurationService) error {
	if isBlank(unitNumber) {
		return core.NewPreconditionError(MsgUnitNumberRequired)
	}
	if len(unitNumber) < 5 {
		return core.NewPreconditionError(core.MsgFacilityNotRegistered)
	}

	facility, err := cfg.FindFacilityByCode(ctx, unitNumber[:5])
	if err != nil && !core.IsNotFound(err) {
		return fmt.Errorf("failed to find facility: %w", err)
	}
	if facility == nil {
		return core.NewPreconditionError(core.MsgFacilityNotRegistered)
	}
	return nil
}

func (a *Assessment) checkProduct(ctx context.Context, productCode string, cfg core.ConfigurationService) error {
	if isBlank(productCode) {
		return core.NewPreconditionError(MsgProductCodeRequired)
	}

	product, err := cfg.FindProductByCodeAndTemperatureCategory(ctx, productCode, a.TemperatureCategory)
	if err != nil && !core.IsNotFound(err) {
		return fmt.Errorf("failed to find product: %w", err)
	}
	if product == nil {
		return core.NewPreconditionError(core.MsgProductTypeMismatch)
	}
	return nil
}

func (a *Assessment) itemConsequences(ctx context.Context, cmd *AddItemCommand, repo core.ProductConsequenceRepository) ([]core.ItemConsequence, error) {
	var failed []core.ResultProperty
	if cmd.VisualInspection == VisualInspectionUnsatisfactory {
		failed = append(failed, core.PropertyVisualInspection)
	}
	if a.TemperatureResult == core.ResultUnacceptable {
		failed = append(failed, core.PropertyTemperature)
	}
	if a.TransitTimeResult == core.ResultUnacceptable {
		failed = append(failed, core.PropertyTransitTime)
	}

	consequences := []core.ItemConsequence{}
	for _, property := range failed {
		rules, err := repo.FindConsequencesByCategoryAndProperty(ctx, a.TemperatureCategory, property)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s consequences: %w", property, err)
		}
		// the first unacceptable rule names the consequence; none configured means none applies
		for _, rule := range rules {
			if !rule.Acceptable {
				consequences = append(consequences, core.ItemConsequence{
					ResultProperty:    property,
					ConsequenceType:   rule.ConsequenceType,
					ConsequenceReason: rule.ConsequenceReason,
				})
				break
			}
		}
	}
	return consequences, nil
}
