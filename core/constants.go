package core

// ParseType selects which barcode field a decode operation targets
type ParseType string

const (
	// ParseTypeUnitNumber decodes the donation identification number
	ParseTypeUnitNumber ParseType = "BARCODE_UNIT_NUMBER"
	// ParseTypeProductCode decodes the product code
	ParseTypeProductCode ParseType = "BARCODE_PRODUCT_CODE"
	// ParseTypeExpirationDate decodes the expiration date and time
	ParseTypeExpirationDate ParseType = "BARCODE_EXPIRATION_DATE"
	// ParseTypeBloodGroup decodes the ABO/Rh blood group
	ParseTypeBloodGroup ParseType = "BARCODE_BLOOD_GROUP"
)

// String returns the string representation
func (p ParseType) String() string {
	return string(p)
}

// IsValid checks if the parse type is one of the supported barcode fields
func (p ParseType) IsValid() bool {
	switch p {
	case ParseTypeUnitNumber, ParseTypeProductCode, ParseTypeExpirationDate, ParseTypeBloodGroup:
		return true
	default:
		return false
	}
}

// ParseTypes lists every supported parse type in a stable order
func ParseTypes() []ParseType {
	return []ParseType{ParseTypeUnitNumber, ParseTypeProductCode, ParseTypeExpirationDate, ParseTypeBloodGroup}
}

// ResultProperty names the measured quantity a consequence rule applies to.
// The property name is also the only free identifier in the rule expression.
type ResultProperty string

const (
	// PropertyTemperature is the measured shipment temperature
	PropertyTemperature ResultProperty = "TEMPERATURE"
	// PropertyTransitTime is the elapsed transit time in whole minutes
	PropertyTransitTime ResultProperty = "TRANSIT_TIME"
	// PropertyVisualInspection is the per-item visual inspection outcome
	PropertyVisualInspection ResultProperty = "VISUAL_INSPECTION"
)

// String returns the string representation
func (p ResultProperty) String() string {
	return string(p)
}

// IsValid checks if the property is known
func (p ResultProperty) IsValid() bool {
	switch p {
	case PropertyTemperature, PropertyTransitTime, PropertyVisualInspection:
		return true
	default:
		return false
	}
}

// Outcome recorded on an assessment for a measured property
const (
	ResultAcceptable   = "ACCEPTABLE"
	ResultUnacceptable = "UNACCEPTABLE"
)

// Business outcome messages carried in ValidationResult.Message
const (
	MsgBarcodeNotValid            = "Barcode is not valid"
	MsgFacilityNotRegistered      = "FIN is not associated with a registered facility"
	MsgProductTypeMismatch        = "Product type does not match"
	MsgInvalidExpirationDate      = "Invalid Expiration Date"
	MsgTemperatureQuarantine      = "Temperature does not meet thresholds all products will be quarantined"
	MsgTransitTimeQuarantine      = "Total Transit Time does not meet thresholds. All products will be quarantined."
	MsgVisualInspectionQuarantine = "Visual inspection is unsatisfactory. Product will be quarantined."
)

// Precondition messages carried by *PreconditionError
const (
	MsgBarcodeCommandRequired        = "Barcode Information is required"
	MsgBarcodeValueRequired          = "Barcode value is required"
	MsgParseTypeRequired             = "Parse type is required"
	MsgConfigurationServiceRequired  = "Configuration Service is required"
	MsgBarcodePatternRequired        = "Barcode Pattern is required"
	MsgBarcodePatternInvalid         = "Barcode Pattern is invalid"
	MsgTemperatureCategoryRequired   = "Temperature category is required"
	MsgAboRhInvalid                  = "ABO/RH is Invalid"
	MsgProductConsequenceNotFound    = "Product Consequence not found."
	MsgConsequenceListRequired       = "ProductConsequenceList is required"
	MsgTemperatureCommandRequired    = "Temperature Information is required"
	MsgTransitTimeCommandRequired    = "Transit Time Information is required"
	MsgTransitStartDateRequired      = "Transit start date time is required"
	MsgTransitStartTimeZoneRequired  = "Transit start time zone is required"
	MsgTransitEndDateRequired        = "Transit end date time is required"
	MsgTransitEndTimeZoneRequired    = "Transit end time zone is required"
	MsgTransitStartTimeZoneInvalid   = "Transit start time zone is invalid"
	MsgTransitEndTimeZoneInvalid     = "Transit end time zone is invalid"
	MsgConsequenceRepositoryRequired = "ProductConsequenceRepository is required"
)
