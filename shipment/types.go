package shipment

import (
	"strings"

	"receiving/core"
)

// Status is the lifecycle state of an assessment
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// VisualInspection is the outcome of inspecting one received product
type VisualInspection string

const (
	VisualInspectionSatisfactory   VisualInspection = "SATISFACTORY"
	VisualInspectionUnsatisfactory VisualInspection = "UNSATISFACTORY"
)

// ParseVisualInspection returns the inspection outcome for s
func ParseVisualInspection(s string) (VisualInspection, error) {
	switch v := VisualInspection(strings.TrimSpace(s)); v {
	case VisualInspectionSatisfactory, VisualInspectionUnsatisfactory:
		return v, nil
	default:
		return "", core.NewPreconditionError(MsgVisualInspectionNotConfigured)
	}
}

// LicenseStatus records whether a product is licensed for distribution
type LicenseStatus string

const (
	LicenseStatusLicensed   LicenseStatus = "LICENSED"
	LicenseStatusUnlicensed LicenseStatus = "UNLICENSED"
)

// ParseLicenseStatus returns the license status for s
func ParseLicenseStatus(s string) (LicenseStatus, error) {
	switch l := LicenseStatus(strings.TrimSpace(s)); l {
	case LicenseStatusLicensed, LicenseStatusUnlicensed:
		return l, nil
	default:
		return "", core.NewPreconditionError(MsgLicenseStatusNotConfigured)
	}
}

// Precondition messages raised by assessments
const (
	MsgCreateCommandRequired         = "CreateImportCommand is required"
	MsgAddItemCommandRequired        = "AddImportItemCommand is required"
	MsgLocationCodeRequired          = "Location code is required"
	MsgCommentsTooLong               = "Comments length must be less than 250 characters"
	MsgEmployeeIDRequired            = "Employee id is required"
	MsgThermometerCodeRequired       = "Thermometer code is required"
	MsgNegativeTransitTime           = "Total transit time cannot be negative"
	MsgMaxProductsReached            = "Max number of products reached"
	MsgAssessmentCompleted           = "Import is completed"
	MsgUnitNumberRequired            = "Unit Number is required"
	MsgProductCodeRequired           = "Product Code is required"
	MsgExpirationDateRequired        = "Expiration Date is required"
	MsgVisualInspectionNotConfigured = "Visual Inspection Not Configured"
	MsgLicenseStatusNotConfigured    = "License Status Not Configured"
	MsgCompleteEmployeeIDRequired    = "Complete Employee Id is required"
	MsgAlreadyCompleted              = "Import is already completed"
	MsgNoProducts                    = "Import must have at least one product in the batch"
)

// maxCommentsLength is the longest comment accepted on an assessment
const maxCommentsLength = 250

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
