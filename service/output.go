package service

import "receiving/core"

// NotificationType classifies a use-case notification
type NotificationType string

const (
	// NotificationCaution reports a business outcome the operator must act on
	NotificationCaution NotificationType = "CAUTION"
	// NotificationSystem reports that the use case could not be completed
	NotificationSystem NotificationType = "SYSTEM"
)

// Notification codes, one pair per use case
const (
	CodeBarcodeCaution     = 2
	CodeBarcodeSystem      = 3
	CodeTemperatureCaution = 4
	CodeTemperatureSystem  = 5
	CodeTransitTimeCaution = 6
	CodeTransitTimeSystem  = 7
)

// Notification is a message attached to a use-case output
type Notification struct {
	Type    NotificationType `json:"type"`
	Code    int              `json:"code"`
	Message string           `json:"message"`
}

// UseCaseOutput is the result of a receiving use case.
// Data is nil when a SYSTEM notification is present.
type UseCaseOutput struct {
	Data          *core.ValidationResult `json:"data"`
	Notifications []Notification         `json:"notifications"`
}

// HasSystemError reports whether the use case failed to complete
func (o *UseCaseOutput) HasSystemError() bool {
	for _, n := range o.Notifications {
		if n.Type == NotificationSystem {
			return true
		}
	}
	return false
}

func resultOutput(result core.ValidationResult, cautionCode int) *UseCaseOutput {
	out := &UseCaseOutput{Data: &result, Notifications: []Notification{}}
	if !result.Valid {
		out.Notifications = append(out.Notifications, Notification{
			Type:    NotificationCaution,
			Code:    cautionCode,
			Message: result.Message,
		})
	}
	return out
}

func systemOutput(message string, code int) *UseCaseOutput {
	return &UseCaseOutput{
		Notifications: []Notification{{Type: NotificationSystem, Code: code, Message: message}},
	}
}
