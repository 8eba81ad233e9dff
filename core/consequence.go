package core

import "fmt"

// ProductConsequence is one configured threshold rule for a product category.
//
// ResultValue is a boolean expression such as "TEMPERATURE >= 1 && TEMPERATURE <= 10"
// whose only free identifier is ResultProperty. Rules for a (category, property) pair
// are evaluated in their stored order and the first true expression decides the outcome.
type ProductConsequence struct {
	ID                int64          `json:"id,omitempty" yaml:"id,omitempty"`
	ProductCategory   string         `json:"productCategory" yaml:"productCategory" validate:"notblank"`
	Acceptable        bool           `json:"acceptable" yaml:"acceptable"`
	ResultProperty    ResultProperty `json:"resultProperty" yaml:"resultProperty" validate:"oneof=TEMPERATURE TRANSIT_TIME VISUAL_INSPECTION"`
	ResultType        string         `json:"resultType" yaml:"resultType" validate:"notblank"`
	ResultValue       string         `json:"resultValue" yaml:"resultValue" validate:"notblank"`
	ConsequenceType   string         `json:"consequenceType" yaml:"consequenceType" validate:"notblank"`
	ConsequenceReason string         `json:"consequenceReason" yaml:"consequenceReason" validate:"notblank"`
}

// Validate checks that every string field is non-blank and the property is known
func (c *ProductConsequence) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid product consequence: %w", err)
	}
	return nil
}

// ItemConsequence is the consequence applied to a received item when one of its
// measured properties was unacceptable
type ItemConsequence struct {
	ResultProperty    ResultProperty `json:"resultProperty"`
	ConsequenceType   string         `json:"consequenceType"`
	ConsequenceReason string         `json:"consequenceReason"`
}
