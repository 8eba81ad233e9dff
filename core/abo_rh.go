package core

// AboRh is the human blood-group code produced by blood-group translation
type AboRh string

const (
	AboRhAPositive  AboRh = "AP"
	AboRhANegative  AboRh = "AN"
	AboRhBPositive  AboRh = "BP"
	AboRhBNegative  AboRh = "BN"
	AboRhABPositive AboRh = "ABP"
	AboRhABNegative AboRh = "ABN"
	AboRhOPositive  AboRh = "OP"
	AboRhONegative  AboRh = "ON"
)

var aboRhLabels = map[AboRh]string{
	AboRhAPositive:  "A Positive",
	AboRhANegative:  "A Negative",
	AboRhBPositive:  "B Positive",
	AboRhBNegative:  "B Negative",
	AboRhABPositive: "AB Positive",
	AboRhABNegative: "AB Negative",
	AboRhOPositive:  "O Positive",
	AboRhONegative:  "O Negative",
}

// ParseAboRh returns the AboRh for a code, or a precondition error for unknown codes
func ParseAboRh(code string) (AboRh, error) {
	a := AboRh(code)
	if _, ok := aboRhLabels[a]; !ok {
		return "", NewPreconditionError(MsgAboRhInvalid)
	}
	return a, nil
}

// Label returns the expanded description, e.g. "B Negative"
func (a AboRh) Label() string {
	return aboRhLabels[a]
}

// String returns the string representation
func (a AboRh) String() string {
	return string(a)
}
