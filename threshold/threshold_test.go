package threshold

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiving/consequence"
	"receiving/core"
)

func consequenceRule(property core.ResultProperty, expression string, acceptable bool) core.ProductConsequence {
	return core.ProductConsequence{
		ProductCategory:   "ROOM_TEMPERATURE",
		Acceptable:        acceptable,
		ResultProperty:    property,
		ResultType:        "RANGE",
		ResultValue:       expression,
		ConsequenceType:   "QUARANTINE",
		ConsequenceReason: "TRANSIT_CONDITIONS",
	}
}

var transitRules = []core.ProductConsequence{
	consequenceRule(core.PropertyTransitTime, "TRANSIT_TIME >= 0 && TRANSIT_TIME <= (24 * 60)", true),
	consequenceRule(core.PropertyTransitTime, "TRANSIT_TIME > (24 * 60) || TRANSIT_TIME < 0", false),
}

var temperatureRules = []core.ProductConsequence{
	consequenceRule(core.PropertyTemperature, "TEMPERATURE >= 1 && TEMPERATURE <= 10", true),
	consequenceRule(core.PropertyTemperature, "TEMPERATURE < 1 || TEMPERATURE > 10", false),
}

var reference = time.Date(2026, time.March, 14, 9, 15, 0, 0, time.UTC)

func transitCommand(t *testing.T, start time.Time, startZone string, end time.Time, endZone string) *core.ValidateTransitTimeCommand {
	t.Helper()
	cmd, err := core.NewValidateTransitTimeCommand("ROOM_TEMPERATURE", start, startZone, end, endZone)
	require.NoError(t, err)
	return cmd
}

func TestValidateTransitTime(t *testing.T) {
	tests := []struct {
		name        string
		end         time.Time
		startZone   string
		endZone     string
		valid       bool
		result      string
		description string
	}{
		{"five hours", reference.Add(5 * time.Hour), "UTC", "UTC", true, "PT5H", "5h 0m"},
		{"five and a half hours", reference.Add(5*time.Hour + 30*time.Minute), "UTC", "UTC", true, "PT5H30M", "5h 30m"},
		{"thirty minutes", reference.Add(30 * time.Minute), "America/New_York", "America/New_York", true, "PT30M", "0h 30m"},
		{"exactly one day", reference.Add(24 * time.Hour), "UTC", "UTC", true, "PT24H", "24h 0m"},
		{"over one day", reference.Add(24*time.Hour + 5*time.Minute), "UTC", "UTC", false, "PT24H5M", "24h 5m"},
		{"across zones", reference.Add(5 * time.Hour), "America/New_York", "America/Los_Angeles", true, "PT8H", "8h 0m"},
		{"two hours negative", reference.Add(-2 * time.Hour), "America/New_York", "America/New_York", false, "PT-2H", "-2h 0m"},
		{"thirty minutes negative", reference.Add(-30 * time.Minute), "America/New_York", "America/New_York", false, "PT-30M", "0h -30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := transitCommand(t, reference, tt.startZone, tt.end, tt.endZone)

			result, err := ValidateTransitTime(cmd, transitRules)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.result, result.Result)
			assert.Equal(t, tt.description, result.ResultDescription)
			if tt.valid {
				assert.Empty(t, result.Message)
			} else {
				assert.Equal(t, "Total Transit Time does not meet thresholds. All products will be quarantined.", result.Message)
			}
		})
	}
}

func TestValidateTransitTime_Preconditions(t *testing.T) {
	_, err := ValidateTransitTime(nil, transitRules)
	require.Error(t, err)
	assert.Equal(t, "Transit Time Information is required", err.Error())

	cmd := transitCommand(t, reference, "UTC", reference.Add(time.Hour), "UTC")

	_, err = ValidateTransitTime(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, "ProductConsequenceList is required", err.Error())

	_, err = ValidateTransitTime(cmd, []core.ProductConsequence{})
	require.Error(t, err)
	assert.Equal(t, "ProductConsequenceList is required", err.Error())
}

func TestValidateTransitTime_NoRuleMatches(t *testing.T) {
	cmd := transitCommand(t, reference, "UTC", reference.Add(time.Hour), "UTC")
	rules := []core.ProductConsequence{consequenceRule(core.PropertyTransitTime, "false", true)}

	_, err := ValidateTransitTime(cmd, rules)
	require.Error(t, err)
	assert.Equal(t, "Product Consequence not found.", err.Error())
	assert.True(t, errors.Is(err, consequence.ErrNoRuleMatched))
}

func TestValidateTransitTime_InvalidZone(t *testing.T) {
	cmd := &core.ValidateTransitTimeCommand{
		TemperatureCategory: "ROOM_TEMPERATURE",
		StartDateTime:       reference,
		StartTimeZone:       "Mars/Olympus_Mons",
		EndDateTime:         reference,
		EndTimeZone:         "UTC",
	}

	_, err := ValidateTransitTime(cmd, transitRules)
	require.Error(t, err)
	assert.Equal(t, core.MsgTransitStartTimeZoneInvalid, err.Error())
}

func TestValidateTransitTime_Idempotent(t *testing.T) {
	cmd := transitCommand(t, reference, "America/New_York", reference.Add(5*time.Hour), "America/Los_Angeles")

	first, err := ValidateTransitTime(cmd, transitRules)
	require.NoError(t, err)
	second, err := ValidateTransitTime(cmd, transitRules)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeTransitTime_TruncatesTowardZero(t *testing.T) {
	cmd := transitCommand(t, reference, "UTC", reference.Add(-(90 * time.Second)), "UTC")

	transit, err := ComputeTransitTime(cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), transit.TotalMinutes)
	assert.Equal(t, "PT-1M-30S", transit.ISO())
	assert.Equal(t, "0h -1m", transit.Description())
}

func TestValidateTemperature(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		valid   bool
		message string
	}{
		{"within range", "8.0", true, ""},
		{"lower bound", "1", true, ""},
		{"frozen", "-15.0", false, "Temperature does not meet thresholds all products will be quarantined"},
		{"just above", "10.01", false, "Temperature does not meet thresholds all products will be quarantined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := core.NewValidateTemperatureCommand(decimal.RequireFromString(tt.value), "REFRIGERATED")
			require.NoError(t, err)

			result, err := ValidateTemperature(cmd, temperatureRules)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.message, result.Message)
			assert.Empty(t, result.Result)
		})
	}
}

func TestValidateTemperature_Preconditions(t *testing.T) {
	_, err := ValidateTemperature(nil, temperatureRules)
	require.Error(t, err)
	assert.Equal(t, "Temperature Information is required", err.Error())

	cmd, err := core.NewValidateTemperatureCommand(decimal.NewFromInt(4), "REFRIGERATED")
	require.NoError(t, err)

	_, err = ValidateTemperature(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, "ProductConsequenceList is required", err.Error())

	_, err = ValidateTemperature(cmd, []core.ProductConsequence{consequenceRule(core.PropertyTemperature, "TEMPERATURE >", true)})
	require.Error(t, err)
	assert.Equal(t, "Product Consequence not found.", err.Error())
	var ruleErr *consequence.RuleError
	assert.True(t, errors.As(err, &ruleErr))
}

func TestFormatISODuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "PT0S"},
		{8 * time.Hour, "PT8H"},
		{5*time.Hour + 30*time.Minute, "PT5H30M"},
		{-30 * time.Minute, "PT-30M"},
		{-2 * time.Hour, "PT-2H"},
		{45 * time.Second, "PT45S"},
		{time.Hour + 2*time.Second, "PT1H2S"},
		{1500 * time.Millisecond, "PT1.5S"},
		{-500 * time.Millisecond, "PT-0.5S"},
		{-(30*time.Second + 500*time.Millisecond), "PT-30.5S"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatISODuration(tt.in))
		})
	}
}

func TestFormatHoursMinutes(t *testing.T) {
	assert.Equal(t, "5h 30m", FormatHoursMinutes(330))
	assert.Equal(t, "0h -30m", FormatHoursMinutes(-30))
	assert.Equal(t, "-2h 0m", FormatHoursMinutes(-120))
	assert.Equal(t, "-1h -5m", FormatHoursMinutes(-65))
}
