package cmd

import (
	"fmt"
	"io"
	"strings"

	"receiving/service"
	"receiving/shipment"
)

// renderUseCaseOutput displays a validation outcome and its notifications
func renderUseCaseOutput(w io.Writer, title string, out *service.UseCaseOutput) {
	if out.Data != nil {
		if out.Data.Valid {
			successColor.Fprintf(w, "✓ %s valid\n", title)
		} else {
			errorColor.Fprintf(w, "✗ %s not valid\n", title)
		}
		printField(w, "Result", out.Data.Result)
		printField(w, "Description", out.Data.ResultDescription)
	}

	for _, n := range out.Notifications {
		c := warningColor
		if n.Type == service.NotificationSystem {
			c = errorColor
		}
		c.Fprintf(w, "[%s %d] %s\n", n.Type, n.Code, n.Message)
	}
}

// renderAssessment displays a shipment assessment and its items
func renderAssessment(w io.Writer, a *shipment.Assessment) {
	headerColor.Fprintf(w, "Assessment %s\n", a.ID)
	headerColor.Fprintln(w, strings.Repeat("=", 72))
	printField(w, "Status", string(a.Status))
	printField(w, "Category", a.TemperatureCategory)
	printField(w, "Location", a.LocationCode)
	if a.Temperature != nil {
		printField(w, "Temperature", fmt.Sprintf("%s (%s)", a.Temperature.StringFixed(2), a.TemperatureResult))
	}
	if a.TotalTransitTime != "" {
		printField(w, "Transit time", fmt.Sprintf("%s (%s)", a.TotalTransitTime, a.TransitTimeResult))
	}
	if a.Quarantined() {
		errorColor.Fprintln(w, "All products will be quarantined")
	}

	if len(a.Items) == 0 {
		warningColor.Fprintln(w, "No products")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-16s %-10s %-5s %-14s %s\n", "Unit Number", "Product", "ABO", "Inspection", "Consequences")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, item := range a.Items {
		reasons := make([]string, 0, len(item.Consequences))
		for _, c := range item.Consequences {
			reasons = append(reasons, c.ConsequenceReason)
		}
		consequences := "-"
		if len(reasons) > 0 {
			consequences = strings.Join(reasons, ", ")
		}
		fmt.Fprintf(w, "%-16s %-10s %-5s %-14s %s\n",
			item.UnitNumber, item.ProductCode, item.AboRh, item.VisualInspection, consequences)
	}
}

// printField prints a labeled value, skipping empty values
func printField(w io.Writer, key, value string) {
	if value == "" {
		return
	}
	infoColor.Fprintf(w, "  %-14s ", key+":")
	fmt.Fprintln(w, value)
}
