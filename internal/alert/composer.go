package alert

import (
	"fmt"
	"strings"
	"time"

	"Lifeline/internal/models"
)

// DefaultMessage is used when the triggering request carries no free text.
const DefaultMessage = "Emergency assistance needed!"

const timeLayout = "Mon, 02 Jan 2006 15:04:05 MST"

// MapLink renders the Google Maps link for a coordinate pair.
func MapLink(loc models.Location) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", loc.Lat, loc.Lng)
}

// ComposeAlert renders the notification body sent to every contact when an
// alert is triggered. Pure formatting; fields are embedded as-is.
func ComposeAlert(ownerName string, loc models.Location, alertType models.AlertType, message, trackingCode string, createdAt time.Time) string {
	if message == "" {
		message = DefaultMessage
	}
	if ownerName == "" {
		ownerName = "Someone"
	}
	var b strings.Builder
	b.WriteString("🚨 EMERGENCY ALERT 🚨\n\n")
	fmt.Fprintf(&b, "%s needs help!\n", ownerName)
	fmt.Fprintf(&b, "Type: %s\n", strings.ToUpper(string(alertType)))
	fmt.Fprintf(&b, "Message: %s\n", message)
	fmt.Fprintf(&b, "Location: %s\n", MapLink(loc))
	fmt.Fprintf(&b, "Time: %s\n\n", createdAt.Format(timeLayout))
	fmt.Fprintf(&b, "Tracking code: %s", trackingCode)
	return b.String()
}

// ComposeResolution renders the all-clear body sent to primary contacts when
// an alert is resolved.
func ComposeResolution(trackingCode string, resolvedAt time.Time) string {
	return fmt.Sprintf("✅ Emergency alert %s has been resolved at %s. Thank you for being there.",
		trackingCode, resolvedAt.Format(timeLayout))
}
