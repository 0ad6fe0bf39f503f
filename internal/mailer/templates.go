package mailer

import (
	"fmt"
	"strings"

	"github.com/agamariel/cryptomart/internal/models"
)

// OrderConfirmation собирает тему и тело письма-подтверждения заказа.
func OrderConfirmation(order *models.Order) (subject, textBody, htmlBody string) {
	subject = fmt.Sprintf("Order %s confirmed", order.Number)

	var text strings.Builder
	var html strings.Builder

	fmt.Fprintf(&text, "Thank you for your order %s!\n\n", order.Number)
	html.WriteString("<h2>Thank you for your order " + order.Number + "!</h2><ul>")

	for _, item := range order.Items {
		line := fmt.Sprintf("%s x%d - %s", item.Name, item.Quantity, item.LineTotal().StringFixed(2))
		fmt.Fprintf(&text, "  %s\n", line)
		html.WriteString("<li>" + line + "</li>")
	}
	html.WriteString("</ul>")

	fmt.Fprintf(&text, "\nShipping: %s\n", order.ShippingCost.StringFixed(2))
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&text, "Discount: -%s\n", order.DiscountAmount.StringFixed(2))
		html.WriteString("<p>Discount: -" + order.DiscountAmount.StringFixed(2) + "</p>")
	}
	fmt.Fprintf(&text, "Total: %s\n", order.Total.StringFixed(2))
	html.WriteString("<p>Shipping: " + order.ShippingCost.StringFixed(2) + "</p>")
	html.WriteString("<p><b>Total: " + order.Total.StringFixed(2) + "</b></p>")

	return subject, text.String(), html.String()
}

// ShippingNotice собирает тему и тело письма об отправке заказа.
func ShippingNotice(order *models.Order) (subject, textBody, htmlBody string) {
	subject = fmt.Sprintf("Order %s has shipped", order.Number)

	tracking := ""
	trackingURL := ""
	if order.TrackingNumber != nil {
		tracking = *order.TrackingNumber
	}
	if order.TrackingURL != nil {
		trackingURL = *order.TrackingURL
	}

	textBody = fmt.Sprintf(
		"Good news! Your order %s is on its way.\n\nTracking number: %s\nTrack it here: %s\n",
		order.Number, tracking, trackingURL,
	)
	htmlBody = fmt.Sprintf(
		"<h2>Your order %s is on its way</h2><p>Tracking number: %s</p><p><a href=%q>Track your package</a></p>",
		order.Number, tracking, trackingURL,
	)

	return subject, textBody, htmlBody
}
