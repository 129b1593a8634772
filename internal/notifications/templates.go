package notifications

import (
	"fmt"
	"html"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/email"
)

const brandName = "Buy2Brands"

func customerName(user *models.User, order *models.Order) string {
	if user != nil && user.FullName() != "" {
		return user.FullName()
	}
	if order != nil && order.ShippingAddress.FullName != "" {
		return order.ShippingAddress.FullName
	}
	return "Customer"
}

func itemLines(order *models.Order) []string {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		detail := ""
		switch {
		case item.IsPack:
			detail = fmt.Sprintf(" (%dx pack)", item.PackMultiplier)
		case item.Size != "" || item.Color != "":
			detail = fmt.Sprintf(" (%s %s)", item.Size, item.Color)
		}
		lines = append(lines, fmt.Sprintf("%s - %s%s x%d: £%s", item.Brand, item.Name, strings.TrimRight(detail, " "), item.Quantity, item.TotalPrice))
	}
	return lines
}

func totalsLines(order *models.Order) []string {
	return []string{
		"Subtotal: £" + order.Subtotal.String(),
		"Tax: £" + order.Tax.String(),
		"Shipping: £" + order.ShippingCost.String(),
		"Total: £" + order.Total.String(),
	}
}

// render produces the plain text body and a minimal HTML twin from the same paragraphs.
func render(paragraphs ...[]string) (string, string) {
	var text, markup strings.Builder
	markup.WriteString("<html><body>")
	for i, block := range paragraphs {
		if i > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(strings.Join(block, "\n"))

		escaped := make([]string, len(block))
		for j, line := range block {
			escaped[j] = html.EscapeString(line)
		}
		markup.WriteString("<p>")
		markup.WriteString(strings.Join(escaped, "<br>"))
		markup.WriteString("</p>")
	}
	markup.WriteString("</body></html>")
	return text.String(), markup.String()
}

func customerOrderEmail(order *models.Order, user *models.User) email.Message {
	text, body := render(
		[]string{fmt.Sprintf("Dear %s,", customerName(user, order))},
		[]string{fmt.Sprintf("Thank you for your order %s. We have received your payment and will start processing it shortly.", order.OrderNumber)},
		itemLines(order),
		totalsLines(order),
		[]string{"Delivering to: " + order.ShippingAddress.OneLine()},
		[]string{"The " + brandName + " team"},
	)
	return email.Message{
		To:      recipient(user, order),
		ToName:  customerName(user, order),
		Subject: "Order Confirmation - " + order.OrderNumber,
		Text:    text,
		HTML:    body,
	}
}

func adminOrderEmail(order *models.Order, user *models.User, to string) email.Message {
	company := ""
	if user != nil {
		company = user.CompanyName
	}
	text, body := render(
		[]string{fmt.Sprintf("New order %s placed by %s (%s).", order.OrderNumber, customerName(user, order), company)},
		[]string{"Email: " + recipient(user, order), "Phone: " + order.ShippingAddress.Phone},
		itemLines(order),
		totalsLines(order),
		[]string{"Ship to: " + order.ShippingAddress.OneLine()},
	)
	return email.Message{
		To:      to,
		Subject: fmt.Sprintf("New Order #%s - £%s", order.OrderNumber, order.Total),
		Text:    text,
		HTML:    body,
	}
}

func customerCancellationEmail(order *models.Order, user *models.User) email.Message {
	text, body := render(
		[]string{fmt.Sprintf("Dear %s,", customerName(user, order))},
		[]string{fmt.Sprintf("Your order %s has been cancelled.", order.OrderNumber)},
		totalsLines(order),
		[]string{"If you did not request this, please contact us."},
	)
	return email.Message{
		To:      recipient(user, order),
		ToName:  customerName(user, order),
		Subject: "Order Cancelled - " + order.OrderNumber,
		Text:    text,
		HTML:    body,
	}
}

func adminCancellationEmail(order *models.Order, user *models.User, to string) email.Message {
	text, body := render(
		[]string{fmt.Sprintf("Order %s was cancelled by %s.", order.OrderNumber, customerName(user, order))},
		totalsLines(order),
	)
	return email.Message{
		To:      to,
		Subject: fmt.Sprintf("Order Cancelled #%s - £%s", order.OrderNumber, order.Total),
		Text:    text,
		HTML:    body,
	}
}

func returnRequestEmail(req *models.ReturnRequest, user *models.User, to string) email.Message {
	from := "unknown customer"
	if user != nil {
		from = fmt.Sprintf("%s <%s>", user.FullName(), user.Email)
	}
	text, body := render(
		[]string{fmt.Sprintf("New return request for order %s from %s.", req.OrderNumber, from)},
		[]string{"Reason: " + string(req.Reason)},
		[]string{req.Message},
	)
	return email.Message{
		To:      to,
		Subject: fmt.Sprintf("New Return Request - %s (%s)", req.OrderNumber, req.Reason),
		Text:    text,
		HTML:    body,
	}
}

func recipient(user *models.User, order *models.Order) string {
	if user != nil && user.Email != "" {
		return user.Email
	}
	if order != nil {
		return order.ShippingAddress.Email
	}
	return ""
}
