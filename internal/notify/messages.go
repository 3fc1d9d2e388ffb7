package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const signature = "Best Regards,\nThe LitVerse Team"

type Message struct {
	Subject string
	Body    string
}

func Welcome(name string) Message {
	return Message{
		Subject: "Welcome to LitVerse!",
		Body: fmt.Sprintf("Hi %s,\n\nThank you for joining LitVerse!\n"+
			"We're thrilled to have you in our community of book lovers.\n\n"+
			"Happy reading!\n\n%s", name, signature),
	}
}

func OrderConfirmation(name string, orderID int64, total decimal.Decimal) Message {
	if name == "" {
		name = "Valued Customer"
	}
	return Message{
		Subject: "Order Confirmation",
		Body: fmt.Sprintf("Hi %s,\n\nGreat news! Your order has been placed successfully.\n\n"+
			"Order ID: %d\nTotal Price: $%s\n\n"+
			"Thank you for choosing LitVerse! We hope you enjoy your books.\n\n%s",
			name, orderID, total.StringFixed(2), signature),
	}
}

func OrderStatusUpdated(name string, orderID int64, status string) Message {
	return Message{
		Subject: "Order's Status updated",
		Body: fmt.Sprintf("Hi %s,\n\nWe wanted to update you on your order status.\n\n"+
			"Order ID: %d\nCurrent Status: %s\n\n"+
			"If you have any questions, feel free to reach out.\n\n%s",
			name, orderID, strings.ToUpper(status), signature),
	}
}

func AdminNewOrder(customerName, customerEmail string, orderID int64, total decimal.Decimal, placedAt time.Time) Message {
	return Message{
		Subject: "New Order Notification",
		Body: fmt.Sprintf("Dear Admin,\n\nA new order has been placed:\n\n"+
			"Customer Name: %s\nCustomer Email: %s\nOrder ID: %d\nTotal Price: $%s\nOrder Date: %s\n\n"+
			"Please review and process the order at your earliest convenience.\n\n%s",
			customerName, customerEmail, orderID, total.StringFixed(2),
			placedAt.Format(time.RFC1123), signature),
	}
}
