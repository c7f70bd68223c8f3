package utils

import (
	"fmt"

	"github.com/Govind-619/CampusDine/models"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier sends order and payment notifications over SMTP. It is the
// concrete implementation of the notification collaborator the order state
// machine emits to on every successful transition.
type EmailNotifier struct {
	config EmailConfig
}

// NewEmailNotifier creates an EmailNotifier from config
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	return &EmailNotifier{config: config}
}

func (n *EmailNotifier) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.config.Host, n.config.Port, n.config.Username, n.config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// OrderStatusChanged notifies the customer that their order moved to a new
// status.
func (n *EmailNotifier) OrderStatusChanged(order *models.Order, previous string) error {
	LogInfo("Sending order status email - Order ID: %d, %s -> %s", order.ID, previous, order.Status)
	subject := fmt.Sprintf("CampusDine order #%d is now %s", order.ID, order.Status)
	body := fmt.Sprintf(`
		<h2>Order update</h2>
		<p>Your order #%d has moved from <b>%s</b> to <b>%s</b>.</p>
		<p>Order total: ₹%.2f</p>`,
		order.ID, previous, order.Status, float64(order.TotalAmount)/100)
	return n.send(order.User.Email, subject, body)
}

// PaymentCaptured notifies the customer that their payment went through.
func (n *EmailNotifier) PaymentCaptured(user *models.User, txn *models.PaymentTransaction) error {
	LogInfo("Sending payment captured email - Payment: %s, User ID: %d", txn.GatewayPaymentID, user.ID)
	subject := "CampusDine payment received"
	body := fmt.Sprintf(`
		<h2>Payment received</h2>
		<p>We received your payment of ₹%.2f via %s.</p>
		<p>Reference: %s</p>`,
		float64(txn.Amount)/100, txn.MethodType, txn.GatewayPaymentID)
	return n.send(user.Email, subject, body)
}

// RefundSettled notifies the customer that a refund was processed.
func (n *EmailNotifier) RefundSettled(user *models.User, refund *models.PaymentRefund) error {
	LogInfo("Sending refund settled email - Refund: %s, User ID: %d", refund.GatewayRefundID, user.ID)
	subject := "CampusDine refund processed"
	body := fmt.Sprintf(`
		<h2>Refund processed</h2>
		<p>Your refund of ₹%.2f has been processed by the payment gateway.</p>
		<p>Reference: %s</p>`,
		float64(refund.Amount)/100, refund.GatewayRefundID)
	return n.send(user.Email, subject, body)
}
