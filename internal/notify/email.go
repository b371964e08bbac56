// Package notify delivers order emails. Delivery is best effort by
// contract: callers log failures and move on, an unreachable SMTP host must
// never fail a checkout.
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
	gomail "gopkg.in/gomail.v2"

	"susurros/internal/domain"
)

// Sender produces and sends the order emails.
type Sender interface {
	// SendOrderConfirmation sends the customer confirmation and the admin
	// alert for a fully populated order.
	SendOrderConfirmation(order *domain.Order) error
}

// NopSender drops every message. Used when SMTP is not configured.
type NopSender struct{}

func (NopSender) SendOrderConfirmation(*domain.Order) error { return nil }

// SMTPSettings configures the outbound mail transport.
type SMTPSettings struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
}

// SMTPSender sends over SMTP via gomail.
type SMTPSender struct {
	settings SMTPSettings
	send     func(m ...*gomail.Message) error
}

func NewSMTPSender(settings SMTPSettings) *SMTPSender {
	d := gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
	return &SMTPSender{settings: settings, send: d.DialAndSend}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) SendOrderConfirmation(order *domain.Order) error {
	var errs []error

	if strings.Contains(order.Customer.Email, "@") {
		subject := fmt.Sprintf("Confirmación de Pedido #%d - Susurros del Café", order.ID)
		body, err := renderBody(customerTemplate, order)
		if err != nil {
			errs = append(errs, err)
		} else if err := s.sendMail(order.Customer.Email, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("customer email: %w", err))
		}
	}

	subject := fmt.Sprintf("Nuevo Pedido #%d - %s", order.ID, order.Customer.Name)
	body, err := renderBody(adminTemplate, order)
	if err != nil {
		errs = append(errs, err)
	} else if err := s.sendMail(s.settings.AdminEmail, subject, body); err != nil {
		errs = append(errs, fmt.Errorf("admin email: %w", err))
	}

	return errors.Join(errs...)
}

func (s *SMTPSender) sendMail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.settings.From, "Susurros del Café")
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.send(m)
}

func renderBody(t *template.Template, order *domain.Order) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, order); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func colones(d decimal.Decimal) string {
	return "₡" + d.StringFixed(0)
}

var funcs = template.FuncMap{"colones": colones}

var customerTemplate = template.Must(template.New("customer").Funcs(funcs).Parse(`<html>
<body>
<h2>¡Gracias por tu pedido, {{.Customer.Name}}!</h2>
<p>Pedido #{{.ID}} · Referencia {{.Reference}}</p>
<table>
<tr><th>Producto</th><th>Cantidad</th><th>Precio</th><th>Subtotal</th></tr>
{{range .Items}}<tr><td>{{.Product.Name}}</td><td>{{.Quantity}}</td><td>{{colones .UnitPrice}}</td><td>{{colones .LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{colones .Subtotal}}<br>
Envío: {{colones .ShippingCost}}<br>
<strong>Total: {{colones .Total}}</strong></p>
<p>Método de pago: {{.PaymentMethod}}</p>
<p>Entrega: {{.Customer.Address}}, {{.Customer.Province}}</p>
</body>
</html>`))

var adminTemplate = template.Must(template.New("admin").Funcs(funcs).Parse(`<html>
<body>
<h2>Nuevo pedido #{{.ID}}</h2>
<p>{{.Customer.Name}} · {{.Customer.Phone}} · {{.Customer.Email}}</p>
<p>{{.Customer.Address}}, {{.Customer.Province}}</p>
<table>
<tr><th>Producto</th><th>Cantidad</th><th>Subtotal</th></tr>
{{range .Items}}<tr><td>{{.Product.Name}}</td><td>{{.Quantity}}</td><td>{{colones .LineTotal}}</td></tr>
{{end}}</table>
<p><strong>Total: {{colones .Total}}</strong> ({{.PaymentMethod}})</p>
{{if .Comments}}<p>Comentarios: {{.Comments}}</p>{{end}}
</body>
</html>`))
