package notifier

import (
	"fmt"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
)

// BuyerEmailPlaceholder подставляется в письмо мерчанту, когда провайдер
// не вернул почту покупателя.
const BuyerEmailPlaceholder = "no informado"

// merchantMessage собирает письмо мерчанту о подтверждённой оплате.
func merchantMessage(to string, payment domain.Payment) domain.MailMessage {
	buyer := payment.PayerEmail
	if buyer == "" {
		buyer = BuyerEmailPlaceholder
	}

	html := fmt.Sprintf(
		`<h2>Nuevo pago aprobado</h2>
<p>Pedido: <strong>%s</strong></p>
<p>Comprador: %s</p>
<p>Total: $ %.2f %s</p>
<p>ID de pago: %s</p>`,
		payment.ExternalReference,
		buyer,
		payment.TransactionAmount,
		domain.CurrencyARS,
		payment.ID,
	)

	return domain.MailMessage{
		To:      to,
		Subject: fmt.Sprintf("Nuevo pago aprobado: %s", payment.ExternalReference),
		HTML:    html,
	}
}

// buyerMessage собирает подтверждение покупки для покупателя.
func buyerMessage(payment domain.Payment) domain.MailMessage {
	html := fmt.Sprintf(
		`<h2>¡Gracias por tu compra!</h2>
<p>Recibimos tu pago por el pedido <strong>%s</strong>.</p>
<p>Total abonado: $ %.2f %s</p>`,
		payment.ExternalReference,
		payment.TransactionAmount,
		domain.CurrencyARS,
	)

	return domain.MailMessage{
		To:      payment.PayerEmail,
		Subject: fmt.Sprintf("Confirmación de tu compra %s", payment.ExternalReference),
		HTML:    html,
	}
}
