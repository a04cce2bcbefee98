package email

import (
	"fmt"
	"html"
	"strings"
)

// AlertContent is the notification payload rendered into the outbound
// mail body.
type AlertContent struct {
	Title    string
	Message  string
	SaleCode string
	Partner  string
	Operator string
	Author   string
}

// RenderAlert produces the subject and HTML body for an alert email.
func RenderAlert(content AlertContent) (subject, body string) {
	subject = content.Title
	if content.SaleCode != "" {
		subject = fmt.Sprintf("%s - %s", content.Title, content.SaleCode)
	}

	var rows strings.Builder
	writeRow := func(label, value string) {
		if value == "" {
			return
		}
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="padding:4px 12px 4px 0;color:#666;">%s</td><td style="padding:4px 0;">%s</td></tr>`,
			html.EscapeString(label), html.EscapeString(value)))
	}
	writeRow("Venda", content.SaleCode)
	writeRow("Parceiro", content.Partner)
	writeRow("Operadora", content.Operator)
	writeRow("Autor", content.Author)

	body = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;max-width:600px;margin:0 auto;">
  <div style="background:#1a3c6e;color:#fff;padding:16px 24px;">
    <h2 style="margin:0;font-size:18px;">MP Grupo CRM</h2>
  </div>
  <div style="padding:24px;">
    <h3 style="margin-top:0;">%s</h3>
    <p>%s</p>
    <table style="border-collapse:collapse;font-size:14px;">%s</table>
  </div>
  <div style="padding:12px 24px;color:#999;font-size:12px;border-top:1px solid #eee;">
    Esta mensagem foi gerada automaticamente. Por favor n&atilde;o responda a este email.
  </div>
</body>
</html>`,
		html.EscapeString(content.Title),
		html.EscapeString(content.Message),
		rows.String())

	return subject, body
}

// RenderPartnerWelcome produces the onboarding mail with the initial
// credentials for a freshly created partner account.
func RenderPartnerWelcome(partnerName, email, initialPassword string) (subject, body string) {
	subject = "Bem-vindo ao MP Grupo CRM"
	body = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;max-width:600px;margin:0 auto;">
  <div style="background:#1a3c6e;color:#fff;padding:16px 24px;">
    <h2 style="margin:0;font-size:18px;">MP Grupo CRM</h2>
  </div>
  <div style="padding:24px;">
    <h3 style="margin-top:0;">Bem-vindo, %s</h3>
    <p>A sua conta de parceiro foi criada. Utilize as credenciais abaixo para aceder ao sistema:</p>
    <table style="border-collapse:collapse;font-size:14px;">
      <tr><td style="padding:4px 12px 4px 0;color:#666;">Email</td><td style="padding:4px 0;">%s</td></tr>
      <tr><td style="padding:4px 12px 4px 0;color:#666;">Password inicial</td><td style="padding:4px 0;"><code>%s</code></td></tr>
    </table>
    <p>Por motivos de seguran&ccedil;a ser&aacute; pedido que altere a password no primeiro acesso.</p>
  </div>
</body>
</html>`,
		html.EscapeString(partnerName),
		html.EscapeString(email),
		html.EscapeString(initialPassword))
	return subject, body
}
