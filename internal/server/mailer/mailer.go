// Package mailer sends the outbound account emails. The workflows only see
// the Notifier interface; delivery failures are theirs to report, never to
// roll back on.
package mailer

import (
	"context"
	"fmt"
	"net/url"
)

// Notifier delivers a single HTML email.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ConfirmationEmail builds the subject and HTML body of the registration
// confirmation message. The link embeds the token and email as query
// parameters so the confirmation endpoint can match both.
func ConfirmationEmail(baseURL, email, token string) (subject, body string) {
	link := fmt.Sprintf("%s/confirm-email?token=%s&email=%s",
		baseURL, url.QueryEscape(token), url.QueryEscape(email))

	subject = "Confirm your SIAMS account"
	body = fmt.Sprintf(
		`<p>Welcome to SIAMS.</p>
<p>Please confirm your email address by clicking the link below:</p>
<p><a href=%q>Confirm email</a></p>
<p>If you did not register this account, you can ignore this message.</p>`, link)

	return subject, body
}
