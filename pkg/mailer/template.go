package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

const otpSubject = "Your login code"

const otpHTML = `<div>
  <h1>One-time password code: {{.Code}}</h1>
  <p>Please use this code to verify your identity.</p>
  <p>This code will expire in {{.Minutes}} minutes.</p>
  <p>If you did not request a code, you can ignore this email.</p>
</div>`

const otpText = `One-time password code: {{.Code}}

Please use this code to verify your identity.
This code will expire in {{.Minutes}} minutes.

If you did not request a code, you can ignore this email.
`

var (
	otpHTMLTemplate = htmltemplate.Must(htmltemplate.New("otp_html").Parse(otpHTML))
	otpTextTemplate = texttemplate.Must(texttemplate.New("otp_text").Parse(otpText))
)

type otpParams struct {
	Code    string
	Minutes int
}

// NewOTPMessage renders the login code email for to.
func NewOTPMessage(to, code string, expiry time.Duration) (Message, error) {
	params := otpParams{Code: code, Minutes: int(expiry.Minutes())}

	var html, text bytes.Buffer
	if err := otpHTMLTemplate.Execute(&html, params); err != nil {
		return Message{}, fmt.Errorf("render otp html: %w", err)
	}
	if err := otpTextTemplate.Execute(&text, params); err != nil {
		return Message{}, fmt.Errorf("render otp text: %w", err)
	}

	return Message{
		To:       to,
		Subject:  otpSubject,
		HTMLBody: html.String(),
		TextBody: text.String(),
		Tag:      "login-code",
	}, nil
}
