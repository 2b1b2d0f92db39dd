package services

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/coffee-order/models"
	"gopkg.in/gomail.v2"
)

const orderNoticeSubject = "We got an order"

// StaffMailer delivers a plaintext message to the staff mailbox.
type StaffMailer interface {
	SendToStaff(subject, replyTo, body string) error
}

type MailConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	StaffAddress string
}

// SMTPMailer sends staff notifications through an SMTP relay.
type SMTPMailer struct {
	config MailConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(config MailConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// checkHeaders rejects header values that would smuggle extra headers in.
func checkHeaders(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("%w: %q", ErrBadHeader, v)
		}
	}
	return nil
}

func (m *SMTPMailer) SendToStaff(subject, replyTo, body string) error {
	if err := checkHeaders(subject, replyTo, m.config.From, m.config.StaffAddress); err != nil {
		return err
	}
	if m.config.StaffAddress == "" {
		return fmt.Errorf("staff mailbox is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", m.config.StaffAddress)
	if replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send staff mail: %w", err)
	}
	return nil
}

// ComposeOrderNotice renders the staff email for a checked out order.
func ComposeOrderNotice(user models.User, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s ordered coffee, here are the details!\n", user.FirstName, user.LastName)
	b.WriteString("-------------------\n")
	fmt.Fprintf(&b, "■ Name\n%s %s\n\n", user.FirstName, user.LastName)
	fmt.Fprintf(&b, "■ Email\n%s\n\n", user.Email)
	fmt.Fprintf(&b, "■ Phone Number\n%s\n\n", user.Tel)
	fmt.Fprintf(&b, "■ Room Number\n%s\n\n", user.RoomNumber)
	fmt.Fprintf(&b, "■ Order\n%s\n", description)
	b.WriteString("-------------------\n")
	return b.String()
}
