package mail

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer sends outbound email. Every send is best-effort: callers on the
// primary mutation path log failures and carry on.
type Mailer interface {
	SendOrganizationInvitation(to, orgName, senderName, roleName, token string) error
	SendProjectInvitation(to, projectName, senderName, roleName, token string) error
	SendMemberAdded(to, userName, projectName, projectURL string) error
	SendTaskReminder(to, userName, taskTitle, projectName string, dueDate time.Time) error
}

// NoopMailer is used when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) SendOrganizationInvitation(string, string, string, string, string) error {
	return nil
}
func (NoopMailer) SendProjectInvitation(string, string, string, string, string) error { return nil }
func (NoopMailer) SendMemberAdded(string, string, string, string) error               { return nil }
func (NoopMailer) SendTaskReminder(string, string, string, string, time.Time) error   { return nil }

type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	clientURL string
}

func NewSMTPMailer(host string, port int, user, password, from, clientURL string) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(host, port, user, password),
		from:      from,
		clientURL: clientURL,
	}
}

func (m *SMTPMailer) send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("[mail] send to %s failed: %v", to, err)
		return err
	}
	return nil
}

func (m *SMTPMailer) SendOrganizationInvitation(to, orgName, senderName, roleName, token string) error {
	inviteURL := fmt.Sprintf("%s/invitations/%s", m.clientURL, token)
	html := fmt.Sprintf(`<p>Hi there!</p>
<p><strong>%s</strong> has invited you to join the organization <strong>%s</strong> as %s.</p>
<p><a href="%s">Accept Invitation</a></p>
<p>This invitation will expire in 7 days.</p>`, senderName, orgName, roleName, inviteURL)
	return m.send(to, fmt.Sprintf("You've been invited to join %s", orgName), html)
}

func (m *SMTPMailer) SendProjectInvitation(to, projectName, senderName, roleName, token string) error {
	inviteURL := fmt.Sprintf("%s/invite/%s", m.clientURL, token)
	html := fmt.Sprintf(`<p>Hi there!</p>
<p><strong>%s</strong> has invited you to join the project <strong>%s</strong> as %s.</p>
<p><a href="%s">Accept Invitation</a></p>
<p>This invitation will expire in 7 days.</p>`, senderName, projectName, roleName, inviteURL)
	return m.send(to, fmt.Sprintf("You've been invited to join %s", projectName), html)
}

func (m *SMTPMailer) SendMemberAdded(to, userName, projectName, projectURL string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>You have been added to the project <strong>%s</strong>.</p>
<p><a href="%s">Open Project</a></p>`, userName, projectName, projectURL)
	return m.send(to, fmt.Sprintf("Added to project: %s", projectName), html)
}

func (m *SMTPMailer) SendTaskReminder(to, userName, taskTitle, projectName string, dueDate time.Time) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>The task <strong>%s</strong> in project <strong>%s</strong> is due on %s.</p>`,
		userName, taskTitle, projectName, dueDate.Format("Jan 2, 2006"))
	return m.send(to, fmt.Sprintf("Reminder: %s is due soon", taskTitle), html)
}

var _ Mailer = (*SMTPMailer)(nil)
var _ Mailer = NoopMailer{}
