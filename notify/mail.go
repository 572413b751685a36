package notify

import (
	"bytes"
	"context"
	"errors"
	htmltemplate "html/template"
	"text/template"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("notify: notice has no recipient email")

var textBody = template.Must(template.New("follow_request.txt").Parse(
	`Hi {{.ToUsername}},

{{.FromUsername}} would like to follow you.

Accept: {{.AcceptURL}}
Reject: {{.RejectURL}}

If you ignore this message the request stays pending.
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("follow_request.html").Parse(
	`<p>Hi {{.ToUsername}},</p>
<p><strong>{{.FromUsername}}</strong> would like to follow you.</p>
<p><a href="{{.AcceptURL}}">Accept</a> &middot; <a href="{{.RejectURL}}">Reject</a></p>
<p>If you ignore this message the request stays pending.</p>
`))

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier sends follow request notices over SMTP.
type MailNotifier struct {
	sender sender
	from   string
}

func NewMailNotifier(host string, port int, username, password, from string) *MailNotifier {
	return &MailNotifier{
		sender: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *MailNotifier) NotifyFollowRequest(ctx context.Context, notice FollowRequestNotice) error {
	msg, err := m.message(notice)
	if err != nil {
		return err
	}

	// gomail has no context support; honour a cancellation that happened
	// while the notice sat in the queue.
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sender.DialAndSend(msg)
}

func (m *MailNotifier) message(notice FollowRequestNotice) (*gomail.Message, error) {
	if notice.ToEmail == "" {
		return nil, ErrNoRecipient
	}

	var text, html bytes.Buffer
	if err := textBody.Execute(&text, notice); err != nil {
		return nil, err
	}
	if err := htmlBody.Execute(&html, notice); err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", notice.ToEmail)
	msg.SetHeader("Subject", notice.FromUsername+" wants to follow you")
	msg.SetBody("text/plain", text.String())
	msg.AddAlternative("text/html", html.String())
	return msg, nil
}
