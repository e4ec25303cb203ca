// Package mailer turns queued mail messages into emails.
package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrUnknownType is returned for a message type without a template.
var ErrUnknownType = errors.New("unknown mail type")

type kind struct {
	subject  string
	template string
	data     func() any
}

var kinds = map[string]kind{
	domain.MailTypeWelcome: {
		subject:  "Task Tracker - Welcome",
		template: "welcome.html",
		data:     func() any { return &domain.WelcomeMailData{} },
	},
	domain.MailTypeResetPassword: {
		subject:  "Task Tracker - Reset password",
		template: "reset_password.html",
		data:     func() any { return &domain.ResetPasswordMailData{} },
	},
	domain.MailTypeTaskAssigned: {
		subject:  "Task Tracker - New task assigned",
		template: "task_assigned.html",
		data:     func() any { return &domain.TaskAssignedMailData{} },
	},
}

// queued mirrors domain.MailMessage with the payload left undecoded until the
// type is known.
type queued struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Render returns the subject and html body for a message type.
func Render(mailType string, rawData []byte) (string, string, error) {
	k, ok := kinds[mailType]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownType, mailType)
	}

	data := k.data()
	if len(rawData) > 0 {
		if err := json.Unmarshal(rawData, data); err != nil {
			return "", "", err
		}
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, k.template, data); err != nil {
		return "", "", err
	}

	return k.subject, body.String(), nil
}

// Compose decodes a queue payload and builds the email sent from the given
// address. Every error it returns is permanent: retrying the same payload
// cannot succeed.
func Compose(from string, payload []byte) (*mail.Msg, error) {
	var q queued
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, err
	}

	subject, body, err := Render(q.Type, q.Data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(q.To); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}
