package notifications

import (
	"fmt"
	"strings"
	"text/template"
)

// Kind тип уведомления, по нему выбирается шаблон
type Kind string

const (
	KindAppointmentRequested Kind = "appointment_requested"
	KindAppointmentConfirmed Kind = "appointment_confirmed"
	KindAppointmentRejected  Kind = "appointment_rejected"
	KindAppointmentCompleted Kind = "appointment_completed"
	KindAppointmentCancelled Kind = "appointment_cancelled"
	KindReminder             Kind = "reminder"
)

// TemplateData данные для подстановки в шаблоны
type TemplateData struct {
	RecipientName string
	AnimalName    string
	ClinicName    string
	StartAt       string
	Reason        string
	Notes         string
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(kind Kind, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(string(kind) + ".subject").Parse(subject)),
		body:    template.Must(template.New(string(kind) + ".body").Parse(body)),
	}
}

var templates = map[Kind]messageTemplate{
	KindAppointmentRequested: mustTemplate(KindAppointmentRequested,
		"New appointment request: {{.AnimalName}} on {{.StartAt}}",
		`Hello {{.RecipientName}},

A new appointment for {{.AnimalName}} was requested at {{.ClinicName}} on {{.StartAt}}.
{{if .Notes}}Owner notes: {{.Notes}}
{{end}}Please confirm or reject it in your agenda.
`),
	KindAppointmentConfirmed: mustTemplate(KindAppointmentConfirmed,
		"Appointment confirmed: {{.AnimalName}} on {{.StartAt}}",
		`Hello {{.RecipientName}},

Your appointment for {{.AnimalName}} at {{.ClinicName}} on {{.StartAt}} is confirmed.
`),
	KindAppointmentRejected: mustTemplate(KindAppointmentRejected,
		"Appointment rejected: {{.AnimalName}} on {{.StartAt}}",
		`Hello {{.RecipientName}},

Unfortunately your appointment for {{.AnimalName}} at {{.ClinicName}} on {{.StartAt}} was rejected.
{{if .Reason}}Reason: {{.Reason}}
{{end}}`),
	KindAppointmentCompleted: mustTemplate(KindAppointmentCompleted,
		"Visit completed: {{.AnimalName}}",
		`Hello {{.RecipientName}},

The visit of {{.AnimalName}} at {{.ClinicName}} on {{.StartAt}} is completed.
{{if .Notes}}Vet notes: {{.Notes}}
{{end}}`),
	KindAppointmentCancelled: mustTemplate(KindAppointmentCancelled,
		"Appointment cancelled: {{.AnimalName}} on {{.StartAt}}",
		`Hello {{.RecipientName}},

The appointment for {{.AnimalName}} at {{.ClinicName}} on {{.StartAt}} was cancelled.
{{if .Reason}}Reason: {{.Reason}}
{{end}}`),
	KindReminder: mustTemplate(KindReminder,
		"Reminder: {{.AnimalName}} at {{.ClinicName}}",
		`Hello {{.RecipientName}},

This is a reminder about the appointment for {{.AnimalName}} at {{.ClinicName}} on {{.StartAt}}.
`),
}

// Render подставляет данные в шаблон и возвращает тему и текст
func Render(kind Kind, data TemplateData) (string, string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, kind)
	}

	var subject, body strings.Builder
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", kind, err)
	}
	return subject.String(), body.String(), nil
}
