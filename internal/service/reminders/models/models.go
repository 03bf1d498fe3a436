package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// CreateRuleRequest запрос на создание правила напоминаний
type CreateRuleRequest struct {
	Name       string `json:"name"`
	Scope      string `json:"scope"`
	OffsetDays int    `json:"offsetDays"`
	SendEmail  bool   `json:"sendEmail"`
	SendInApp  bool   `json:"sendInApp"`
	IsActive   *bool  `json:"isActive,omitempty"` // по умолчанию true
}

// Response модели

// RuleResponse правило напоминаний
type RuleResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Scope      string    `json:"scope"`
	OffsetDays int       `json:"offsetDays"`
	SendEmail  bool      `json:"sendEmail"`
	SendInApp  bool      `json:"sendInApp"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RuleListResponse список правил
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// InstanceResponse запланированное напоминание
type InstanceResponse struct {
	ID            uuid.UUID       `json:"id"`
	RuleID        uuid.UUID       `json:"ruleId"`
	UserID        uuid.UUID       `json:"userId"`
	AppointmentID uuid.UUID       `json:"appointmentId"`
	SendAt        time.Time       `json:"sendAt"`
	Status        string          `json:"status"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	LastError     *string         `json:"lastError,omitempty"`
	SentAt        *time.Time      `json:"sentAt,omitempty"`
}

// InstanceListResponse список напоминаний приёма
type InstanceListResponse struct {
	Reminders []InstanceResponse `json:"reminders"`
}

// RunDueResponse итог обработки наступивших напоминаний
type RunDueResponse struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.ReminderRule) *RuleResponse {
	if r == nil {
		return nil
	}
	return &RuleResponse{
		ID:         r.ID,
		Name:       r.Name,
		Scope:      string(r.Scope),
		OffsetDays: r.OffsetDays,
		SendEmail:  r.SendEmail,
		SendInApp:  r.SendInApp,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
	}
}

// FromDomainRuleList конвертирует список правил в DTO
func FromDomainRuleList(rules []*domain.ReminderRule) *RuleListResponse {
	resp := &RuleListResponse{Rules: make([]RuleResponse, 0, len(rules))}
	for _, r := range rules {
		if rr := FromDomainRule(r); rr != nil {
			resp.Rules = append(resp.Rules, *rr)
		}
	}
	return resp
}

// FromDomainInstance конвертирует domain модель в DTO
func FromDomainInstance(i *domain.ReminderInstance) *InstanceResponse {
	if i == nil {
		return nil
	}
	return &InstanceResponse{
		ID:            i.ID,
		RuleID:        i.RuleID,
		UserID:        i.UserID,
		AppointmentID: i.AppointmentID,
		SendAt:        i.SendAt,
		Status:        string(i.Status),
		Payload:       i.Payload,
		LastError:     i.LastError,
		SentAt:        i.SentAt,
	}
}

// FromDomainInstanceList конвертирует список напоминаний в DTO
func FromDomainInstanceList(instances []*domain.ReminderInstance) *InstanceListResponse {
	resp := &InstanceListResponse{Reminders: make([]InstanceResponse, 0, len(instances))}
	for _, i := range instances {
		if ir := FromDomainInstance(i); ir != nil {
			resp.Reminders = append(resp.Reminders, *ir)
		}
	}
	return resp
}
