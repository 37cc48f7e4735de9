package dto

import "time"

// SubmissionRequest is a form submission, bug report or event to forward to Telegram.
type SubmissionRequest struct {
	Kind      string            `json:"kind" validate:"required,oneof=contact bug_report feedback event"`
	Format    string            `json:"format" validate:"omitempty,oneof=text markdown"`
	Name      string            `json:"name" validate:"omitempty,max=100"`
	Email     string            `json:"email" validate:"omitempty,email,max=254"`
	Subject   string            `json:"subject" validate:"omitempty,max=200"`
	Message   string            `json:"message" validate:"required,max=10000"`
	PageURL   string            `json:"page_url" validate:"omitempty,url,max=2048"`
	UserAgent string            `json:"user_agent" validate:"omitempty,max=512"`
	Metadata  map[string]string `json:"metadata" validate:"omitempty,max=20,dive,keys,max=64,endkeys,max=1024"`
}

type NotifyCommand struct {
	Submission SubmissionRequest
	ClientIP   string
}

type NotifyResponse struct {
	DeliveryID uint `json:"delivery_id"`
	Parts      int  `json:"parts"`
}

type DeliveryResponse struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	ChatID    int64     `json:"chat_id"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Status    string    `json:"status"`
	Parts     int       `json:"parts"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DeliveryListResponse struct {
	Items  []*DeliveryResponse `json:"items"`
	Counts map[string]int64    `json:"counts"`
}
