package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PendingPushToken is stored when push is requested before a device registers
const PendingPushToken = "pending_registration"

// AlertState is the lifecycle state of a subscription
type AlertState string

const (
	AlertStateActive   AlertState = "active"
	AlertStateInactive AlertState = "inactive"
)

// AlertSubscription represents a standing request to be notified about prices
type AlertSubscription struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Email          *string    `json:"email,omitempty" db:"email"`
	PushToken      *string    `json:"pushToken,omitempty" db:"push_token"`
	MinPrice       float64    `json:"minPrice" db:"min_price"`
	TimeWindowFrom *string    `json:"timeWindowFrom,omitempty" db:"time_window_from"`
	TimeWindowTo   *string    `json:"timeWindowTo,omitempty" db:"time_window_to"`
	IsActive       bool       `json:"isActive" db:"is_active"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	DeactivatedAt  *time.Time `json:"deactivatedAt,omitempty" db:"deactivated_at"`
}

// State returns the lifecycle state derived from the active flag
func (a *AlertSubscription) State() AlertState {
	if a.IsActive {
		return AlertStateActive
	}
	return AlertStateInactive
}

// Window returns the time window bounds, empty when unset
func (a *AlertSubscription) Window() (from, to string) {
	if a.TimeWindowFrom != nil {
		from = *a.TimeWindowFrom
	}
	if a.TimeWindowTo != nil {
		to = *a.TimeWindowTo
	}
	return from, to
}

// HasEmail reports whether the subscription has an email channel
func (a *AlertSubscription) HasEmail() bool {
	return a.Email != nil && *a.Email != ""
}

// HasPush reports whether the subscription has a push channel
func (a *AlertSubscription) HasPush() bool {
	return a.PushToken != nil && *a.PushToken != ""
}

// AlertTrigger is the result of matching one subscription against one day
type AlertTrigger struct {
	SubscriptionID    uuid.UUID       `json:"subscriptionId"`
	Date              string          `json:"date"`
	MatchingIntervals []PriceInterval `json:"matchingIntervals"`
}

// CreateAlertRequest represents the request to create a subscription
type CreateAlertRequest struct {
	Email          *string  `json:"email" binding:"omitempty,email" example:"seller@example.com"`
	MinPrice       *float64 `json:"minPrice" binding:"required,gt=0" example:"120"`
	TimeWindowFrom *string  `json:"timeWindowFrom" binding:"omitempty,hhmm" example:"10:00"`
	TimeWindowTo   *string  `json:"timeWindowTo" binding:"omitempty,hhmm" example:"16:00"`
	EnablePush     bool     `json:"enablePush" example:"false"`
	PushToken      *string  `json:"pushToken,omitempty"`
}

// UnmarshalJSON decodes the request with blank optional strings treated as
// absent, so binding validation only sees real values.
func (r *CreateAlertRequest) UnmarshalJSON(data []byte) error {
	type plain CreateAlertRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = CreateAlertRequest(p)
	r.Email = nonBlank(r.Email)
	r.TimeWindowFrom = nonBlank(r.TimeWindowFrom)
	r.TimeWindowTo = nonBlank(r.TimeWindowTo)
	r.PushToken = nonBlank(r.PushToken)
	return nil
}

// nonBlank returns the trimmed value, or nil for a nil or blank string
func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// AlertResponse is the public view of a subscription with the push token masked
type AlertResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          *string   `json:"email"`
	PushToken      *string   `json:"pushToken"`
	MinPrice       float64   `json:"minPrice"`
	TimeWindowFrom *string   `json:"timeWindowFrom"`
	TimeWindowTo   *string   `json:"timeWindowTo"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewAlertResponse builds the public view of a subscription
func NewAlertResponse(a *AlertSubscription) AlertResponse {
	resp := AlertResponse{
		ID:             a.ID,
		Email:          a.Email,
		MinPrice:       a.MinPrice,
		TimeWindowFrom: a.TimeWindowFrom,
		TimeWindowTo:   a.TimeWindowTo,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
	}
	if a.HasPush() {
		masked := "***"
		resp.PushToken = &masked
	}
	return resp
}

// ListAlertsResponse represents the active subscriptions
type ListAlertsResponse struct {
	Count  int             `json:"count"`
	Alerts []AlertResponse `json:"alerts"`
}

// CreateAlertResponse is returned after a subscription is created
type CreateAlertResponse struct {
	Success bool          `json:"success"`
	Alert   AlertResponse `json:"alert"`
}
