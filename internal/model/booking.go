package model

import (
	"encoding/json"
	"fmt"
)

// StringList decodes a JSON value that may be either a single string or an
// array of strings. The completion service is not reliable about which shape
// it emits for service_ids, so the ambiguity is normalized here, at the
// boundary, and nowhere else.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*s = StringList(many)
	return nil
}

// BookingRequest is one booking attempt as extracted from a tool call. It
// lives only for the duration of a single submission and is never persisted.
type BookingRequest struct {
	ServiceIDs     StringList `json:"service_ids"`
	VehicleType    string     `json:"vehicle_type"`
	StartDateTime  string     `json:"start_date_time"`
	CustomerName   string     `json:"customer_name"`
	PhoneNumber    string     `json:"phone_number"`
	Email          string     `json:"email"`
	VehicleNumber  string     `json:"vehicle_number"`
	ServiceAddress string     `json:"service_address"`
}

// BookingResult is the synchronous outcome of a submission attempt. Failures
// are data, not errors: the message is shown back to the customer as-is.
type BookingResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	BookingID string `json:"booking_id,omitempty"`
}
