package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/washlane/booking-assistant/internal/catalog"
	"github.com/washlane/booking-assistant/internal/llm"
	"github.com/washlane/booking-assistant/internal/model"
)

// ToolBookAppointment is the single tool declared to the completion service.
const ToolBookAppointment = "book_appointment"

// BookingTool builds the book_appointment tool schema with service and
// vehicle-type enums drawn from the catalog.
func BookingTool(cat *catalog.Catalog) llm.Tool {
	return llm.Tool{
		Name: ToolBookAppointment,
		Description: "Book an appointment with one or more services for a specific vehicle type. " +
			"This will send the booking to the backend API.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string", "enum": cat.ServiceIDs()},
					"description": "Array of service IDs to book. Can also be a single service ID string.",
				},
				"vehicle_type": map[string]any{
					"type":        "string",
					"enum":        cat.VehicleTypeIDs(),
					"description": "The customer's vehicle type",
				},
				"start_date_time": map[string]any{
					"type":        "string",
					"description": "ISO 8601 start time (e.g., 2026-01-30T10:30:00+05:30) or formatted as 'YYYY-MM-DD HH:MM'",
				},
				"customer_name": map[string]any{
					"type":        "string",
					"description": "Customer's full name",
				},
				"phone_number": map[string]any{
					"type":        "string",
					"description": "Customer mobile/phone number (e.g., 0771234567 or +94771234567)",
				},
				"email": map[string]any{
					"type":        "string",
					"description": "Customer email address",
				},
				"vehicle_number": map[string]any{
					"type":        "string",
					"description": "Vehicle registration number (e.g., ABC-1234)",
				},
				"service_address": map[string]any{
					"type":        "string",
					"description": "Customer service/pickup address",
				},
			},
			"required": []string{
				"service_ids", "vehicle_type", "start_date_time", "customer_name",
				"phone_number", "email", "vehicle_number", "service_address",
			},
		},
	}
}

// dispatchTool routes one tool call. Unknown tool names yield a literal
// result string instead of failing the loop.
func (e *Engine) dispatchTool(ctx context.Context, call model.ToolCall, customer model.CustomerInfo, history []model.Message) string {
	if call.Name != ToolBookAppointment {
		return "Unknown tool"
	}

	var req model.BookingRequest
	if err := json.Unmarshal([]byte(call.Arguments), &req); err != nil {
		return fmt.Sprintf("Error: invalid booking arguments: %s", err.Error())
	}

	result := e.pipeline.Submit(ctx, req, customer, history)
	return result.Message
}
