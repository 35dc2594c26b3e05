// Package booking implements the transaction pipeline: validate a booking
// request against the catalog, price it, normalize the start moment, mint a
// booking ID, and commit it once to the external submission webhook.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/washlane/booking-assistant/internal/catalog"
	"github.com/washlane/booking-assistant/internal/events"
	"github.com/washlane/booking-assistant/internal/model"
	"github.com/washlane/booking-assistant/pkg/logger"
	"github.com/washlane/booking-assistant/pkg/metrics"
)

// Config holds submission endpoint settings.
type Config struct {
	WebhookURL string
	APIKey     string
	Source     string
	Timeout    time.Duration
}

// Pipeline validates and commits booking requests. One Submit call makes at
// most one outbound POST, with no internal retry: a failed booking requires
// the customer to re-initiate.
type Pipeline struct {
	catalog   *catalog.Catalog
	client    *http.Client
	cfg       Config
	publisher *events.Publisher
	logger    *logger.Logger
}

// NewPipeline creates a pipeline against the given catalog and endpoint.
func NewPipeline(cat *catalog.Catalog, cfg Config, pub *events.Publisher, log *logger.Logger) *Pipeline {
	if cfg.Source == "" {
		cfg.Source = "WA"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Pipeline{
		catalog:   cat,
		client:    &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		publisher: pub,
		logger:    log,
	}
}

type bookingDetails struct {
	PreferredDate  string `json:"preferred_date"`
	PreferredTime  string `json:"preferred_time"`
	ServiceName    string `json:"service_name"`
	PackageType    string `json:"package_type"`
	VehicleType    string `json:"vehicle_type"`
	VehicleNumber  string `json:"vehicle_number"`
	ServiceAddress string `json:"service_address"`
	TotalPrice     int    `json:"total_price"`
}

type webhookPayload struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	BookingDetails bookingDetails `json:"bookingDetails"`
	BookingID      string         `json:"bookingId"`
	Transcript     string         `json:"transcript"`
}

// Submit validates, prices, and commits one booking. Failures of any kind are
// returned as an unsuccessful BookingResult; Submit never returns an error.
func (p *Pipeline) Submit(ctx context.Context, req model.BookingRequest, customer model.CustomerInfo, history []model.Message) model.BookingResult {
	if len(req.ServiceIDs) == 0 {
		return p.fail(ctx, req, customer, "Error: No services requested.")
	}

	vehicleTypeName, ok := p.catalog.VehicleTypeName(req.VehicleType)
	if !ok {
		return p.fail(ctx, req, customer, fmt.Sprintf("Error: Invalid vehicle type '%s'.", req.VehicleType))
	}

	var (
		totalPrice   int
		serviceNames []string
	)
	for _, serviceID := range req.ServiceIDs {
		svc, ok := p.catalog.Service(serviceID)
		if !ok {
			return p.fail(ctx, req, customer, fmt.Sprintf("Error: Service '%s' not found.", serviceID))
		}
		price, ok := svc.Prices[req.VehicleType]
		if !ok {
			return p.fail(ctx, req, customer,
				fmt.Sprintf("Error: No price found for %s with vehicle type %s.", svc.Name, vehicleTypeName))
		}
		totalPrice += price
		serviceNames = append(serviceNames, svc.Name)
	}

	preferredDate, preferredTime, err := normalizeStart(req.StartDateTime)
	if err != nil {
		return p.fail(ctx, req, customer, fmt.Sprintf("Error: Could not understand the requested time '%s'.", req.StartDateTime))
	}

	bookingID := mintBookingID(p.cfg.Source)

	firstService, _ := p.catalog.Service(req.ServiceIDs[0])
	packageType := firstService.Category.PackageType()

	customerName := req.CustomerName
	if customerName == "" {
		customerName = customer.Name
	}
	if customerName == "" {
		customerName = "Customer"
	}
	phone := req.PhoneNumber
	if phone == "" {
		phone = customer.Number
	}

	payload := webhookPayload{
		Name:  customerName,
		Phone: phone,
		Email: req.Email,
		BookingDetails: bookingDetails{
			PreferredDate:  preferredDate,
			PreferredTime:  preferredTime,
			ServiceName:    strings.Join(serviceNames, ", "),
			PackageType:    packageType,
			VehicleType:    vehicleTypeName,
			VehicleNumber:  req.VehicleNumber,
			ServiceAddress: req.ServiceAddress,
			TotalPrice:     totalPrice,
		},
		BookingID:  bookingID,
		Transcript: Transcript(history),
	}

	if err := p.post(ctx, payload); err != nil {
		p.logger.Error("booking submission failed",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
		metrics.Bookings.WithLabelValues("failed").Inc()
		p.publish(ctx, req, customer, bookingID, serviceNames, totalPrice, "failed", err.Error())
		return model.BookingResult{
			Success: false,
			Message: fmt.Sprintf("Error sending booking: %s", err.Error()),
		}
	}

	p.logger.Info("booking submitted",
		zap.String("booking_id", bookingID),
		zap.Strings("services", req.ServiceIDs),
		zap.Int("total_price", totalPrice),
	)
	metrics.Bookings.WithLabelValues("confirmed").Inc()
	p.publish(ctx, req, customer, bookingID, serviceNames, totalPrice, "confirmed", "")

	return model.BookingResult{
		Success:   true,
		BookingID: bookingID,
		Message: fmt.Sprintf(
			"Booking confirmed!\n\n"+
				"Booking ID: %s\n"+
				"Customer: %s\n"+
				"Phone: %s\n"+
				"Email: %s\n"+
				"Vehicle: %s (%s)\n"+
				"Services: %s\n"+
				"Package: %s\n"+
				"Address: %s\n"+
				"Date: %s\n"+
				"Time: %s\n"+
				"Total: Rs. %d\n\n"+
				"Your booking has been sent to our system. We'll contact you shortly for confirmation!",
			bookingID, customerName, phone, req.Email,
			vehicleTypeName, req.VehicleNumber,
			strings.Join(serviceNames, ", "), packageType,
			req.ServiceAddress, preferredDate, preferredTime, totalPrice,
		),
	}
}

// post performs the single outbound submission call. Any non-2xx status or
// transport problem is returned as an error for the caller to fold into the
// result; nothing is retried.
func (p *Pipeline) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded map[string]any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return fmt.Errorf("failed to decode webhook response: %w", err)
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, req model.BookingRequest, customer model.CustomerInfo, msg string) model.BookingResult {
	metrics.Bookings.WithLabelValues("rejected").Inc()
	p.publish(ctx, req, customer, "", nil, 0, "rejected", msg)
	return model.BookingResult{Success: false, Message: msg}
}

func (p *Pipeline) publish(ctx context.Context, req model.BookingRequest, customer model.CustomerInfo, bookingID string, serviceNames []string, totalPrice int, outcome, detail string) {
	err := p.publisher.PublishBooking(ctx, &events.BookingEvent{
		BookingID:   bookingID,
		Source:      p.cfg.Source,
		Outcome:     outcome,
		ChatID:      customer.Number,
		Services:    serviceNames,
		VehicleType: req.VehicleType,
		TotalPrice:  totalPrice,
		Detail:      detail,
	})
	if err != nil {
		p.logger.Warn("failed to publish booking event", zap.Error(err))
	}
}

// mintBookingID builds a human-facing booking reference. The 3-digit suffix
// is best-effort unique within a day; downstream systems must not rely on it
// as a primary key.
func mintBookingID(source string) string {
	return fmt.Sprintf("BK-%s-%s-%03d", source, time.Now().Format("20060102"), rand.Intn(1000))
}

// normalizeStart splits a start moment into preferred_date and preferred_time.
// Strings containing an ISO datetime marker are parsed as timestamps and
// rendered as wall-clock date and 24-hour time; anything else is treated as a
// space-separated "<date> <time>" pair, with time defaulting to 10:00.
func normalizeStart(start string) (string, string, error) {
	if strings.Contains(start, "T") {
		layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}
		for _, layout := range layouts {
			if dt, err := time.ParseInLocation(layout, start, time.Local); err == nil {
				return dt.Format("2006-01-02"), dt.Format("15:04"), nil
			}
		}
		return "", "", fmt.Errorf("unparseable start moment %q", start)
	}

	date, tm, found := strings.Cut(start, " ")
	if !found || tm == "" {
		tm = "10:00"
	}
	return date, tm, nil
}
