package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washlane/booking-assistant/internal/catalog"
	"github.com/washlane/booking-assistant/internal/model"
	"github.com/washlane/booking-assistant/pkg/logger"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.Service{
			{
				ID:       "wash_vacuum",
				Name:     "Wash & Vacuum",
				Prices:   map[string]int{"car_minivan": 2500, "suv": 3000},
				Category: catalog.CategoryStandard,
			},
			{
				ID:       "engine_bay_clean",
				Name:     "Engine Bay Clean",
				Prices:   map[string]int{"car_minivan": 1600},
				Category: catalog.CategoryAddon,
			},
		},
		map[string]string{"car_minivan": "Car / Minivan", "suv": "SUV"},
	)
	require.NoError(t, err)
	return cat
}

type capturedRequest struct {
	payload webhookPayload
	apiKey  string
}

// newWebhookServer returns a stub submission endpoint that records every
// request and replies with the given status.
func newWebhookServer(t *testing.T, status int, calls *atomic.Int32, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if captured != nil {
			captured.apiKey = r.Header.Get("x-api-key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.payload))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 200 && status <= 299 {
			w.Write([]byte(`{"ok":true}`))
		} else {
			w.Write([]byte(`backend exploded`))
		}
	}))
}

func newTestPipeline(cat *catalog.Catalog, url string) *Pipeline {
	return NewPipeline(cat, Config{
		WebhookURL: url,
		APIKey:     "secret-key",
		Source:     "WA",
	}, nil, logger.NewNop())
}

func validRequest() model.BookingRequest {
	return model.BookingRequest{
		ServiceIDs:     model.StringList{"wash_vacuum", "engine_bay_clean"},
		VehicleType:    "car_minivan",
		StartDateTime:  "2026-01-30 14:00",
		CustomerName:   "Sam Perera",
		PhoneNumber:    "0771234567",
		Email:          "sam@x.com",
		VehicleNumber:  "ABC-1234",
		ServiceAddress: "12 Lake Rd",
	}
}

func TestSubmit_PricesItemsInRequestOrder(t *testing.T) {
	var calls atomic.Int32
	var captured capturedRequest
	server := newWebhookServer(t, http.StatusOK, &calls, &captured)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	result := p.Submit(context.Background(), validRequest(), model.CustomerInfo{}, nil)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "secret-key", captured.apiKey)
	assert.Equal(t, 4100, captured.payload.BookingDetails.TotalPrice)
	assert.Equal(t, "Wash & Vacuum, Engine Bay Clean", captured.payload.BookingDetails.ServiceName)
	assert.Equal(t, "Standard", captured.payload.BookingDetails.PackageType)
	assert.Equal(t, "Car / Minivan", captured.payload.BookingDetails.VehicleType)
	assert.Equal(t, "Sam Perera", captured.payload.Name)
}

func TestSubmit_MintsBookingID(t *testing.T) {
	var calls atomic.Int32
	var captured capturedRequest
	server := newWebhookServer(t, http.StatusOK, &calls, &captured)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	result := p.Submit(context.Background(), validRequest(), model.CustomerInfo{}, nil)

	require.True(t, result.Success)
	pattern := regexp.MustCompile(`^BK-WA-\d{8}-\d{3}$`)
	assert.Regexp(t, pattern, result.BookingID)
	assert.Equal(t, result.BookingID, captured.payload.BookingID)
	assert.Contains(t, result.Message, result.BookingID)
}

func TestSubmit_UnknownVehicleType(t *testing.T) {
	var calls atomic.Int32
	server := newWebhookServer(t, http.StatusOK, &calls, nil)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	req := validRequest()
	req.VehicleType = "hovercraft"

	result := p.Submit(context.Background(), req, model.CustomerInfo{}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "hovercraft")
	assert.Equal(t, int32(0), calls.Load(), "endpoint must not be called")
}

func TestSubmit_UnknownService(t *testing.T) {
	var calls atomic.Int32
	server := newWebhookServer(t, http.StatusOK, &calls, nil)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	req := validRequest()
	req.ServiceIDs = model.StringList{"wash_vacuum", "gold_plating"}

	result := p.Submit(context.Background(), req, model.CustomerInfo{}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "gold_plating")
	assert.Equal(t, int32(0), calls.Load(), "endpoint must not be called")
}

func TestSubmit_MissingPriceForVehicleType(t *testing.T) {
	var calls atomic.Int32
	server := newWebhookServer(t, http.StatusOK, &calls, nil)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	req := validRequest()
	// engine_bay_clean has no SUV price.
	req.VehicleType = "suv"

	result := p.Submit(context.Background(), req, model.CustomerInfo{}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Engine Bay Clean")
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmit_EmptyServiceList(t *testing.T) {
	var calls atomic.Int32
	server := newWebhookServer(t, http.StatusOK, &calls, nil)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	req := validRequest()
	req.ServiceIDs = nil

	result := p.Submit(context.Background(), req, model.CustomerInfo{}, nil)
	assert.False(t, result.Success)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmit_DateNormalization(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		wantDate string
		wantTime string
	}{
		{
			name:     "ISO timestamp keeps wall clock",
			start:    "2026-01-30T10:30:00+05:30",
			wantDate: "2026-01-30",
			wantTime: "10:30",
		},
		{
			name:     "date time pair split verbatim",
			start:    "2026-01-30 14:00",
			wantDate: "2026-01-30",
			wantTime: "14:00",
		},
		{
			name:     "bare date defaults time",
			start:    "2026-01-30",
			wantDate: "2026-01-30",
			wantTime: "10:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			var captured capturedRequest
			server := newWebhookServer(t, http.StatusOK, &calls, &captured)
			defer server.Close()

			p := newTestPipeline(testCatalog(t), server.URL)
			req := validRequest()
			req.StartDateTime = tt.start

			result := p.Submit(context.Background(), req, model.CustomerInfo{}, nil)
			require.True(t, result.Success, result.Message)
			assert.Equal(t, tt.wantDate, captured.payload.BookingDetails.PreferredDate)
			assert.Equal(t, tt.wantTime, captured.payload.BookingDetails.PreferredTime)
		})
	}
}

func TestSubmit_UnparseableTimestamp(t *testing.T) {
	var calls atomic.Int32
	server := newWebhookServer(t, http.StatusOK, &calls, nil)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	req := validRequest()
	req.StartDateTime = "Tlunchtime"

	result := p.Submit(context.Background(), req, model.CustomerInfo{}, nil)
	assert.False(t, result.Success)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmit_EndpointFailureSurfacedAsResult(t *testing.T) {
	var calls atomic.Int32
	server := newWebhookServer(t, http.StatusInternalServerError, &calls, nil)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	result := p.Submit(context.Background(), validRequest(), model.CustomerInfo{}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "500")
	assert.Contains(t, result.Message, "backend exploded")
	assert.Equal(t, int32(1), calls.Load(), "no retry on failure")
}

func TestSubmit_NetworkErrorSurfacedAsResult(t *testing.T) {
	p := newTestPipeline(testCatalog(t), "http://127.0.0.1:1/unreachable")
	result := p.Submit(context.Background(), validRequest(), model.CustomerInfo{}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Error sending booking")
}

func TestSubmit_FallsBackToCallerIdentity(t *testing.T) {
	var calls atomic.Int32
	var captured capturedRequest
	server := newWebhookServer(t, http.StatusOK, &calls, &captured)
	defer server.Close()

	p := newTestPipeline(testCatalog(t), server.URL)
	req := validRequest()
	req.CustomerName = ""
	req.PhoneNumber = ""

	result := p.Submit(context.Background(), req, model.CustomerInfo{Name: "Nadia", Number: "0779999999"}, nil)
	require.True(t, result.Success)
	assert.Equal(t, "Nadia", captured.payload.Name)
	assert.Equal(t, "0779999999", captured.payload.Phone)
}
