package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleProfile = `
enabled: true
model: gpt-4o-mini
system_prompt: "You are a mobile car-care receptionist."
memory_limit: 8
max_loops: 4

services:
  - id: wash_vacuum
    name: "Wash & Vacuum"
    duration_minutes: 45
    category: standard
    prices:
      car_minivan: 2500
      suv: 3000
  - id: engine_bay_clean
    name: "Engine Bay Clean"
    duration_minutes: 30
    category: addon
    prices:
      car_minivan: 1600

vehicle_types:
  car_minivan: "Car / Minivan"
  suv: "SUV"

keywords:
  - match: price
    reply: "A wash starts at Rs. 2500."
  - match: hours
    reply: "We're available 8am to 6pm daily."
default_reply: "Thanks for reaching out, we'll reply shortly."

bot:
  ignore_groups: true

scheduled_messages:
  - to: "94771234567@c.us"
    message: "Weekend special: 10% off full detail!"
    delay: 5s
    interval: 24h
`

func TestLoadAssistant_FullProfile(t *testing.T) {
	a, err := LoadAssistant(writeProfile(t, sampleProfile))
	require.NoError(t, err)

	assert.True(t, a.Enabled)
	assert.Equal(t, "gpt-4o-mini", a.Model)
	assert.Equal(t, 8, a.MemoryLimit)
	assert.Equal(t, 4, a.MaxLoops)

	require.Len(t, a.Services, 2)
	assert.Equal(t, "wash_vacuum", a.Services[0].ID)
	assert.Equal(t, 3000, a.Services[0].Prices["suv"])
	assert.Equal(t, "addon", a.Services[1].Category)

	require.Len(t, a.Keywords, 2)
	assert.Equal(t, "price", a.Keywords[0].Match)

	assert.True(t, a.Bot.IgnoreGroups)

	require.Len(t, a.ScheduledMessages, 1)
	assert.Equal(t, 5*time.Second, a.ScheduledMessages[0].Delay)
	assert.Equal(t, 24*time.Hour, a.ScheduledMessages[0].Interval)
}

func TestLoadAssistant_Defaults(t *testing.T) {
	a, err := LoadAssistant(writeProfile(t, `system_prompt: "hi"`))
	require.NoError(t, err)

	assert.True(t, a.Enabled)
	assert.Equal(t, "gpt-4o-mini", a.Model)
	assert.True(t, a.FallbackToDefault)
	assert.Equal(t, 10, a.MemoryLimit)
	assert.Equal(t, 5, a.MaxLoops)
	assert.True(t, a.UseDefaultReply)
	assert.True(t, a.Bot.IgnoreBroadcast)
	assert.True(t, a.Bot.IgnoreOwnMessages)
	assert.False(t, a.Bot.IgnoreGroups)
}

func TestLoadAssistant_MissingFile(t *testing.T) {
	_, err := LoadAssistant(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read assistant config")
}

func TestLoadAssistant_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "zero memory limit",
			content: "system_prompt: hi\nmemory_limit: 0\n",
			wantErr: "memory_limit",
		},
		{
			name:    "negative max loops",
			content: "system_prompt: hi\nmax_loops: -1\n",
			wantErr: "max_loops",
		},
		{
			name:    "enabled without system prompt",
			content: "enabled: true\n",
			wantErr: "system_prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAssistant(writeProfile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadAssistant_DisabledSkipsPromptRequirement(t *testing.T) {
	a, err := LoadAssistant(writeProfile(t, "enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, a.Enabled)
}

func TestAssistant_BuildCatalog(t *testing.T) {
	a, err := LoadAssistant(writeProfile(t, sampleProfile))
	require.NoError(t, err)

	cat, err := a.BuildCatalog()
	require.NoError(t, err)

	svc, ok := cat.Service("engine_bay_clean")
	require.True(t, ok)
	assert.Equal(t, "Engine Bay Clean", svc.Name)
	assert.Equal(t, []string{"wash_vacuum", "engine_bay_clean"}, cat.ServiceIDs())
}

func TestAssistant_BuildCatalogRejectsUnknownVehicleType(t *testing.T) {
	a, err := LoadAssistant(writeProfile(t, `
system_prompt: hi
services:
  - id: wash
    name: Wash
    category: standard
    prices:
      hovercraft: 1000
vehicle_types:
  car_minivan: "Car / Minivan"
`))
	require.NoError(t, err)

	_, err = a.BuildCatalog()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hovercraft")
}
