package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/washlane/booking-assistant/internal/catalog"
)

// ServiceEntry is one catalog row in the assistant profile.
type ServiceEntry struct {
	ID              string         `mapstructure:"id"`
	Name            string         `mapstructure:"name"`
	DurationMinutes int            `mapstructure:"duration_minutes"`
	Category        string         `mapstructure:"category"`
	Prices          map[string]int `mapstructure:"prices"`
}

// KeywordEntry maps a case-insensitive substring to a canned reply. Entries
// are matched in declaration order; the first hit wins.
type KeywordEntry struct {
	Match string `mapstructure:"match"`
	Reply string `mapstructure:"reply"`
}

// ScheduledMessage is one outbound message job.
type ScheduledMessage struct {
	To        string        `mapstructure:"to"`
	Message   string        `mapstructure:"message"`
	Immediate bool          `mapstructure:"immediate"`
	Delay     time.Duration `mapstructure:"delay"`
	Interval  time.Duration `mapstructure:"interval"`
}

// BotPolicy controls which inbound messages the assistant reacts to.
type BotPolicy struct {
	IgnoreGroups      bool `mapstructure:"ignore_groups"`
	IgnoreBroadcast   bool `mapstructure:"ignore_broadcast"`
	IgnoreOwnMessages bool `mapstructure:"ignore_own_messages"`
}

// Assistant is the full assistant profile loaded from the YAML config file.
// Consumed read-only after load.
type Assistant struct {
	Enabled           bool   `mapstructure:"enabled"`
	Model             string `mapstructure:"model"`
	SystemPrompt      string `mapstructure:"system_prompt"`
	FallbackToDefault bool   `mapstructure:"fallback_to_default"`
	MemoryLimit       int    `mapstructure:"memory_limit"`
	MaxLoops          int    `mapstructure:"max_loops"`

	Services     []ServiceEntry    `mapstructure:"services"`
	VehicleTypes map[string]string `mapstructure:"vehicle_types"`

	Keywords        []KeywordEntry `mapstructure:"keywords"`
	DefaultReply    string         `mapstructure:"default_reply"`
	UseDefaultReply bool           `mapstructure:"use_default_reply"`

	Bot               BotPolicy          `mapstructure:"bot"`
	ScheduledMessages []ScheduledMessage `mapstructure:"scheduled_messages"`
}

// LoadAssistant reads and validates the assistant profile file.
func LoadAssistant(path string) (*Assistant, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("enabled", true)
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("fallback_to_default", true)
	v.SetDefault("memory_limit", 10)
	v.SetDefault("max_loops", 5)
	v.SetDefault("use_default_reply", true)
	v.SetDefault("bot.ignore_broadcast", true)
	v.SetDefault("bot.ignore_own_messages", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read assistant config: %w", err)
	}

	var a Assistant
	if err := v.Unmarshal(&a); err != nil {
		return nil, fmt.Errorf("failed to parse assistant config: %w", err)
	}

	if a.MemoryLimit <= 0 {
		return nil, fmt.Errorf("memory_limit must be positive, got %d", a.MemoryLimit)
	}
	if a.MaxLoops <= 0 {
		return nil, fmt.Errorf("max_loops must be positive, got %d", a.MaxLoops)
	}
	if a.Enabled && a.SystemPrompt == "" {
		return nil, fmt.Errorf("system_prompt is required when the assistant is enabled")
	}

	return &a, nil
}

// BuildCatalog converts the profile's service and vehicle-type entries into a
// validated catalog.
func (a *Assistant) BuildCatalog() (*catalog.Catalog, error) {
	services := make([]catalog.Service, 0, len(a.Services))
	for _, entry := range a.Services {
		services = append(services, catalog.Service{
			ID:              entry.ID,
			Name:            entry.Name,
			DurationMinutes: entry.DurationMinutes,
			Prices:          entry.Prices,
			Category:        catalog.Category(entry.Category),
		})
	}
	return catalog.New(services, a.VehicleTypes)
}
