package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "Europe/Berlin", cfg.Calendar.Timezone)
	assert.Equal(t, MonthDay{Month: time.June, Day: 1}, cfg.Calendar.ClosedStart)
	assert.Equal(t, MonthDay{Month: time.September, Day: 30}, cfg.Calendar.ClosedEnd)
	require.Len(t, cfg.Slots.Catalog, 3)
	assert.Equal(t, SlotEntry{ID: 1, Weekday: "TUE", Start: "17:00", End: "20:00"}, cfg.Slots.Catalog[0])
	assert.Equal(t, 7, cfg.Sweep.HorizonDays)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, NotifyTransportLog, cfg.Notify.Transport)
}

func TestFromViperParsesHolidaysAndRecipients(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"CALENDAR_HOLIDAYS":       "2025-12-25=Christmas Day, 2025-12-26",
		"NOTIFY_ADMIN_RECIPIENTS": "a@example.com, b@example.com ,",
	}))
	require.NoError(t, err)

	require.Len(t, cfg.Calendar.Holidays, 2)
	assert.Equal(t, HolidayEntry{Date: "2025-12-25", Name: "Christmas Day"}, cfg.Calendar.Holidays[0])
	assert.Equal(t, "holiday", cfg.Calendar.Holidays[1].Name)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notify.AdminRecipients)
}

func TestFromViperRejectsMalformedInput(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"bad catalog":     {"SLOT_CATALOG": "1|TUE|17:00"},
		"bad catalog id":  {"SLOT_CATALOG": "x|TUE|17:00|20:00"},
		"empty catalog":   {"SLOT_CATALOG": " ; "},
		"bad holiday":     {"CALENDAR_HOLIDAYS": "25.12.2025=Christmas"},
		"bad closed from": {"CLOSED_PERIOD_START": "June 1"},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromViper(newTestViper(overrides))
			require.Error(t, err)
		})
	}
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

func TestFromViperTelemetryAndKafka(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"OTEL_SAMPLING_RATIO": 3.5,
		"KAFKA_BROKERS":       "k1:9092,k2:9092",
	}))
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "shift-booking", cfg.Telemetry.ServiceName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.KafkaBrokers)
}
