package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	require.Equal(t, time.Hour, c.Reminder.OverdueSweepInterval)
	require.Equal(t, 24*time.Hour, c.Reminder.UpcomingSweepInterval)
	require.Equal(t, 3, c.Reminder.OverdueEmailEveryDays)
	require.Equal(t, 3, c.Reminder.UpcomingWindowDays)
	require.Equal(t, 3, c.Reminder.SweepRetryCount)
	require.Equal(t, "Asia/Kuala_Lumpur", c.Reminder.Timezone)
	require.Equal(t, 8888, c.Server.Port)
}

func TestDayLocation(t *testing.T) {
	c := &Config{Reminder: ReminderConfig{Timezone: "Asia/Kuala_Lumpur"}}
	loc := c.DayLocation()
	require.Equal(t, "Asia/Kuala_Lumpur", loc.String())

	c.Reminder.Timezone = "Not/AZone"
	require.Equal(t, time.UTC, c.DayLocation())
}
