package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverdueEmail_StandardTone(t *testing.T) {
	tpl := OverdueEmail("Alice", "inv-1", 150.00, "2026-03-01", 3)

	require.True(t, strings.HasPrefix(tpl.Subject, "Reminder: "))
	require.Contains(t, tpl.Subject, "inv-1")
	require.Contains(t, tpl.Subject, "3 days overdue")
	require.NotContains(t, tpl.Text, "IMPORTANT")
	require.Contains(t, tpl.HTML, "$150.00")
	require.Contains(t, tpl.HTML, "wms://invoice/inv-1")
	require.Contains(t, tpl.Text, "Dear Alice")
}

func TestOverdueEmail_UrgentAfterAWeek(t *testing.T) {
	tpl := OverdueEmail("Alice", "inv-1", 150.00, "2026-03-01", 9)

	require.True(t, strings.HasPrefix(tpl.Subject, "URGENT: "))
	require.Contains(t, tpl.HTML, "IMPORTANT")
	require.Contains(t, tpl.Text, "IMPORTANT")
}

func TestOverdueEmail_SevenDaysIsNotYetUrgent(t *testing.T) {
	tpl := OverdueEmail("Alice", "inv-1", 150.00, "2026-03-01", 7)
	require.True(t, strings.HasPrefix(tpl.Subject, "Reminder: "))
}
