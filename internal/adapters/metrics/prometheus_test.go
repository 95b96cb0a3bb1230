package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(EvaluationsTotal.WithLabelValues(OutcomeScored))
	EvaluationsTotal.WithLabelValues(OutcomeScored).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(EvaluationsTotal.WithLabelValues(OutcomeScored)))
}

func TestWriteTextfile(t *testing.T) {
	require.NoError(t, WriteTextfile(""))

	NotificationsTotal.WithLabelValues("email", StatusSuccess).Inc()
	path := filepath.Join(t.TempDir(), "dailybrief.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dailybrief_notifications_total")
}
