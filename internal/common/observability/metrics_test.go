package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordPollCycle(context.Background(), time.Second, "empty")
		o.Shutdown()
	})

	empty := &Observability{}
	assert.NotPanics(t, func() {
		empty.RecordPollCycle(context.Background(), time.Second, "found")
		empty.Shutdown()
	})
}

func TestNew_RecordsPollCycle(t *testing.T) {
	o, err := New("cowin-slot-assistant-test")
	require.NoError(t, err)
	require.NotNil(t, o)
	defer o.Shutdown()

	o.RecordPollCycle(context.Background(), 250*time.Millisecond, "found")

	families, err := promclient.DefaultGatherer.Gather()
	require.NoError(t, err)

	var count float64
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "poll_cycles") {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == "found" {
					count += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(1), count)
}
