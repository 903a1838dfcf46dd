package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounters(t *testing.T) {
	r := New()

	r.RecordActivation("ssh", ResultOK)
	r.RecordActivation("ssh", ResultOK)
	r.RecordActivation("ssh", ResultFailed)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Activations.WithLabelValues("ssh", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Activations.WithLabelValues("ssh", ResultFailed)))

	r.RecordDenied("ssh", "")
	r.RecordDenied("ssh", "eth0")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Denied.WithLabelValues("ssh", "*")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Denied.WithLabelValues("ssh", "eth0")))

	r.RecordChildExit("time", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ChildExits.WithLabelValues("time", "true")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ChildExits.WithLabelValues("time", "false")))
}

func TestRegistriesAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.Dispatches.WithLabelValues("ssh").Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Dispatches.WithLabelValues("ssh")))
}

func TestHandler(t *testing.T) {
	r := New()
	r.Bindings.WithLabelValues("ssh").Set(2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `sockd_bindings{service="ssh"} 2`), string(body))
}

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
