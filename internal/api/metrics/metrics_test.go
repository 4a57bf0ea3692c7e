package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRemote_LabelsTransportFailure(t *testing.T) {
	before := testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("metrics test", "error"))
	ObserveRemote("metrics test", 0, 10*time.Millisecond)
	ObserveRemote("metrics test", 502, 10*time.Millisecond)

	if got := testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("metrics test", "error")); got != before+1 {
		t.Errorf("error count = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("metrics test", "502")); got < 1 {
		t.Errorf("502 count = %v", got)
	}
}

func TestObserveQueueDepth(t *testing.T) {
	ObserveQueueDepth(3, 7)
	if got := testutil.ToFloat64(SerializerQueueDepth.WithLabelValues("3")); got != 7 {
		t.Errorf("depth = %v, want 7", got)
	}
}

func TestResult(t *testing.T) {
	if Result(nil) != "ok" || Result(errors.New("x")) != "error" {
		t.Error("unexpected result labels")
	}
}
