package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRequestRecordsLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncInFlight()
	m.ObserveRequest("POST", "/api/checkout", 201, 42*time.Millisecond)
	m.DecInFlight()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	requests, ok := byName["http_requests_total"]
	if !ok {
		t.Fatal("expected http_requests_total to be registered")
	}
	if len(requests.Metric) != 1 {
		t.Fatalf("expected one labelled series, got %d", len(requests.Metric))
	}
	labels := map[string]string{}
	for _, pair := range requests.Metric[0].GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	if labels["method"] != "POST" || labels["route"] != "/api/checkout" || labels["status"] != "201" {
		t.Fatalf("unexpected labels: %v", labels)
	}
	if got := requests.Metric[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected counter 1, got %v", got)
	}

	if _, ok := byName["http_request_duration_seconds"]; !ok {
		t.Fatal("expected duration histogram to be registered")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.IncInFlight()
	m.DecInFlight()

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("GET", "/", 200, time.Millisecond)
}
