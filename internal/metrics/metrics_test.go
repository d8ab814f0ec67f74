package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findFamily はGatherの結果から指定名のメトリクスファミリーを探す。
func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DoubleRegisterPanics は同じレジストリへの二重登録がpanicすることを検証する。
func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

// TestRecordRequest_IncrementsCounterByLabels はラベル別にリクエスト数が記録されることを検証する。
func TestRecordRequest_IncrementsCounterByLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/users/{user_id}", 200, 10*time.Millisecond)
	c.RecordRequest("GET", "/users/{user_id}", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "/users/{user_id}", 404, 5*time.Millisecond)

	mf := findFamily(t, reg, "addressapi_http_requests_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(mf.GetMetric()))
	}

	for _, m := range mf.GetMetric() {
		labels := labelsOf(m)
		if labels["method"] != "GET" || labels["route"] != "/users/{user_id}" {
			t.Errorf("unexpected labels %v", labels)
		}
		want := map[string]float64{"200": 2, "404": 1}[labels["status"]]
		if got := m.GetCounter().GetValue(); got != want {
			t.Errorf("status %s count = %v, want %v", labels["status"], got, want)
		}
	}
}

// TestRecordRequest_ObservesLatency はレイテンシがヒストグラムに記録されることを検証する。
func TestRecordRequest_ObservesLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/address", 200, 250*time.Millisecond)

	mf := findFamily(t, reg, "addressapi_http_request_duration_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", h.GetSampleCount())
	}
	if h.GetSampleSum() != 0.25 {
		t.Errorf("sample sum = %v, want 0.25", h.GetSampleSum())
	}
}

// TestInFlight_IncDec は処理中リクエスト数のゲージが増減することを検証する。
func TestInFlight_IncDec(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.IncInFlight()
	c.IncInFlight()
	c.DecInFlight()

	mf := findFamily(t, reg, "addressapi_http_in_flight_requests")
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Errorf("in-flight = %v, want 1", got)
	}
}
