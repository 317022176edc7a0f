package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry()
	c1 := r.Counter("ops")
	c2 := r.Counter("ops")
	if c1 != c2 {
		t.Fatal("Counter: second call returned a different instance")
	}
	g1 := r.Gauge("slot")
	g2 := r.Gauge("slot")
	if g1 != g2 {
		t.Fatal("Gauge: second call returned a different instance")
	}
	h1 := r.Histogram("latency")
	h2 := r.Histogram("latency")
	if h1 != h2 {
		t.Fatal("Histogram: second call returned a different instance")
	}
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Counter("c").Add(5)
	r.Gauge("g").Set(42)
	h := r.Histogram("h")
	h.Observe(10)
	h.Observe(20)

	snap := r.Snapshot()

	if v, ok := snap["c"]; !ok {
		t.Fatal("snapshot missing counter 'c'")
	} else if v.(int64) != 5 {
		t.Fatalf("counter c = %v, want 5", v)
	}
	if v, ok := snap["g"]; !ok {
		t.Fatal("snapshot missing gauge 'g'")
	} else if v.(int64) != 42 {
		t.Fatalf("gauge g = %v, want 42", v)
	}
	hv, ok := snap["h"]
	if !ok {
		t.Fatal("snapshot missing histogram 'h'")
	}
	hm := hv.(map[string]interface{})
	if hm["count"].(int64) != 2 {
		t.Fatalf("histogram count = %v, want 2", hm["count"])
	}
	if hm["mean"].(float64) != 15 {
		t.Fatalf("histogram mean = %v, want 15", hm["mean"])
	}
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	r := NewRegistry()
	const goroutines = 50
	results := make([]*Counter, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx] = r.Counter("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("goroutine %d got a different Counter instance", i)
		}
	}
}

func TestRegistry_WriteText(t *testing.T) {
	r := NewRegistry()
	r.Counter("bridge.transfers.completed").Add(3)
	r.Gauge("light.latest_slot").Set(12345)
	h := r.Histogram("light.verify_ms")
	h.Observe(2)
	h.Observe(4)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"# TYPE bridge_transfers_completed counter",
		"bridge_transfers_completed 3",
		"# TYPE light_latest_slot gauge",
		"light_latest_slot 12345",
		"# TYPE light_verify_ms summary",
		"light_verify_ms_count 2",
		"light_verify_ms_sum 6",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Dots must be sanitized away; none may survive in metric names.
	for _, line := range strings.Split(out, "\n") {
		if line == "" || strings.HasPrefix(line, "# ") {
			continue
		}
		name := strings.Fields(line)[0]
		if strings.Contains(name, ".") {
			t.Errorf("unsanitized metric name %q", name)
		}
	}
}

func TestRegistry_WriteTextDeterministic(t *testing.T) {
	r := NewRegistry()
	r.Counter("b").Inc()
	r.Counter("a").Inc()
	r.Gauge("c").Set(1)

	var first, second bytes.Buffer
	if err := r.WriteText(&first); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := r.WriteText(&second); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if first.String() != second.String() {
		t.Error("WriteText output is not deterministic across calls")
	}
	// Sorted order: "a" series before "b" before "c".
	out := first.String()
	ia, ib, ic := strings.Index(out, "\na "), strings.Index(out, "\nb "), strings.Index(out, "\nc ")
	if !(ia < ib && ib < ic) {
		t.Errorf("metrics not sorted by name:\n%s", out)
	}
}

func TestDefaultRegistry_NotNil(t *testing.T) {
	if DefaultRegistry == nil {
		t.Fatal("DefaultRegistry is nil")
	}
	DefaultRegistry.Counter("default.smoke").Inc()
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"dots.and.more", "dots_and_more"},
		{"dash-and space", "dash_and_space"},
		{"colon:ok_9", "colon:ok_9"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
