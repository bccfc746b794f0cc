package observability

import (
	"strings"
	"testing"
)

func TestTracerConfigSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{1.5, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		got := TracerConfig{SampleRatio: tt.ratio}.sampler().Description()
		if !strings.HasPrefix(got, "ParentBased{") || !strings.Contains(got, tt.want) {
			t.Fatalf("ratio %v: sampler = %s, want root %s", tt.ratio, got, tt.want)
		}
	}
}
