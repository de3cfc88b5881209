package tracing

import (
	"context"
	"testing"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.IsEnabled() {
		t.Error("expected disabled provider")
	}
	if p.Tracer("test") == nil {
		t.Error("disabled provider must still hand out a tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown of disabled provider: %v", err)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "missing service name",
			cfg:  Config{Enabled: true, SamplingRate: 1.0},
		},
		{
			name: "sampling rate too high",
			cfg:  Config{Enabled: true, ServiceName: "coachmarket-api", SamplingRate: 1.5},
		},
		{
			name: "negative sampling rate",
			cfg:  Config{Enabled: true, ServiceName: "coachmarket-api", SamplingRate: -0.1},
		},
		{
			name: "unknown exporter",
			cfg: Config{
				Enabled:      true,
				ServiceName:  "coachmarket-api",
				SamplingRate: 1.0,
				ExporterType: "jaeger-thrift",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(tt.cfg); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestStartSpan_EndsWithoutPanic(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "rank_coaches")
	if ctx == nil {
		t.Fatal("expected context")
	}
	end(nil)

	_, endErr := StartDBSpan(context.Background(), "coaches", DBOperationQuery)
	endErr(context.Canceled)
}
