package otel

import (
	"context"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
		override bool
		target   string
		insecure bool
		wantErr  bool
	}{
		{name: "empty", endpoint: "", target: ""},
		{name: "whitespace", endpoint: "   ", target: ""},
		{name: "bare host port", endpoint: "collector:4317", target: "collector:4317", insecure: true},
		{name: "http url", endpoint: "http://collector:4317", target: "collector:4317", insecure: true},
		{name: "https url uses tls", endpoint: "https://collector:4317", target: "collector:4317", insecure: false},
		{name: "https with override", endpoint: "https://collector:4317", override: true, target: "collector:4317", insecure: true},
		{name: "path dropped", endpoint: "http://collector:4317/v1/traces", target: "collector:4317", insecure: true},
		{name: "missing host", endpoint: "http://", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, insecure, err := parseEndpoint(tc.endpoint, tc.override)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEndpoint: %v", err)
			}
			if target != tc.target {
				t.Errorf("target = %q, want %q", target, tc.target)
			}
			if target != "" && insecure != tc.insecure {
				t.Errorf("insecure = %v, want %v", insecure, tc.insecure)
			}
		})
	}
}

func TestNewProviders_EmptyEndpointIsNoop(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "submitiq-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil || p.LoggerProvider == nil {
		t.Error("no-op providers must still be non-nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
