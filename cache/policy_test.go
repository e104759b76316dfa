package cache

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.MaxEntries != 1024 {
		t.Errorf("MaxEntries = %d, want 1024", p.MaxEntries)
	}
	if p.TTL != 30*24*time.Hour {
		t.Errorf("TTL = %v, want 720h", p.TTL)
	}
	if !p.ShouldCache() {
		t.Error("default policy should cache")
	}
}

func TestNoCachePolicy(t *testing.T) {
	if NoCachePolicy().ShouldCache() {
		t.Error("NoCachePolicy().ShouldCache() = true, want false")
	}
}

func TestPolicy_ShouldCache(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want bool
	}{
		{"positive", time.Second, true},
		{"zero", 0, false},
		{"negative", -time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Policy{TTL: tt.ttl}).ShouldCache(); got != tt.want {
				t.Errorf("ShouldCache() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_Capacity(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want int
	}{
		{"explicit", 3, 3},
		{"zero uses default", 0, DefaultMaxEntries},
		{"negative uses default", -5, DefaultMaxEntries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Policy{MaxEntries: tt.max}).Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
		})
	}
}
