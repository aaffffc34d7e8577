package serial

import (
	"testing"
	"time"
)

func TestWithReadTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"0ms (non-blocking)", 0, false},
		{"50ms (default)", 50 * time.Millisecond, false},
		{"150ms (valid)", 150 * time.Millisecond, false},
		{"10s (max)", MaxReadTimeout, false},
		{"250ns (sub-millisecond)", 250 * time.Nanosecond, true},
		{"1500us (not whole ms)", 1500 * time.Microsecond, true},
		{"11s (exceeds max)", 11 * time.Second, true},
		{"-100ms (negative)", -100 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			opt := WithReadTimeout(tt.timeout)
			err := opt(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithReadTimeout(%v) error = %v, wantErr %v", tt.timeout, err, tt.wantErr)
			}
			if err == nil && config.ReadTimeout != tt.timeout {
				t.Errorf("ReadTimeout = %v, want %v", config.ReadTimeout, tt.timeout)
			}
		})
	}
}

func TestWithParity(t *testing.T) {
	config := DefaultConfig()
	if err := WithParity(ParityOdd)(&config); err != nil {
		t.Fatalf("WithParity(ParityOdd) failed: %v", err)
	}
	if config.Parity != ParityOdd {
		t.Errorf("Expected Parity Odd, got %v", config.Parity)
	}
	if err := WithParity(Parity(42))(&config); err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig for unknown parity, got %v", err)
	}
}

func TestWithSyncWrite(t *testing.T) {
	config := DefaultConfig()
	if config.WriteMode != WriteModeBuffered {
		t.Fatalf("Expected buffered writes by default, got %v", config.WriteMode)
	}
	if err := WithSyncWrite()(&config); err != nil {
		t.Fatalf("WithSyncWrite failed: %v", err)
	}
	if config.WriteMode != WriteModeSynced {
		t.Errorf("Expected WriteModeSynced, got %v", config.WriteMode)
	}
}
