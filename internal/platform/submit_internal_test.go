package platform

import (
	"testing"
	"time"
)

func TestSubmitTimeout_ScalesWithPayloadSize(t *testing.T) {
	sub := &Submitter{cfg: DefaultConfig()}

	tests := []struct {
		size int
		want time.Duration
	}{
		{0, 30 * time.Second},
		{50 * 1024, 30 * time.Second},
		{100 * 1024, 31 * time.Second},
		{1024 * 1024, 40 * time.Second},
		{100 * 1024 * 1024, 300 * time.Second}, // clamped to the max
	}
	for _, tt := range tests {
		if got := sub.submitTimeout(tt.size); got != tt.want {
			t.Errorf("submitTimeout(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestSubmitTimeout_NeverBelowBase(t *testing.T) {
	sub := &Submitter{cfg: Config{SubmitBaseTimeout: time.Minute, SubmitMaxTimeout: 2 * time.Minute}}
	if got := sub.submitTimeout(1); got != time.Minute {
		t.Errorf("tiny payload got %v, want the base timeout", got)
	}
}

func TestClassifyByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   FailureKind
	}{
		{401, FailureAuth},
		{403, FailureAuth},
		{404, FailureNotFound},
		{413, FailureTooLarge},
		{500, FailureServer},
		{503, FailureServer},
		{418, FailureUnclassified},
	}
	for _, tt := range tests {
		if got := classifyByStatus(tt.status, "").Kind; got != tt.want {
			t.Errorf("classifyByStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPlatformErrorCodes_Complete(t *testing.T) {
	want := map[int]FailureKind{
		1: FailureMissingFile,
		4: FailureTooLarge,
		5: FailureDuration,
		6: FailureFormat,
		7: FailureCorrupted,
		8: FailureRejectedContent,
	}
	for code, kind := range want {
		if got := platformErrorCodes[code]; got != kind {
			t.Errorf("code %d maps to %v, want %v", code, got, kind)
		}
	}
}
