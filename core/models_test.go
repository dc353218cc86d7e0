package core

import (
	"testing"
)

func TestFingerprintText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "same text produces same fingerprint",
			text: "test content",
		},
		{
			name: "empty string",
			text: "",
		},
		{
			name: "long text",
			text: "This is a much longer piece of extracted document text that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := FingerprintText(tt.text)
			id2 := FingerprintText(tt.text)

			if id1 != id2 {
				t.Errorf("FingerprintText() produced different fingerprints for same text: %d vs %d", id1, id2)
			}
		})
	}
}

func TestFingerprintText_Different(t *testing.T) {
	id1 := FingerprintText("the refund policy allows returns within 30 days")
	id2 := FingerprintText("the refund policy allows returns within 31 days")

	if id1 == id2 {
		t.Errorf("FingerprintText() produced same fingerprint for different text")
	}
}

func TestFingerprintText_IgnoresNothing(t *testing.T) {
	// Fingerprints are over the exact text: whitespace differences count.
	id1 := FingerprintText("hello world")
	id2 := FingerprintText("hello  world")

	if id1 == id2 {
		t.Errorf("FingerprintText() ignored whitespace difference")
	}
}
