package modelerr

import (
	"errors"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"io", NewIoError("/tmp/x", errors.New("no such file")), ErrIo},
		{"malformed", NewMalformedBinary("symbol table", errors.New("truncated")), ErrMalformedBinary},
		{"malformed no cause", NewMalformedBinary("load commands", nil), ErrMalformedBinary},
		{"unsupported", NewUnsupportedBinary("64-bit slice only"), ErrUnsupportedBinary},
		{"inconsistent", NewInconsistentModel("base class links", "offset 8 has no base"), ErrInconsistentModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.wantErr) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.wantErr)
			}
			for _, other := range []error{ErrIo, ErrMalformedBinary, ErrUnsupportedBinary, ErrInconsistentModel} {
				if other == tt.wantErr {
					continue
				}
				if errors.Is(tt.err, other) {
					t.Errorf("errors.Is(%v, %v) = true, want false", tt.err, other)
				}
			}
		})
	}
}

func TestMalformedBinaryMessageWithoutCause(t *testing.T) {
	err := NewMalformedBinary("load commands", nil)
	want := "malformed binary: load commands"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
