package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("spi tx failed")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Timeout, Timeout},
		{"wrapped E", Wrap(BusWrite, "hd108.tx", cause), BusWrite},
		{"fmt wrapped E", fmt.Errorf("playback: %w", Wrap(ParseFailed, "vizdata", cause)), ParseFailed},
		{"foreign", cause, Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("%s: Of() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(BusWrite, "hd108.tx", cause)
	if !errors.Is(err, BusWrite) {
		t.Fatal("errors.Is should match by code")
	}
	if errors.Is(err, ParseFailed) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be reachable through Unwrap")
	}
	if Wrap(BusWrite, "x", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
	if got := err.Error(); got != "hd108.tx: bus_write: boom" {
		t.Fatalf("Error() = %q", got)
	}
}
