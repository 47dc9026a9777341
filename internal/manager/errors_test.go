package manager

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConnectionErrorMatching(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		kind  ErrorKind
	}{
		{"no credentials", &ConnectionError{Kind: KindNoCredentials}, IsNoCredentials, KindNoCredentials},
		{"incorrect password", &ConnectionError{Kind: KindIncorrectPassword, SSID: "home"}, IsIncorrectPassword, KindIncorrectPassword},
		{"no access point", &ConnectionError{Kind: KindNoAccessPointFound}, IsNoAccessPointFound, KindNoAccessPointFound},
		{"unknown", &ConnectionError{Kind: KindUnknownConnectionFailure, Code: 1}, IsUnknownConnectionFailure, KindUnknownConnectionFailure},
		{"storage", &ConnectionError{Kind: KindStorageFailure, Err: errors.New("disk full")}, IsStorageFailure, KindStorageFailure},
		{"wrapped", fmt.Errorf("run: %w", &ConnectionError{Kind: KindStorageFailure}), IsStorageFailure, KindStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate did not match %v", tt.err)
			}
			kind, ok := KindOf(tt.err)
			if !ok || kind != tt.kind {
				t.Errorf("KindOf() = %v, %v; want %v", kind, ok, tt.kind)
			}
		})
	}
}

func TestConnectionErrorKindsAreDistinct(t *testing.T) {
	err := &ConnectionError{Kind: KindIncorrectPassword}
	if IsNoAccessPointFound(err) || IsUnknownConnectionFailure(err) || IsStorageFailure(err) {
		t.Errorf("%v matched another kind", err)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf() should not match a plain error")
	}
}

func TestConnectionErrorMessage(t *testing.T) {
	cause := errors.New("dbus timeout")
	err := &ConnectionError{Kind: KindUnknownConnectionFailure, SSID: "home", Code: -1, Err: cause}

	msg := err.Error()
	for _, want := range []string{"unknown connection failure", `"home"`, "status -1", "dbus timeout"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateAccessPoint, "access-point"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
