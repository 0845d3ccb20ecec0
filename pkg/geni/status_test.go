package geni

import "testing"

func TestStatus_String(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{StatusUnknown, "unknown"},
		{StatusUnauthorized, "unauthorized"},
		{StatusAuthorized, "authorized"},
		{Status(42), "unknown"},
	}

	for _, tc := range cases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestSetStatus_NeverReentersUnknown(t *testing.T) {
	sdk := newSDK(t, Config{})
	sdk.GetStatus() // unknown -> unauthorized

	sdk.setStatus(StatusUnknown)

	if got := Status(sdk.status.Load()); got != StatusUnauthorized {
		t.Errorf("status must not re-enter unknown, got %s", got)
	}
}
