package models

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestRevocationReasonString(t *testing.T) {
	var testcases = []struct {
		name     string
		reason   RevocationReason
		expected string
	}{
		{name: "OK/Unspecified", reason: RevocationReasonUnspecified, expected: "Unspecified"},
		{name: "OK/KeyCompromise", reason: RevocationReasonKeyCompromise, expected: "KeyCompromise"},
		{name: "OK/CertificateHold", reason: RevocationReasonCertificateHold, expected: "CertificateHold"},
		{name: "OK/AACompromise", reason: RevocationReasonAACompromise, expected: "AACompromise"},
		{name: "Err/GapCode", reason: RevocationReason(7), expected: "UnknownReason(7)"},
		{name: "Err/OutOfRange", reason: RevocationReason(42), expected: "UnknownReason(42)"},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.reason.String(); got != tc.expected {
				t.Fatalf("unexpected result in test case: got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestRevocationReasonTextRoundTrip(t *testing.T) {
	for code, name := range revocationReasonMap {
		reason := RevocationReason(code)

		text, err := reason.MarshalText()
		if err != nil {
			t.Fatalf("unexpected result in test case: marshal %s: %s", name, err)
		}

		var back RevocationReason
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unexpected result in test case: unmarshal %s: %s", name, err)
		}

		if back != reason {
			t.Fatalf("unexpected result in test case: %s round-tripped to %d", name, int(back))
		}
	}
}

func TestRevocationReasonUnmarshalText(t *testing.T) {
	var testcases = []struct {
		name        string
		input       string
		expected    RevocationReason
		expectedErr string
	}{
		{name: "OK/ExactName", input: "KeyCompromise", expected: RevocationReasonKeyCompromise},
		{name: "OK/CaseInsensitive", input: "certificatehold", expected: RevocationReasonCertificateHold},
		{name: "OK/UpperCase", input: "SUPERSEDED", expected: RevocationReasonSuperseded},
		{name: "Err/UnknownName", input: "Exploded", expectedErr: "unsupported revocation code"},
		{name: "Err/Empty", input: "", expectedErr: "unsupported revocation code"},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var reason RevocationReason
			err := reason.UnmarshalText([]byte(tc.input))
			if tc.expectedErr != "" {
				if err == nil || err.Error() != tc.expectedErr {
					t.Fatalf("unexpected result in test case: got error %v, want %q", err, tc.expectedErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected result in test case: %s", err)
			}

			if reason != tc.expected {
				t.Fatalf("unexpected result in test case: got %d, want %d", int(reason), int(tc.expected))
			}
		})
	}
}

func TestRevocationReasonMarshalRejectsUnknownCodes(t *testing.T) {
	for _, code := range []int{7, 11, -1} {
		if _, err := RevocationReason(code).MarshalText(); err == nil {
			t.Fatalf("unexpected result in test case: marshal of code %d did not fail", code)
		}

		if _, err := json.Marshal(RevocationReason(code)); err == nil {
			t.Fatalf("unexpected result in test case: json marshal of code %d did not fail", code)
		}
	}
}

func TestRevocationReasonJSON(t *testing.T) {
	data, err := json.Marshal(RevocationReasonCACompromise)
	if err != nil {
		t.Fatalf("unexpected result in test case: %s", err)
	}

	if string(data) != `"CACompromise"` {
		t.Fatalf("unexpected result in test case: got %s", data)
	}

	var reason RevocationReason
	if err := json.Unmarshal(data, &reason); err != nil {
		t.Fatalf("unexpected result in test case: %s", err)
	}

	if reason != RevocationReasonCACompromise {
		t.Fatalf("unexpected result in test case: got %d", int(reason))
	}

	if err := reason.UnmarshalJSON([]byte(`CACompromise`)); err == nil {
		t.Fatal("unexpected result in test case: unquoted input did not fail")
	}
}

func TestRevocationReasonInStruct(t *testing.T) {
	type payload struct {
		Reason RevocationReason `json:"reason"`
	}

	data, err := json.Marshal(payload{Reason: RevocationReasonPrivilegeWithdrawn})
	if err != nil {
		t.Fatalf("unexpected result in test case: %s", err)
	}

	expected := fmt.Sprintf(`{"reason":%q}`, "PrivilegeWithdrawn")
	if string(data) != expected {
		t.Fatalf("unexpected result in test case: got %s, want %s", data, expected)
	}

	var back payload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected result in test case: %s", err)
	}

	if back.Reason != RevocationReasonPrivilegeWithdrawn {
		t.Fatalf("unexpected result in test case: got %d", int(back.Reason))
	}
}
