package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestExtDataMapAccessors(t *testing.T) {
	m := NewExtDataMap()
	m.Set(ExtReqType, ExtString("revocation"))
	m.Set(ExtErrorCode, ExtInt(2))
	m.Set(ExtOldSerials, ExtStrings([]string{"0a", "0b"}))

	str, ok := m.GetString(ExtReqType)
	if !ok || str != "revocation" {
		t.Fatalf("unexpected result in test case: got %q, %v", str, ok)
	}

	num, ok := m.GetInt(ExtErrorCode)
	if !ok || num != 2 {
		t.Fatalf("unexpected result in test case: got %d, %v", num, ok)
	}

	serials, ok := m.GetStrings(ExtOldSerials)
	if !ok || len(serials) != 2 || serials[0] != "0a" {
		t.Fatalf("unexpected result in test case: got %v, %v", serials, ok)
	}

	// kind-mismatched lookups report absence, not a zero value with ok=true
	if _, ok := m.GetInt(ExtReqType); ok {
		t.Fatal("unexpected result in test case: int lookup matched a string value")
	}

	if _, ok := m.GetString("MISSING"); ok {
		t.Fatal("unexpected result in test case: missing key reported present")
	}
}

func TestExtDataMapInsertionOrder(t *testing.T) {
	m := NewExtDataMap()
	m.Set("third-set-first", ExtString("a"))
	m.Set("second", ExtString("b"))
	m.Set("last", ExtString("c"))

	// overwriting keeps the original position
	m.Set("second", ExtString("b2"))

	keys := m.Keys()
	if len(keys) != 3 || keys[0] != "third-set-first" || keys[1] != "second" || keys[2] != "last" {
		t.Fatalf("unexpected result in test case: got keys %v", keys)
	}

	if m.Len() != 3 {
		t.Fatalf("unexpected result in test case: got len %d", m.Len())
	}

	str, ok := m.GetString("second")
	if !ok || str != "b2" {
		t.Fatalf("unexpected result in test case: got %q, %v", str, ok)
	}
}

func TestExtDataMapSetOnZeroValue(t *testing.T) {
	var m ExtDataMap
	m.Set(ExtResult, ExtInt(0))

	if m.Len() != 1 {
		t.Fatalf("unexpected result in test case: got len %d", m.Len())
	}

	if _, ok := m.Get(ExtResult); !ok {
		t.Fatal("unexpected result in test case: value not stored")
	}
}

func TestExtDataMapJSONRoundTrip(t *testing.T) {
	revokedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	m := NewExtDataMap()
	m.Set(ExtReqType, ExtString("revocation"))
	m.Set(ExtRevokedReason, ExtInt(int64(RevocationReasonKeyCompromise)))
	m.Set(ExtInvalidityDate, ExtDate(revokedAt))
	m.Set(ExtOldSerials, ExtStrings([]string{"1f", "20"}))
	m.Set(ExtRevokedCerts, ExtRevoked([]RevokedCertificate{
		{SerialNumber: "1f", RevocationTime: revokedAt},
	}))

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected result in test case: %s", err)
	}

	var back ExtDataMap
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected result in test case: %s", err)
	}

	keys := back.Keys()
	expected := []string{ExtReqType, ExtRevokedReason, ExtInvalidityDate, ExtOldSerials, ExtRevokedCerts}
	if len(keys) != len(expected) {
		t.Fatalf("unexpected result in test case: got keys %v", keys)
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Fatalf("unexpected result in test case: key %d is %q, want %q", i, keys[i], key)
		}
	}

	reason, ok := back.GetInt(ExtRevokedReason)
	if !ok || RevocationReason(reason) != RevocationReasonKeyCompromise {
		t.Fatalf("unexpected result in test case: got reason %d, %v", reason, ok)
	}

	date, ok := back.Get(ExtInvalidityDate)
	if !ok || date.Kind != ExtKindDate || !date.Date.Equal(revokedAt) {
		t.Fatalf("unexpected result in test case: got %+v, %v", date, ok)
	}

	revoked, ok := back.GetRevoked(ExtRevokedCerts)
	if !ok || len(revoked) != 1 || revoked[0].SerialNumber != "1f" {
		t.Fatalf("unexpected result in test case: got %+v, %v", revoked, ok)
	}

	if !revoked[0].RevocationTime.Equal(revokedAt) {
		t.Fatalf("unexpected result in test case: got revocation time %s", revoked[0].RevocationTime)
	}
}

func TestExtDataMapUnmarshalRejectsGarbage(t *testing.T) {
	var m ExtDataMap
	if err := json.Unmarshal([]byte(`{"not":"an array"}`), &m); err == nil {
		t.Fatal("unexpected result in test case: object input did not fail")
	}
}
