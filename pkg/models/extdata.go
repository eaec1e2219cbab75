package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Extended-attribute keys carried by Requests. These are a persisted contract
// and must round-trip exactly.
const (
	ExtOldCerts          = "OLD_CERTS"
	ExtOldSerials        = "OLD_SERIALS"
	ExtCertInfo          = "CERT_INFO"
	ExtReqType           = "REQ_TYPE"
	ExtRequestorType     = "REQUESTOR_TYPE"
	ExtRevokedReason     = "REVOKED_REASON"
	ExtRevokedCerts      = "REVOKED_CERTS"
	ExtRequestorComments = "REQUESTOR_COMMENTS"
	ExtResult            = "RESULT"
	ExtSvcErrors         = "SVCERRORS"
	ExtCRLUpdateStatus   = "CRL_UPDATE_STATUS"
	ExtCRLUpdateError    = "CRL_UPDATE_ERROR"
	ExtCRLPublishStatus  = "CRL_PUBLISH_STATUS"
	ExtCRLPublishError   = "CRL_PUBLISH_ERROR"
	ExtInvalidityDate    = "INVALIDITY_DATE"
	ExtAuthTokenPrefix   = "AUTH_TOKEN."
	ExtProfileID         = "PROFILE_ID"
	ExtErrorCode         = "ERROR_CODE"
)

type ExtValueKind string

const (
	ExtKindString       ExtValueKind = "str"
	ExtKindInt          ExtValueKind = "int"
	ExtKindDate         ExtValueKind = "date"
	ExtKindCert         ExtValueKind = "cert"
	ExtKindCertArray    ExtValueKind = "cert-array"
	ExtKindStringArray  ExtValueKind = "str-array"
	ExtKindRevokedCerts ExtValueKind = "revoked-cert-array"
)

// ExtValue is the tagged-variant value stored under one extended-attribute
// key. Exactly the field matching Kind is meaningful.
type ExtValue struct {
	Kind    ExtValueKind         `json:"kind"`
	Str     string               `json:"str,omitempty"`
	Int     int64                `json:"int,omitempty"`
	Date    time.Time            `json:"date,omitempty"`
	Cert    *X509Certificate     `json:"cert,omitempty"`
	Certs   []*X509Certificate   `json:"certs,omitempty"`
	Strs    []string             `json:"strs,omitempty"`
	Revoked []RevokedCertificate `json:"revoked,omitempty"`
}

func ExtString(s string) ExtValue         { return ExtValue{Kind: ExtKindString, Str: s} }
func ExtInt(i int64) ExtValue             { return ExtValue{Kind: ExtKindInt, Int: i} }
func ExtDate(t time.Time) ExtValue        { return ExtValue{Kind: ExtKindDate, Date: t} }
func ExtCert(c *X509Certificate) ExtValue { return ExtValue{Kind: ExtKindCert, Cert: c} }
func ExtCerts(cs []*X509Certificate) ExtValue {
	return ExtValue{Kind: ExtKindCertArray, Certs: cs}
}
func ExtStrings(ss []string) ExtValue { return ExtValue{Kind: ExtKindStringArray, Strs: ss} }
func ExtRevoked(rcs []RevokedCertificate) ExtValue {
	return ExtValue{Kind: ExtKindRevokedCerts, Revoked: rcs}
}

// ExtDataMap is the open-ended attribute bag attached to a Request. It keeps
// insertion order: batch result reporting and audit formatting iterate it in
// the order keys were first set.
type ExtDataMap struct {
	keys   []string
	values map[string]ExtValue
}

func NewExtDataMap() *ExtDataMap {
	return &ExtDataMap{
		keys:   []string{},
		values: map[string]ExtValue{},
	}
}

func (m *ExtDataMap) Set(key string, value ExtValue) {
	if m.values == nil {
		m.values = map[string]ExtValue{}
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *ExtDataMap) Get(key string) (ExtValue, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *ExtDataMap) GetString(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ExtKindString {
		return "", false
	}
	return v.Str, true
}

func (m *ExtDataMap) GetInt(key string) (int64, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ExtKindInt {
		return 0, false
	}
	return v.Int, true
}

func (m *ExtDataMap) GetStrings(key string) ([]string, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ExtKindStringArray {
		return nil, false
	}
	return v.Strs, true
}

func (m *ExtDataMap) GetCerts(key string) ([]*X509Certificate, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ExtKindCertArray {
		return nil, false
	}
	return v.Certs, true
}

func (m *ExtDataMap) GetRevoked(key string) ([]RevokedCertificate, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ExtKindRevokedCerts {
		return nil, false
	}
	return v.Revoked, true
}

// Keys returns the keys in insertion order.
func (m *ExtDataMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *ExtDataMap) Len() int {
	return len(m.keys)
}

type extDataEntry struct {
	Key   string   `json:"key"`
	Value ExtValue `json:"value"`
}

// MarshalJSON serializes as an array of key/value entries so the insertion
// order survives the round trip through the json storage serializer.
func (m ExtDataMap) MarshalJSON() ([]byte, error) {
	entries := make([]extDataEntry, 0, len(m.keys))
	for _, key := range m.keys {
		entries = append(entries, extDataEntry{Key: key, Value: m.values[key]})
	}

	return json.Marshal(entries)
}

func (m *ExtDataMap) UnmarshalJSON(data []byte) error {
	var entries []extDataEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("could not decode extended data: %w", err)
	}

	m.keys = make([]string, 0, len(entries))
	m.values = make(map[string]ExtValue, len(entries))
	for _, entry := range entries {
		m.Set(entry.Key, entry.Value)
	}

	return nil
}
