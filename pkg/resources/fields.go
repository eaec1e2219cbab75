package resources

type FilterFieldType int

const (
	StringFilterFieldType FilterFieldType = iota
	DateFilterFieldType
	NumberFilterFieldType
	EnumFilterFieldType
)

var CertificateFilterableFields = map[string]FilterFieldType{
	"serial_number":        StringFilterFieldType,
	"subject.common_name":  StringFilterFieldType,
	"subject_dn":           StringFilterFieldType,
	"issuer_dn":            StringFilterFieldType,
	"status":               EnumFilterFieldType,
	"valid_to":             DateFilterFieldType,
	"valid_from":           DateFilterFieldType,
	"revoked_by":           StringFilterFieldType,
	"revocation_timestamp": DateFilterFieldType,
	"revocation_reason":    EnumFilterFieldType,
}

var RequestFilterableFields = map[string]FilterFieldType{
	"id":              StringFilterFieldType,
	"type":            EnumFilterFieldType,
	"status":          EnumFilterFieldType,
	"owner":           StringFilterFieldType,
	"requestor_type":  EnumFilterFieldType,
	"creation_ts":     DateFilterFieldType,
	"modification_ts": DateFilterFieldType,
}

var IssuingPointFilterableFields = map[string]FilterFieldType{
	"id":                 StringFilterFieldType,
	"this_update":        DateFilterFieldType,
	"next_update":        DateFilterFieldType,
	"generation_enabled": EnumFilterFieldType,
}

var ProfileFilterableFields = map[string]FilterFieldType{
	"id":           StringFilterFieldType,
	"name":         StringFilterFieldType,
	"request_type": EnumFilterFieldType,
	"enabled":      EnumFilterFieldType,
}
