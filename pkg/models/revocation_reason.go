package models

import (
	"fmt"
	"strings"
)

// RevocationReason holds an RFC 5280 CRLReason code.
type RevocationReason int

const (
	RevocationReasonUnspecified          RevocationReason = 0
	RevocationReasonKeyCompromise        RevocationReason = 1
	RevocationReasonCACompromise         RevocationReason = 2
	RevocationReasonAffiliationChanged   RevocationReason = 3
	RevocationReasonSuperseded           RevocationReason = 4
	RevocationReasonCessationOfOperation RevocationReason = 5
	RevocationReasonCertificateHold      RevocationReason = 6
	//7 not specified in RFC
	RevocationReasonRemoveFromCRL      RevocationReason = 8
	RevocationReasonPrivilegeWithdrawn RevocationReason = 9
	RevocationReasonAACompromise       RevocationReason = 10
)

var revocationReasonMap = map[int]string{
	0: "Unspecified",
	1: "KeyCompromise",
	2: "CACompromise",
	3: "AffiliationChanged",
	4: "Superseded",
	5: "CessationOfOperation",
	6: "CertificateHold",
	//7 not specified in RFC
	8:  "RemoveFromCRL",
	9:  "PrivilegeWithdrawn",
	10: "AACompromise",
}

func (p RevocationReason) String() string {
	if reason, ok := revocationReasonMap[int(p)]; ok {
		return reason
	}

	return fmt.Sprintf("UnknownReason(%d)", int(p))
}

func (p RevocationReason) MarshalText() ([]byte, error) {
	if reason, ok := revocationReasonMap[int(p)]; ok {
		return []byte(reason), nil
	}

	return nil, fmt.Errorf("unsupported revocation code")
}

func (p *RevocationReason) UnmarshalText(text []byte) (err error) {
	pw := string(text)

	for k, v := range revocationReasonMap {
		if strings.EqualFold(v, pw) {
			*p = RevocationReason(k)
			return nil
		}
	}

	return fmt.Errorf("unsupported revocation code")
}

func (p RevocationReason) MarshalJSON() ([]byte, error) {
	text, err := p.MarshalText()
	if err != nil {
		return nil, err
	}

	return []byte(`"` + string(text) + `"`), nil
}

func (p *RevocationReason) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("unsupported revocation code")
	}

	return p.UnmarshalText(data[1 : len(data)-1])
}
