package helpers

import (
	"encoding/hex"
	"math/big"

	"github.com/veridiapki/veridia/pkg/models"
)

// SerialNumberToHexString converts a big.Int serial number to its hexadecimal string representation.
// It ensures that the output is in lowercase and has an even length by padding with a leading zero if necessary.
func SerialNumberToHexString(n *big.Int) string {
	n = new(big.Int).Abs(n)
	if n.Sign() == 0 {
		return "00"
	}
	return hex.EncodeToString(n.Bytes())
}

// SerialNumberForAudit renders a serial for audit records, with a 0x prefix
// so operators can paste it into lookup tools verbatim.
func SerialNumberForAudit(n *big.Int) string {
	if n == nil {
		return models.AuditSerialEmpty
	}
	return "0x" + SerialNumberToHexString(n)
}
