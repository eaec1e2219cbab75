package models

import (
	"math/big"
)

// BigInt carries CRL numbers, which are unbounded by RFC 5280. It serializes
// as base-10 text so the gorm text serializer can persist it.
type BigInt struct {
	*big.Int
}

func (b BigInt) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BigInt) UnmarshalText(text []byte) error {
	b.Int = new(big.Int)
	b.Int.SetString(string(text), 10)

	return nil
}
