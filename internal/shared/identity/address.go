package identity

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Address is a 160-bit account identity shared by every ledger in the
// topology. Addresses are rendered 0x-prefixed lowercase hex.
type Address [20]byte

var ErrInvalidAddress = errors.New("identity: invalid address")

// aliasOffset is the fixed, publicly known offset the retryable transport
// class adds to a sender address on the dependent ledger. The aliased form
// substitutes for an explicit remote-sender field.
var aliasOffset = Address{
	0x11, 0x11, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x11, 0x11,
}

func ParseAddress(raw string) (Address, error) {
	var addr Address
	value := strings.TrimSpace(strings.ToLower(raw))
	value = strings.TrimPrefix(value, "0x")
	if len(value) != 40 {
		return Address{}, ErrInvalidAddress
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return Address{}, ErrInvalidAddress
	}
	copy(addr[:], decoded)
	return addr, nil
}

func AddressFromBytes(raw []byte) (Address, error) {
	var addr Address
	if len(raw) != 20 {
		return Address{}, ErrInvalidAddress
	}
	copy(addr[:], raw)
	return addr, nil
}

func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Alias returns the address shifted by the public aliasing offset,
// modulo the 160-bit identity space.
func (a Address) Alias() Address {
	return addMod160(a, aliasOffset)
}

// Unalias inverts Alias.
func Unalias(aliased Address) Address {
	return subMod160(aliased, aliasOffset)
}

func addMod160(a, b Address) Address {
	var out Address
	carry := uint16(0)
	for i := 19; i >= 0; i-- {
		sum := uint16(a[i]) + uint16(b[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

func subMod160(a, b Address) Address {
	var out Address
	borrow := int16(0)
	for i := 19; i >= 0; i-- {
		diff := int16(a[i]) - int16(b[i]) - borrow
		if diff < 0 {
			diff += 256
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = byte(diff)
	}
	return out
}
