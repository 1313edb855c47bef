// Package tron provides TRON address handling and the ledger query client
// used by receipt validation.
package tron

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	// AddressPrefixByte is the mainnet network prefix of raw addresses.
	AddressPrefixByte = 0x41

	// rawAddressLen is the prefix byte plus the 20-byte account hash.
	rawAddressLen = 21

	// checksumLen is the number of double-SHA256 bytes appended before
	// base58 encoding.
	checksumLen = 4

	// minBase58AddressLen is the shortest plausible "T..." address.
	minBase58AddressLen = 34
)

// ErrInvalidAddress is returned when an address cannot be normalized.
var ErrInvalidAddress = errors.New("invalid tron address")

// NormalizeAddress converts any accepted address encoding to the checksummed
// base58 form. Accepted inputs: the base58 "T..." form (returned unchanged
// after a cheap prefix/length acceptance check, not a full checksum
// verification), and raw hex with or without a 0x prefix. Hex input must
// decode to exactly 21 bytes with the 0x41 network prefix; a bare 20-byte
// account hash is prefixed automatically.
func NormalizeAddress(addr string) (string, error) {
	a := strings.TrimSpace(addr)
	if a == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	if strings.HasPrefix(a, "T") && len(a) >= minBase58AddressLen {
		return a, nil
	}

	if strings.HasPrefix(a, "0x") || strings.HasPrefix(a, "0X") {
		a = a[2:]
	}
	if len(a) == 2*(rawAddressLen-1) {
		a = "41" + a
	}

	raw, err := hex.DecodeString(a)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(raw) != rawAddressLen || raw[0] != AddressPrefixByte {
		return "", fmt.Errorf("%w: want %d bytes with 0x%02x prefix, got %d bytes",
			ErrInvalidAddress, rawAddressLen, AddressPrefixByte, len(raw))
	}

	return EncodeBase58Check(raw), nil
}

// EncodeBase58Check appends a 4-byte double-SHA256 checksum to the payload
// and encodes the result in the Bitcoin base58 alphabet. Leading zero bytes
// become leading '1' characters.
func EncodeBase58Check(payload []byte) string {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	buf := make([]byte, 0, len(payload)+checksumLen)
	buf = append(buf, payload...)
	buf = append(buf, second[:checksumLen]...)
	return base58.Encode(buf)
}

// DecodeBase58Check decodes a base58check string and verifies its checksum,
// returning the payload without the checksum.
func DecodeBase58Check(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(raw) <= checksumLen {
		return nil, fmt.Errorf("%w: too short for checksum", ErrInvalidAddress)
	}

	payload, chk := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(chk, second[:checksumLen]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}

	return payload, nil
}
