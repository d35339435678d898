package anonymizer

import (
	"encoding/binary"
	"errors"
	"math/bits"
	"net/netip"
)

// Address is an IPv4 address in network byte order: the first octet of the
// dotted quad is the most significant byte.
type Address uint32

// ParseAddress accepts only the canonical dotted-quad form. Leading zeros,
// IPv6 and IPv4-mapped IPv6 forms are rejected so that every accepted string
// formats back to itself.
func ParseAddress(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return 0, &ParseError{Value: s, Err: err}
	}
	if !ip.Is4() {
		return 0, &ParseError{Value: s, Err: errors.New("not an IPv4 address")}
	}
	b := ip.As4()
	return Address(binary.BigEndian.Uint32(b[:])), nil
}

func (a Address) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(a))
	return netip.AddrFrom4(b).String()
}

// ByteSwap reverses the byte order of w.
func ByteSwap(w uint32) uint32 {
	return bits.ReverseBytes32(w)
}

// CommonPrefixLen returns the number of leading bits a and b share.
func CommonPrefixLen(a, b Address) int {
	return bits.LeadingZeros32(uint32(a ^ b))
}
