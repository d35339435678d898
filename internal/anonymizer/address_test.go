package anonymizer

import (
	"errors"
	"math/rand"
	"testing"
)

func TestParseAddressRoundTrip(t *testing.T) {
	for _, s := range []string{
		"0.0.0.0",
		"255.255.255.255",
		"192.168.1.1",
		"10.0.0.5",
		"1.2.3.4",
		"172.16.254.1",
	} {
		a, err := ParseAddress(s)
		if err != nil {
			t.Fatalf("ParseAddress(%q): %v", s, err)
		}
		if got := a.String(); got != s {
			t.Errorf("ParseAddress(%q).String() = %q", s, got)
		}
	}
}

func TestParseAddressNetworkOrder(t *testing.T) {
	a, err := ParseAddress("192.168.1.2")
	if err != nil {
		t.Fatal(err)
	}
	if a != 0xC0A80102 {
		t.Errorf("got %#08x, want 0xc0a80102", uint32(a))
	}
}

func TestParseAddressRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"1.2.3",
		"1.2.3.4.5",
		"256.1.1.1",
		"1.2.3.-1",
		"01.2.3.4",
		" 1.2.3.4",
		"1.2.3.4 ",
		"a.b.c.d",
		"::1",
		"::ffff:1.2.3.4",
		"1.2.3.4/24",
	} {
		_, err := ParseAddress(s)
		if err == nil {
			t.Errorf("ParseAddress(%q) succeeded", s)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Value != s {
			t.Errorf("ParseAddress(%q) error %v is not a ParseError for the input", s, err)
		}
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ParseAddress(%q) error does not wrap ErrInvalidAddress", s)
		}
	}
}

func TestFormatTotal(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := Address(r.Uint32())
		back, err := ParseAddress(a.String())
		if err != nil {
			t.Fatalf("format of %#08x does not parse: %v", uint32(a), err)
		}
		if back != a {
			t.Fatalf("%#08x -> %s -> %#08x", uint32(a), a, uint32(back))
		}
	}
}

func TestByteSwap(t *testing.T) {
	if got := ByteSwap(0x01020304); got != 0x04030201 {
		t.Errorf("ByteSwap(0x01020304) = %#08x", got)
	}

	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		x := r.Uint32()
		if ByteSwap(ByteSwap(x)) != x {
			t.Fatalf("ByteSwap is not an involution for %#08x", x)
		}
	}
}

func TestCommonPrefixLen(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"192.168.1.1", "192.168.1.1", 32},
		{"192.168.1.1", "192.168.1.2", 30},
		{"192.168.1.1", "10.0.0.5", 0},
		{"10.0.0.0", "10.0.0.128", 24},
		{"0.0.0.0", "0.0.0.1", 31},
	}
	for _, tt := range tests {
		a, _ := ParseAddress(tt.a)
		b, _ := ParseAddress(tt.b)
		if got := CommonPrefixLen(a, b); got != tt.want {
			t.Errorf("CommonPrefixLen(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
