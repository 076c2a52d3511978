package identity

import "testing"

func TestParseAddressRoundTrip(t *testing.T) {
	raw := "0x8ba1f109551bd432803012645ac136ddd64dba72"
	addr, err := ParseAddress(raw)
	if err != nil {
		t.Fatalf("parse address failed: %v", err)
	}
	if addr.Hex() != raw {
		t.Fatalf("round trip mismatch: %s != %s", addr.Hex(), raw)
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"0x1234",
		"0x8ba1f109551bd432803012645ac136ddd64dba7", // 39 chars
		"0xzza1f109551bd432803012645ac136ddd64dba72",
	}
	for _, raw := range cases {
		if _, err := ParseAddress(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestAliasRoundTrip(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000ff")
	if err != nil {
		t.Fatalf("parse address failed: %v", err)
	}
	aliased := addr.Alias()
	if aliased == addr {
		t.Fatalf("alias must differ from the original address")
	}
	if Unalias(aliased) != addr {
		t.Fatalf("unalias did not invert alias")
	}
}

func TestAliasCarriesAcrossBytes(t *testing.T) {
	addr, err := ParseAddress("0xffffffffffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("parse address failed: %v", err)
	}
	// max address + offset wraps modulo 2^160
	aliased := addr.Alias()
	want, err := ParseAddress("0x1111000000000000000000000000000000001110")
	if err != nil {
		t.Fatalf("parse want failed: %v", err)
	}
	if aliased != want {
		t.Fatalf("wrap-around alias mismatch: got %s want %s", aliased.Hex(), want.Hex())
	}
}
