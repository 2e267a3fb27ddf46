package domain

import (
	"testing"
	"unicode/utf8"
)

// Accepted identifiers must survive String → Parse unchanged, and every ID
// type must agree on what it accepts.
func FuzzParseIDs(f *testing.F) {
	for _, seed := range []string{
		"",
		"3f2b8a1e-6c4d-4e7a-9b10-2d5c8e7f1a23",
		"00000000-0000-0000-0000-000000000000",
		"{3f2b8a1e-6c4d-4e7a-9b10-2d5c8e7f1a23}",
		"urn:uuid:3f2b8a1e-6c4d-4e7a-9b10-2d5c8e7f1a23",
		"certificate",
		"3f2b8a1e-6c4d-4e7a-9b10-2d5c8e7f1a23\x00",
		string([]byte{0xff, 0xfe}),
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		certID, certErr := ParseCertificateID(input)
		_, userErr := ParseUserID(input)
		_, logErr := ParseLogEntryID(input)
		if (certErr == nil) != (userErr == nil) || (certErr == nil) != (logErr == nil) {
			t.Fatalf("ID types disagree on %q", input)
		}
		if certErr != nil {
			return
		}
		if !utf8.ValidString(input) {
			t.Fatalf("accepted invalid UTF-8 %q", input)
		}
		again, err := ParseCertificateID(certID.String())
		if err != nil || again != certID {
			t.Fatalf("round trip of %q failed: %v", input, err)
		}
	})
}

func FuzzParseWalletAddress(f *testing.F) {
	f.Add("")
	f.Add("11111111111111111111111111111111")
	f.Add("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	f.Add("0OIl")
	f.Add("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T4Nd1")

	f.Fuzz(func(t *testing.T, input string) {
		addr, err := ParseWalletAddress(input)
		if err != nil {
			return
		}
		if got := len(addr.PublicKey()); got != walletKeySize {
			t.Fatalf("accepted %q decoding to %d bytes", input, got)
		}
	})
}
