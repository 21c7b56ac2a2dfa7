package digest_test

import (
	"testing"

	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	tt := []struct {
		name  string
		input string
		exp   string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"name", "Alice", "3bc51062973c458d5a6f2d8d64a023246354ad7e064b1e4e009ec8a0699a3043"},
	}

	t.Log("Given the need to digest strings with sha256.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := digest.Hash(tst.input)
				if got != tst.exp {
					t.Logf("\t\tTest %d:\tgot: %s", testID, got)
					t.Logf("\t\tTest %d:\texp: %s", testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get back the right digest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right digest.", success, testID)

				if digest.Hash(tst.input) != got {
					t.Fatalf("\t%s\tTest %d:\tShould get back the same digest twice.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the same digest twice.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Strategies(t *testing.T) {
	t.Log("Given the need to select a hash strategy by name.")
	{
		for _, name := range []string{"", "sha256", "SHA256", "blake3"} {
			strategy, err := digest.Lookup(name)
			if err != nil {
				t.Fatalf("\t%s\tShould find strategy %q: %v", failed, name, err)
			}

			if l := len(digest.Sum(strategy, "abc")); l != 64 {
				t.Fatalf("\t%s\tShould get a 256-bit digest for %q, got %d hex chars.", failed, name, l)
			}
			t.Logf("\t%s\tShould get a 256-bit digest for %q.", success, name)
		}

		if _, err := digest.Lookup("md5"); err == nil {
			t.Fatalf("\t%s\tShould reject an unknown strategy.", failed)
		}
		t.Logf("\t%s\tShould reject an unknown strategy.", success)

		const exp = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
		if got := digest.Sum(digest.Blake3, ""); got != exp {
			t.Logf("\t\tgot: %s", got)
			t.Logf("\t\texp: %s", exp)
			t.Fatalf("\t%s\tShould match the blake3 empty input vector.", failed)
		}
		t.Logf("\t%s\tShould match the blake3 empty input vector.", success)

		if digest.Sum(nil, "abc") != digest.Hash("abc") {
			t.Fatalf("\t%s\tShould default a nil strategy to sha256.", failed)
		}
		t.Logf("\t%s\tShould default a nil strategy to sha256.", success)
	}
}
