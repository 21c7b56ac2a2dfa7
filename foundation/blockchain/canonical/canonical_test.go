package canonical_test

import (
	"math/big"
	"testing"

	"github.com/ardanlabs/toyledger/foundation/blockchain/canonical"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_FormatFloat(t *testing.T) {
	tt := []struct {
		value float64
		exp   string
	}{
		{10, "10.0"},
		{0.1, "0.1"},
		{1e16, "1e+16"},
		{1.5e-05, "1.5e-05"},
		{0.0001, "0.0001"},
		{1e15, "1000000000000000.0"},
		{123456789012345678, "1.2345678901234568e+17"},
		{1700000000.1234567, "1700000000.1234567"},
		{1700000000.5, "1700000000.5"},
	}

	t.Log("Given the need to render floats in shortest round-trip form.")
	{
		for testID, tst := range tt {
			got := canonical.FormatFloat(tst.value)
			if got != tst.exp {
				t.Logf("\t\tTest %d:\tgot: %s", testID, got)
				t.Logf("\t\tTest %d:\texp: %s", testID, tst.exp)
				t.Errorf("\t%s\tTest %d:\tShould render %v correctly.", failed, testID, tst.value)
				continue
			}
			t.Logf("\t%s\tTest %d:\tShould render %v correctly.", success, testID, tst.value)
		}
	}
}

func Test_Forms(t *testing.T) {
	unsigned := canonical.Fields{
		{Name: "sender", Value: "Alice"},
		{Name: "recipient", Value: "Bob"},
		{Name: "amount", Value: uint64(10)},
		{Name: "timestamp", Value: 1700000000.5},
		{Name: "signature", Value: []*big.Int(nil)},
	}

	quoted := canonical.Fields{
		{Name: "sender", Value: "O'Neil"},
		{Name: "recipient", Value: "Zoë \"Z\"\n"},
		{Name: "amount", Value: uint64(7)},
		{Name: "timestamp", Value: 1700000000.0},
		{Name: "signature", Value: []*big.Int{big.NewInt(2790), big.NewInt(1)}},
	}

	tt := []struct {
		name string
		got  string
		exp  string
	}{
		{
			name: "json list",
			got:  canonical.JSON([]canonical.Fields{unsigned}),
			exp:  `[{"sender": "Alice", "recipient": "Bob", "amount": 10, "timestamp": 1700000000.5, "signature": null}]`,
		},
		{
			name: "repr",
			got:  canonical.Repr(unsigned),
			exp:  `{'sender': 'Alice', 'recipient': 'Bob', 'amount': 10, 'timestamp': 1700000000.5, 'signature': None}`,
		},
		{
			name: "json escapes",
			got:  canonical.JSON(quoted),
			exp:  `{"sender": "O'Neil", "recipient": "Zo\u00eb \"Z\"\n", "amount": 7, "timestamp": 1700000000.0, "signature": [2790, 1]}`,
		},
		{
			name: "repr escapes",
			got:  canonical.Repr(quoted),
			exp:  `{'sender': "O'Neil", 'recipient': 'Zoë "Z"\n', 'amount': 7, 'timestamp': 1700000000.0, 'signature': [2790, 1]}`,
		},
		{
			name: "empty list",
			got:  canonical.JSON([]canonical.Fields{}),
			exp:  `[]`,
		},
		{
			name: "repr control",
			got:  canonical.Repr("\x7f\u00a0é"),
			exp:  `'\x7f\xa0é'`,
		},
		{
			name: "repr backslash",
			got:  canonical.Repr(`a\b`),
			exp:  `'a\\b'`,
		},
		{
			name: "json astral",
			got:  canonical.JSON("😀\x7f"),
			exp:  `"\ud83d\ude00\u007f"`,
		},
		{
			name: "text",
			got:  canonical.Text("Alice") + canonical.Text(uint64(10)) + canonical.Text(1700000000.25),
			exp:  "Alice101700000000.25",
		},
	}

	t.Log("Given the need to produce the frozen textual forms.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				if tst.got != tst.exp {
					t.Logf("\t\tTest %d:\tgot: %s", testID, tst.got)
					t.Logf("\t\tTest %d:\texp: %s", testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould produce the exact form.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould produce the exact form.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
