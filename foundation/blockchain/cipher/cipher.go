// Package cipher provides the textbook modular exponentiation key pair used to
// sign and verify transactions. Every symbol of a message is encrypted on its
// own, so the key sizes here are for teaching and nothing else.
package cipher

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"unicode/utf8"
)

// The frozen constants used by GenerateKeyPair.
const (
	PrimeP         = 61
	PrimeQ         = 53
	PublicExponent = 17
)

// ErrNoInverse is returned when the public exponent has no modular inverse
// modulo the totient, so no private exponent exists.
var ErrNoInverse = errors.New("public exponent is not coprime with the totient")

// ErrInvalidKey is returned when a key is missing its exponent or modulus.
var ErrInvalidKey = errors.New("key needs a positive exponent and a modulus above one")

// EncodingError reports a symbol whose code point is not below the modulus.
// Encrypting such a symbol wraps around the modulus and the original symbol
// can't be recovered.
type EncodingError struct {
	Symbol  rune
	Index   int
	Modulus *big.Int
}

// Error implements the error interface.
func (ee *EncodingError) Error() string {
	return fmt.Sprintf("symbol %q at index %d has code point %d, not below modulus %s", ee.Symbol, ee.Index, ee.Symbol, ee.Modulus)
}

// =============================================================================

// Key is one half of a key pair: an exponent and the shared modulus.
type Key struct {
	Exponent *big.Int `json:"exponent"`
	Modulus  *big.Int `json:"modulus"`
}

// Valid reports whether the key can be used for exponentiation: a positive
// exponent and a modulus above one.
func (k Key) Valid() bool {
	if k.Exponent == nil || k.Modulus == nil {
		return false
	}

	return k.Exponent.Sign() > 0 && k.Modulus.Cmp(big.NewInt(1)) > 0
}

// Equal reports whether both keys hold the same exponent and modulus.
func (k Key) Equal(other Key) bool {
	if !k.Valid() || !other.Valid() {
		return false
	}

	return k.Exponent.Cmp(other.Exponent) == 0 && k.Modulus.Cmp(other.Modulus) == 0
}

// String implements the fmt.Stringer interface.
func (k Key) String() string {
	return fmt.Sprintf("(%s, %s)", k.Exponent, k.Modulus)
}

// KeyPair holds the public key (e, n) and the private key (d, n).
type KeyPair struct {
	Public  Key `json:"public"`
	Private Key `json:"private"`
}

// GenerateKeyPair derives the key pair from the frozen primes and public
// exponent. The result is the same every time it is called.
func GenerateKeyPair() (KeyPair, error) {
	return GenerateKeyPairFrom(PrimeP, PrimeQ, PublicExponent)
}

// GenerateKeyPairFrom derives a key pair from the specified primes and public
// exponent. The primes are not checked for primality.
func GenerateKeyPairFrom(p int64, q int64, e int64) (KeyPair, error) {
	bp := big.NewInt(p)
	bq := big.NewInt(q)
	one := big.NewInt(1)

	n := new(big.Int).Mul(bp, bq)
	totient := new(big.Int).Mul(new(big.Int).Sub(bp, one), new(big.Int).Sub(bq, one))

	be := big.NewInt(e)
	d := new(big.Int).ModInverse(be, totient)
	if d == nil {
		return KeyPair{}, fmt.Errorf("e[%d] totient[%s]: %w", e, totient, ErrNoInverse)
	}

	kp := KeyPair{
		Public: Key{
			Exponent: be,
			Modulus:  n,
		},
		Private: Key{
			Exponent: d,
			Modulus:  new(big.Int).Set(n),
		},
	}

	if !kp.Public.Valid() || !kp.Private.Valid() {
		return KeyPair{}, fmt.Errorf("p[%d] q[%d] e[%d]: %w", p, q, e, ErrInvalidKey)
	}

	return kp, nil
}

// =============================================================================

// Encrypt raises the code point of every symbol in the message to the key's
// exponent modulo the key's modulus. Code points at or above the modulus wrap.
// An invalid key encrypts nothing.
func Encrypt(message string, key Key) []*big.Int {
	if !key.Valid() {
		return nil
	}

	encrypted := make([]*big.Int, 0, len(message))
	for _, r := range message {
		c := new(big.Int).Exp(big.NewInt(int64(r)), key.Exponent, key.Modulus)
		if c == nil {
			return nil
		}
		encrypted = append(encrypted, c)
	}

	return encrypted
}

// Decrypt raises every value to the key's exponent modulo the key's modulus
// and reassembles the results as code points. An invalid key decrypts to the
// empty string.
func Decrypt(encrypted []*big.Int, key Key) string {
	if !key.Valid() {
		return ""
	}

	runes := make([]rune, len(encrypted))
	for i, c := range encrypted {
		if c == nil {
			runes[i] = 0
			continue
		}

		m := new(big.Int).Exp(c, key.Exponent, key.Modulus)
		if m == nil || !m.IsInt64() || m.Int64() > utf8.MaxRune {
			runes[i] = utf8.RuneError
			continue
		}
		runes[i] = rune(m.Int64())
	}

	return string(runes)
}

// CheckMessage reports the first symbol of the message that Encrypt would
// wrap around the modulus of the key.
func CheckMessage(message string, key Key) error {
	if !key.Valid() {
		return ErrInvalidKey
	}

	var index int
	for _, r := range message {
		if big.NewInt(int64(r)).Cmp(key.Modulus) >= 0 {
			return &EncodingError{Symbol: r, Index: index, Modulus: key.Modulus}
		}
		index++
	}

	return nil
}

// =============================================================================

// SaveKeyPair writes the key pair to the specified file as JSON.
func SaveKeyPair(path string, kp KeyPair) error {
	data, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key pair: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write key pair: %w", err)
	}

	return nil
}

// LoadKeyPair reads a key pair previously written by SaveKeyPair.
func LoadKeyPair(path string) (KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyPair{}, fmt.Errorf("read key pair: %w", err)
	}

	var kp KeyPair
	if err := json.Unmarshal(data, &kp); err != nil {
		return KeyPair{}, fmt.Errorf("unmarshal key pair: %w", err)
	}

	if !kp.Public.Valid() || !kp.Private.Valid() {
		return KeyPair{}, ErrInvalidKey
	}

	return kp, nil
}
