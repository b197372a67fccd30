// Package accesscode generates the join codes of courses. Codes are not
// unique by construction; the unique column on teams decides.
package accesscode

import (
	"crypto/rand"
	"math/big"
)

// Alphabet holds the 36 symbols a code is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length of a generated code.
const Length = 8

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// randInt is a seam for tests.
var randInt = rand.Int

// Generate returns a code of Length symbols, each chosen uniformly.
func Generate() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		n, err := randInt(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// Valid reports whether code has the shape Generate produces.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
