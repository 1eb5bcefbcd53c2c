package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// CodeAlphabet is the symbol set shared by every case identifier.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NanoID returns size symbols drawn from alphabet using crypto/rand.
func NanoID(alphabet string, size int) (string, error) {
	if alphabet == "" {
		alphabet = CodeAlphabet
	}

	return gonanoid.Generate(alphabet, size)
}
