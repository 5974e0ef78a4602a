package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenToken returns n random bytes, hex encoded. Used for opaque session
// tokens, which live in the database so they can be revoked instantly.
func GenToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
