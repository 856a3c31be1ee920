package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

func GenerateSHA256Hash(data string) string {
	return GenerateSHA256HashBytes([]byte(data))
}

func GenerateSHA256HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
