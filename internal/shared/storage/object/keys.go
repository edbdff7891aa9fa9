package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

// maxNameLen bounds the original-name part of a storage key.
const maxNameLen = 200

// ErrInvalidName is returned for file names that cannot be stored.
var ErrInvalidName = errors.New("invalid file name")

// OwnerPrefix maps a user reference to the directory its files live under.
// User references carry characters like ':' that are not safe in paths, so
// the prefix is their SHA-256.
func OwnerPrefix(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:])
}

// SafeName turns an uploaded file name into a single path segment. The
// extension survives so content-type inference still sees it.
func SafeName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "", ErrInvalidName
	}
	if len(cleaned) > maxNameLen {
		ext := ""
		if i := strings.LastIndexByte(cleaned, '.'); i > 0 && len(cleaned)-i <= 10 {
			ext = cleaned[i:]
		}
		cleaned = strings.ToValidUTF8(cleaned[:maxNameLen-len(ext)], "") + ext
	}
	return cleaned, nil
}
