package fetch

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// ChecksumAlgorithm is a digest used by upstream manifests.
type ChecksumAlgorithm int

const (
	ChecksumSHA1 ChecksumAlgorithm = iota
	ChecksumSHA256
	ChecksumSHA512
)

func (c ChecksumAlgorithm) String() string {
	switch c {
	case ChecksumSHA1:
		return "sha1"
	case ChecksumSHA256:
		return "sha256"
	case ChecksumSHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// New returns a fresh hash for the algorithm.
func (c ChecksumAlgorithm) New() hash.Hash {
	switch c {
	case ChecksumSHA256:
		return sha256.New()
	case ChecksumSHA512:
		return sha512.New()
	default:
		return sha1.New()
	}
}

// ParseChecksum splits "algorithm:hex" or guesses the algorithm of a bare
// hex digest from its length. The digest must be valid hex.
func ParseChecksum(checksumStr string) (ChecksumAlgorithm, string, error) {
	var (
		algo     ChecksumAlgorithm
		expected string
	)

	if prefix, value, ok := strings.Cut(checksumStr, ":"); ok {
		switch strings.ToLower(prefix) {
		case "sha1":
			algo = ChecksumSHA1
		case "sha256":
			algo = ChecksumSHA256
		case "sha512":
			algo = ChecksumSHA512
		default:
			return ChecksumSHA1, "", fmt.Errorf("unknown checksum algorithm: %s", prefix)
		}
		expected = value
	} else {
		switch len(checksumStr) {
		case 40:
			algo = ChecksumSHA1
		case 64:
			algo = ChecksumSHA256
		case 128:
			algo = ChecksumSHA512
		default:
			return ChecksumSHA1, "", fmt.Errorf("cannot infer checksum algorithm from %d hex digits", len(checksumStr))
		}
		expected = checksumStr
	}

	expected = strings.ToLower(expected)
	if _, err := hex.DecodeString(expected); err != nil || len(expected) != algo.New().Size()*2 {
		return algo, "", fmt.Errorf("invalid %s digest: %q", algo, expected)
	}
	return algo, expected, nil
}

// CalculateChecksum hashes r and returns the prefixed digest.
func CalculateChecksum(r io.Reader, algorithm ChecksumAlgorithm) (string, error) {
	h := algorithm.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return algorithm.String() + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFile reports whether the file at path matches checksumStr.
func VerifyFile(path, checksumStr string) (bool, error) {
	algo, expected, err := ParseChecksum(checksumStr)
	if err != nil {
		return false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	actual, err := CalculateChecksum(f, algo)
	if err != nil {
		return false, err
	}
	return strings.TrimPrefix(actual, algo.String()+":") == expected, nil
}
