package fetch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseChecksum(t *testing.T) {
	sha1Digest := strings.Repeat("a", 40)
	sha256Digest := strings.Repeat("b", 64)

	tests := []struct {
		name     string
		input    string
		algo     ChecksumAlgorithm
		expected string
		wantErr  bool
	}{
		{"prefixed sha1", "sha1:" + sha1Digest, ChecksumSHA1, sha1Digest, false},
		{"prefixed sha256 upper", "SHA256:" + strings.ToUpper(sha256Digest), ChecksumSHA256, sha256Digest, false},
		{"bare sha1", sha1Digest, ChecksumSHA1, sha1Digest, false},
		{"bare sha256", sha256Digest, ChecksumSHA256, sha256Digest, false},
		{"bare sha512", strings.Repeat("c", 128), ChecksumSHA512, strings.Repeat("c", 128), false},
		{"unknown algorithm", "md5:abcd", 0, "", true},
		{"wrong length", "sha256:" + sha1Digest, 0, "", true},
		{"not hex", strings.Repeat("z", 40), 0, "", true},
		{"placeholder", "placeholder", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			algo, got, err := ParseChecksum(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChecksum(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if algo != tt.algo || got != tt.expected {
				t.Errorf("ParseChecksum(%q) = %v, %q; want %v, %q", tt.input, algo, got, tt.algo, tt.expected)
			}
		})
	}
}

func TestVerifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyFile(path, "sha1:aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d")
	if err != nil || !ok {
		t.Errorf("sha1 verify = %v, %v", ok, err)
	}
	ok, err = VerifyFile(path, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	if err != nil || !ok {
		t.Errorf("sha256 verify = %v, %v", ok, err)
	}
	ok, err = VerifyFile(path, "sha1:"+strings.Repeat("0", 40))
	if err != nil || ok {
		t.Errorf("mismatch verify = %v, %v", ok, err)
	}
}

func TestParseValidationLevel(t *testing.T) {
	for in, want := range map[string]ValidationLevel{
		"":         ValidationStandard,
		"strict":   ValidationStrict,
		"RELAXED":  ValidationRelaxed,
		" minimal": ValidationMinimal,
		"none":     ValidationNone,
	} {
		got, err := ParseValidationLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseValidationLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseValidationLevel("paranoid"); err == nil {
		t.Error("expected error for unknown level")
	}
}
