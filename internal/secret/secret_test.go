package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "simple text", plaintext: "club-password"},
		{name: "empty string", plaintext: ""},
		{name: "special characters", plaintext: "!@#$%^&*()_+-=[]{}|;:',.<>?"},
		{name: "unicode", plaintext: "pässwörd ✓"},
		{name: "long text", plaintext: strings.Repeat("abc", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Encrypt("passphrase", tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !IsEncrypted(sealed) {
				t.Errorf("Encrypt() = %q, missing %q prefix", sealed, Prefix)
			}

			got, err := Decrypt("passphrase", sealed)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if got != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestEncrypt_UniqueSalt(t *testing.T) {
	a, err := Encrypt("passphrase", "same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("passphrase", "same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same value should differ")
	}
}

func TestDecrypt_PlainPassthrough(t *testing.T) {
	got, err := Decrypt("", "plain-value")
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "plain-value" {
		t.Errorf("Decrypt() = %q, want plain-value", got)
	}
}

func TestDecrypt_Errors(t *testing.T) {
	sealed, err := Encrypt("right", "secret")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		passphrase string
		value      string
		wantErr    error
	}{
		{name: "no passphrase", passphrase: "", value: sealed, wantErr: ErrNoPassphrase},
		{name: "bad base64", passphrase: "right", value: Prefix + "!!!", wantErr: ErrMalformed},
		{name: "too short", passphrase: "right", value: Prefix + "AAAA", wantErr: ErrMalformed},
		{name: "wrong passphrase", passphrase: "wrong", value: sealed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.passphrase, tt.value)
			if err == nil {
				t.Fatal("Decrypt() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncrypt_NoPassphrase(t *testing.T) {
	if _, err := Encrypt("", "x"); !errors.Is(err, ErrNoPassphrase) {
		t.Errorf("Encrypt() error = %v, want ErrNoPassphrase", err)
	}
}
