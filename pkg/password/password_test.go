package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	stored, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	hashHex, salt, ok := strings.Cut(stored, ".")
	if !ok || len(hashHex) != 128 || len(salt) != 32 {
		t.Fatalf("unexpected stored form %q", stored)
	}

	ok, err = Verify("s3cret-pass", stored)
	if err != nil || !ok {
		t.Fatalf("correct password should verify: %v %v", ok, err)
	}
	ok, err = Verify("wrong", stored)
	if err != nil || ok {
		t.Fatalf("wrong password should not verify: %v %v", ok, err)
	}
}

func TestHash_SaltsDiffer(t *testing.T) {
	a, _ := Hash("same")
	b, _ := Hash("same")
	if a == b {
		t.Fatal("two hashes of one password must differ")
	}
}

func TestVerify_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := Verify("old-pass", string(legacy)); err != nil || !ok {
		t.Fatalf("bcrypt hash should verify: %v %v", ok, err)
	}
	if ok, err := Verify("nope", string(legacy)); err != nil || ok {
		t.Fatalf("bcrypt mismatch should be false without error: %v %v", ok, err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	for _, stored := range []string{"", "nodot", "zz.salt", "abcd.salt", "abcd."} {
		if _, err := Verify("x", stored); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("%q: want ErrMalformedHash, got %v", stored, err)
		}
	}
}
