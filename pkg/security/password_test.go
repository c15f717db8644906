package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
)

var cheap = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(cheap)

	encoded, err := h.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	if ok, err := h.Verify("very-secure-password", encoded); err != nil || !ok {
		t.Fatalf("correct password rejected: ok=%v err=%v", ok, err)
	}
	if ok, err := h.Verify("bogus-password", encoded); err != nil || ok {
		t.Fatalf("wrong password accepted: ok=%v err=%v", ok, err)
	}
}

func TestSaltMakesHashesDiffer(t *testing.T) {
	h := NewHasher(cheap)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("expected different salts")
	}
}

func TestEmptyPasswordRejected(t *testing.T) {
	if _, err := NewHasher(cheap).Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	h := NewHasher(cheap)
	for _, bad := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8,t=1,p=1$!!$a2V5",
	} {
		if _, err := h.Verify("pw", bad); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("%q: expected ErrInvalidHash, got %v", bad, err)
		}
	}
}

func TestNeedsRehashTracksParameters(t *testing.T) {
	old := NewHasher(cheap)
	encoded, err := old.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if old.NeedsRehash(encoded) {
		t.Fatalf("same parameters should not need a rehash")
	}

	stronger := cheap
	stronger.ArgonTime = 2
	h := NewHasher(stronger)
	if !h.NeedsRehash(encoded) {
		t.Fatalf("changed cost should need a rehash")
	}
	if ok, err := h.Verify("pw", encoded); err != nil || !ok {
		t.Fatalf("old hashes must still verify: ok=%v err=%v", ok, err)
	}
}

func TestNewHasherClamps(t *testing.T) {
	h := NewHasher(config.PasswordConfig{ArgonParallelism: 1000})
	if h.p.memory != 8 || h.p.passes != 1 || h.p.lanes != 255 || h.p.saltLen != 8 || h.p.keyLen != 16 {
		t.Fatalf("unexpected clamped params %+v", h.p)
	}
}
