package pow_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ardanlabs/powcontest/foundation/contest/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestDigest(t *testing.T) {
	type table struct {
		name      string
		algorithm string
		candidate string
		digest    string
	}

	tt := []table{
		{name: "sha1-empty", algorithm: pow.SHA1, candidate: "", digest: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{name: "sha1-abc", algorithm: pow.SHA1, candidate: "abc", digest: "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{name: "sha256-abc", algorithm: pow.SHA256, candidate: "abc", digest: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{name: "keccak256-empty", algorithm: pow.Keccak256, candidate: "", digest: "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
	}

	t.Log("Given the need to hash candidates.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen hashing %q with %s.", testID, tst.candidate, tst.algorithm)
				{
					o, err := pow.New(tst.algorithm)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct an oracle: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to construct an oracle.", success, testID)

					got := o.Digest(tst.candidate)
					if got != tst.digest {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.digest)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right digest.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right digest.", success, testID)

					if o.Size() != len(tst.digest) {
						t.Fatalf("\t%s\tTest %d:\tShould report a digest size of %d, got %d.", failed, testID, len(tst.digest), o.Size())
					}
					t.Logf("\t%s\tTest %d:\tShould report the digest size.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestNew(t *testing.T) {
	t.Log("Given the need to select a hash algorithm.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen asking for an unknown algorithm.", testID)
		{
			_, err := pow.New("md5")
			if !errors.Is(err, pow.ErrUnknownAlgorithm) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrUnknownAlgorithm, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrUnknownAlgorithm.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for the default algorithm.", testID)
		{
			o, err := pow.New("")
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct an oracle: %s", failed, testID, err)
			}
			if o.Algorithm() != pow.SHA1 {
				t.Fatalf("\t%s\tTest %d:\tShould default to sha1, got %s.", failed, testID, o.Algorithm())
			}
			t.Logf("\t%s\tTest %d:\tShould default to sha1.", success, testID)

			o, err = pow.New("KECCAK256")
			if err != nil || o.Algorithm() != pow.Keccak256 {
				t.Fatalf("\t%s\tTest %d:\tShould accept upper case names: %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould accept upper case names.", success, testID)
		}
	}
}

func TestMeetsDifficulty(t *testing.T) {
	t.Log("Given the need to validate candidates against a difficulty.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen checking candidates for small difficulties.", testID)
		{
			for nonce := 0; nonce < 5000; nonce++ {
				candidate := fmt.Sprintf("7-0-%d", nonce)
				digest := pow.Digest(candidate)

				for d := 0; d <= 3; d++ {
					exp := strings.HasPrefix(digest, strings.Repeat("0", d))
					if got := pow.MeetsDifficulty(candidate, d); got != exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %v for %q (%s) at difficulty %d.", failed, testID, exp, candidate, digest, d)
					}
				}
			}
			t.Logf("\t%s\tTest %d:\tShould match the leading zeros of the digest.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen checking the boundaries.", testID)
		{
			if !pow.MeetsDifficulty("anything", 0) {
				t.Fatalf("\t%s\tTest %d:\tShould always meet difficulty 0.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould always meet difficulty 0.", success, testID)

			// sha1("abc") starts with 'a'.
			if pow.MeetsDifficulty("abc", 1) {
				t.Fatalf("\t%s\tTest %d:\tShould not meet difficulty 1 without a leading 0.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not meet difficulty 1 without a leading 0.", success, testID)

			if pow.IsSolved(41, strings.Repeat("0", 40)) {
				t.Fatalf("\t%s\tTest %d:\tShould not meet a difficulty longer than the digest.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not meet a difficulty longer than the digest.", success, testID)

			if !pow.IsSolved(40, strings.Repeat("0", 40)) {
				t.Fatalf("\t%s\tTest %d:\tShould meet a difficulty equal to an all zero digest.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould meet a difficulty equal to an all zero digest.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen counting leading zeros.", testID)
		{
			tt := map[string]int{"": 0, "a0": 0, "0a": 1, "000f": 3, "0000": 4}
			for digest, exp := range tt {
				if got := pow.LeadingZeros(digest); got != exp {
					t.Fatalf("\t%s\tTest %d:\tShould count %d zeros in %q, got %d.", failed, testID, exp, digest, got)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould count leading zeros.", success, testID)
		}
	}
}
