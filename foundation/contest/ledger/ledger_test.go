package ledger_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/ardanlabs/powcontest/foundation/contest/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newLedger(t *testing.T) *ledger.Ledger {
	l, err := ledger.New(ledger.Config{})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a ledger: %s", failed, err)
	}
	return l
}

// solve finds a candidate for the difficulty starting at the specified nonce.
func solve(client ledger.ClientID, id ledger.TxID, difficulty int, nonce int) string {
	for {
		candidate := fmt.Sprintf("%d-%d-%d", client, id, nonce)
		if pow.MeetsDifficulty(candidate, difficulty) {
			return candidate
		}
		nonce++
	}
}

// invalid finds a candidate that doesn't meet a difficulty of 1.
func invalid(client ledger.ClientID, id ledger.TxID) string {
	for nonce := 0; ; nonce++ {
		candidate := fmt.Sprintf("%d-%d-%d", client, id, nonce)
		if !pow.MeetsDifficulty(candidate, 1) {
			return candidate
		}
	}
}

func TestCreate(t *testing.T) {
	t.Log("Given the need to create transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen creating a sequence of transactions.", testID)
		{
			l := newLedger(t)

			for i := 0; i < 100; i++ {
				id, err := l.Create(0)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to create a transaction: %s", failed, testID, err)
				}
				if id != ledger.TxID(i) {
					t.Fatalf("\t%s\tTest %d:\tShould get id %d, got %d.", failed, testID, i, id)
				}

				rec, err := l.Get(id)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to get transaction %d: %s", failed, testID, id, err)
				}
				if rec.Difficulty < ledger.DefaultMinDifficulty || rec.Difficulty > ledger.DefaultMaxDifficulty {
					t.Fatalf("\t%s\tTest %d:\tShould generate a difficulty in range, got %d.", failed, testID, rec.Difficulty)
				}
				if rec.Solved || rec.Solution != "" || rec.Winner != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould create an unsolved transaction: %+v", failed, testID, rec)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould assign ids in order starting at 0.", success, testID)
			t.Logf("\t%s\tTest %d:\tShould generate difficulties in the default range.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen creating transactions concurrently.", testID)
		{
			l := newLedger(t)

			const g = 50
			ids := make(chan ledger.TxID, g)

			var wg sync.WaitGroup
			wg.Add(g)
			for i := 0; i < g; i++ {
				go func() {
					defer wg.Done()
					id, _ := l.Create(3)
					ids <- id
				}()
			}
			wg.Wait()
			close(ids)

			seen := make(map[ledger.TxID]bool)
			for id := range ids {
				if seen[id] {
					t.Fatalf("\t%s\tTest %d:\tShould never repeat an id, got %d twice.", failed, testID, id)
				}
				seen[id] = true
			}
			for i := 0; i < g; i++ {
				if !seen[ledger.TxID(i)] {
					t.Fatalf("\t%s\tTest %d:\tShould not leave gaps, missing %d.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould assign unique ids without gaps.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen providing bad difficulties.", testID)
		{
			l := newLedger(t)

			if _, err := l.Create(-1); !errors.Is(err, ledger.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a negative difficulty, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a negative difficulty.", success, testID)

			if _, err := ledger.New(ledger.Config{MinDifficulty: 5, MaxDifficulty: 2}); !errors.Is(err, ledger.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould reject an inverted range, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an inverted range.", success, testID)

			if _, err := ledger.New(ledger.Config{MinDifficulty: 1, MaxDifficulty: 41}); !errors.Is(err, ledger.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a range longer than a sha1 digest, got %v.", failed, testID, err)
			}
			if _, err := ledger.New(ledger.Config{MinDifficulty: 1, MaxDifficulty: 40}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept a range up to the sha1 digest length: %s", failed, testID, err)
			}
			if _, err := ledger.New(ledger.Config{Oracle: pow.MustNew(pow.SHA256), MinDifficulty: 1, MaxDifficulty: 64}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept a range up to the sha256 digest length: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould only accept ranges that fit in the digest.", success, testID)

			if _, err := l.Create(41); !errors.Is(err, ledger.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a difficulty that can never be solved, got %v.", failed, testID, err)
			}
			if l.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not store a rejected transaction, got %d.", failed, testID, l.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould reject a difficulty that can never be solved.", success, testID)
		}
	}
}

// returnsWithin reports if f returns before the duration elapses.
func returnsWithin(d time.Duration, f func()) bool {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func TestEventsOutsideLock(t *testing.T) {
	t.Log("Given the need to keep the ledger available while events are handled.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the event handler blocks.", testID)
		{
			entered := make(chan struct{}, 10)
			release := make(chan struct{})

			l, err := ledger.New(ledger.Config{
				EvHandler: func(v string, args ...any) {
					entered <- struct{}{}
					<-release
				},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a ledger: %s", failed, testID, err)
			}

			go l.Create(1)
			<-entered

			if !returnsWithin(time.Second, func() { l.Count() }) {
				close(release)
				t.Fatalf("\t%s\tTest %d:\tShould not hold the lock while a create event is handled.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not hold the lock while a create event is handled.", success, testID)

			solved := make(chan ledger.Outcome, 1)
			go func() {
				solved <- l.TrySolve(0, 1, solve(1, 0, 1, 0))
			}()
			<-entered

			if !returnsWithin(time.Second, func() { l.Get(0) }) {
				close(release)
				t.Fatalf("\t%s\tTest %d:\tShould not hold the lock while a solve event is handled.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not hold the lock while a solve event is handled.", success, testID)

			close(release)
			if out := <-solved; out != ledger.Accepted {
				t.Fatalf("\t%s\tTest %d:\tShould accept the solution, got %s.", failed, testID, out)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the solution once the handler returns.", success, testID)
		}
	}
}
