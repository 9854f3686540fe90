package coordinator_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/ardanlabs/powcontest/foundation/contest/pow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newCoordinator(t *testing.T, genesis int, reg prometheus.Registerer) *coordinator.Coordinator {
	l, err := ledger.New(ledger.Config{})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a ledger: %s", failed, err)
	}

	c, err := coordinator.New(coordinator.Config{
		Ledger:            l,
		GenesisDifficulty: genesis,
		Registerer:        reg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a coordinator: %s", failed, err)
	}

	return c
}

func solve(client ledger.ClientID, id ledger.TxID, difficulty int) string {
	for nonce := 0; ; nonce++ {
		candidate := fmt.Sprintf("%d-%d-%d", client, id, nonce)
		if pow.MeetsDifficulty(candidate, difficulty) {
			return candidate
		}
	}
}

func TestEndToEnd(t *testing.T) {
	const clientA, clientB = ledger.ClientID(11), ledger.ClientID(22)

	t.Log("Given the need for two clients to compete for a transaction.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen client A solves txid 0 first.", testID)
		{
			c := newCoordinator(t, 2, nil)

			id := c.Assign()
			if id != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould be assigned txid 0, got %d.", failed, testID, id)
			}
			t.Logf("\t%s\tTest %d:\tShould be assigned txid 0.", success, testID)

			difficulty, ok := c.Challenge(id)
			if !ok || difficulty != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get difficulty 2, got %d %v.", failed, testID, difficulty, ok)
			}
			t.Logf("\t%s\tTest %d:\tShould get difficulty 2.", success, testID)

			candidate := solve(clientA, id, difficulty)
			if out := c.Submit(id, clientA, candidate); out.Code() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould get result 1 for client A, got %d.", failed, testID, out.Code())
			}
			t.Logf("\t%s\tTest %d:\tShould get result 1 for client A.", success, testID)

			if out := c.Submit(id, clientB, solve(clientB, id, difficulty)); out.Code() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get result 2 for client B, got %d.", failed, testID, out.Code())
			}
			t.Logf("\t%s\tTest %d:\tShould get result 2 for client B.", success, testID)

			if s := c.Status(id); s.Code() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get status 0, got %d.", failed, testID, s.Code())
			}
			t.Logf("\t%s\tTest %d:\tShould get status 0.", success, testID)

			if w := c.WinnerOf(id); w.Code() != int64(clientA) {
				t.Fatalf("\t%s\tTest %d:\tShould get client A as winner, got %d.", failed, testID, w.Code())
			}
			t.Logf("\t%s\tTest %d:\tShould get client A as winner.", success, testID)

			si := c.SolutionOf(id)
			if si.Status != coordinator.Solved || si.Solution != candidate || si.DifficultyCode() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get the solution details, got %+v.", failed, testID, si)
			}
			t.Logf("\t%s\tTest %d:\tShould get the solution details.", success, testID)

			next := c.Assign()
			if next != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould be assigned txid 1, got %d.", failed, testID, next)
			}
			if s := c.Status(next); s != coordinator.Pending {
				t.Fatalf("\t%s\tTest %d:\tShould get a pending txid 1, got %s.", failed, testID, s)
			}
			t.Logf("\t%s\tTest %d:\tShould be assigned a new pending txid 1.", success, testID)

			if n := len(c.Transactions()); n != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould have 2 transactions, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould not create extra transactions.", success, testID)
		}
	}
}

func TestGenesis(t *testing.T) {
	t.Log("Given the need to validate the genesis difficulty.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the difficulty doesn't fit in the digest.", testID)
		{
			l, err := ledger.New(ledger.Config{})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a ledger: %s", failed, testID, err)
			}

			for _, genesis := range []int{-1, 41} {
				_, err := coordinator.New(coordinator.Config{Ledger: l, GenesisDifficulty: genesis})
				if !errors.Is(err, ledger.ErrInvalidDifficulty) {
					t.Fatalf("\t%s\tTest %d:\tShould reject genesis difficulty %d, got %v.", failed, testID, genesis, err)
				}
			}
			if l.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not create a transaction, got %d.", failed, testID, l.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould reject difficulties that can never be solved.", success, testID)

			c, err := coordinator.New(coordinator.Config{Ledger: l, GenesisDifficulty: 40})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept the full digest length: %s", failed, testID, err)
			}
			if d, _ := c.Challenge(0); d != 40 {
				t.Fatalf("\t%s\tTest %d:\tShould create txid 0 with difficulty 40, got %d.", failed, testID, d)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the full digest length.", success, testID)
		}
	}
}

func TestUnknown(t *testing.T) {
	t.Log("Given the need to ask about transactions that don't exist.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen asking about txid 42.", testID)
		{
			c := newCoordinator(t, 0, nil)

			if d, ok := c.Challenge(42); ok || d != -1 {
				t.Fatalf("\t%s\tTest %d:\tShould get -1 for the challenge, got %d.", failed, testID, d)
			}
			if s := c.Status(42); s.Code() != -1 {
				t.Fatalf("\t%s\tTest %d:\tShould get -1 for the status, got %d.", failed, testID, s.Code())
			}
			if out := c.Submit(42, 1, "x"); out.Code() != -1 {
				t.Fatalf("\t%s\tTest %d:\tShould get -1 for the submit, got %d.", failed, testID, out.Code())
			}
			if w := c.WinnerOf(42); w.Code() != -1 {
				t.Fatalf("\t%s\tTest %d:\tShould get -1 for the winner, got %d.", failed, testID, w.Code())
			}
			si := c.SolutionOf(42)
			if si.Status.Code() != -1 || si.DifficultyCode() != -1 || si.Solution != "" {
				t.Fatalf("\t%s\tTest %d:\tShould get -1 for the solution, got %+v.", failed, testID, si)
			}
			t.Logf("\t%s\tTest %d:\tShould get -1 from every operation.", success, testID)

			if w := c.WinnerOf(0); w.Code() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get 0 as winner of an open transaction, got %d.", failed, testID, w.Code())
			}
			t.Logf("\t%s\tTest %d:\tShould get 0 as winner of an open transaction.", success, testID)
		}
	}
}

func TestRace(t *testing.T) {
	t.Log("Given the need for many clients to race on the same transaction.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen 16 clients submit valid candidates together.", testID)
		{
			reg := prometheus.NewRegistry()
			c := newCoordinator(t, 1, reg)

			const clients = 16
			results := make(chan int, clients)

			var wg sync.WaitGroup
			wg.Add(clients)
			for i := 1; i <= clients; i++ {
				go func(client ledger.ClientID) {
					defer wg.Done()
					candidate := solve(client, 0, 1)
					results <- c.Submit(0, client, candidate).Code()

					// The solved flag must never revert once observed.
					if c.Status(0) != coordinator.Solved {
						results <- -99
					}
				}(ledger.ClientID(i))
			}
			wg.Wait()
			close(results)

			var accepted int
			for r := range results {
				switch r {
				case 1:
					accepted++
				case 2:
				default:
					t.Fatalf("\t%s\tTest %d:\tShould only get results 1 or 2, got %d.", failed, testID, r)
				}
			}
			if accepted != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have exactly one accepted submission, got %d.", failed, testID, accepted)
			}
			t.Logf("\t%s\tTest %d:\tShould have exactly one accepted submission.", success, testID)

			w := c.WinnerOf(0)
			si := c.SolutionOf(0)
			if w.Status != coordinator.Solved || si.Solution != solve(w.ClientID, 0, 1) {
				t.Fatalf("\t%s\tTest %d:\tShould store the winner's own candidate, got %+v %+v.", failed, testID, w, si)
			}
			t.Logf("\t%s\tTest %d:\tShould store the winner's own candidate.", success, testID)

			if v := testutil.ToFloat64(c.MetricSubmissions("accepted")); v != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould count one accepted submission, got %v.", failed, testID, v)
			}
			if v := testutil.ToFloat64(c.MetricSubmissions("already-solved")); v != clients-1 {
				t.Fatalf("\t%s\tTest %d:\tShould count %d already solved submissions, got %v.", failed, testID, clients-1, v)
			}
			t.Logf("\t%s\tTest %d:\tShould count the submissions by outcome.", success, testID)

			if id := c.Assign(); id != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould be assigned the pre-provisioned txid 1, got %d.", failed, testID, id)
			}
			t.Logf("\t%s\tTest %d:\tShould be assigned the pre-provisioned txid 1.", success, testID)
		}
	}
}
