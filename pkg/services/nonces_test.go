package services

import (
	"errors"
	"testing"
	"time"

	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/helpers"
)

func TestNonceManager(t *testing.T) {
	log := helpers.SetupLogger(config.Info, "Test Case", "Nonces")

	t.Run("OK/IssueAndVerifyConsumes", func(t *testing.T) {
		manager := NewNonceManager(log, time.Minute, 10)

		nonce, err := manager.Issue("session-1", NonceOpRevoke, "0x64")
		if err != nil {
			t.Fatalf("could not issue nonce: %s", err)
		}

		err = manager.Verify("session-1", NonceOpRevoke, "0x64", nonce)
		if err != nil {
			t.Fatalf("first verification should pass: %s", err)
		}

		err = manager.Verify("session-1", NonceOpRevoke, "0x64", nonce)
		if !errors.Is(err, errs.ErrNonceNotFound) {
			t.Fatalf("replayed nonce should fail with ErrNonceNotFound, got: %s", err)
		}
	})

	t.Run("Err/Mismatch", func(t *testing.T) {
		manager := NewNonceManager(log, time.Minute, 10)

		nonce, err := manager.Issue("session-1", NonceOpRevoke, "0x64")
		if err != nil {
			t.Fatalf("could not issue nonce: %s", err)
		}

		err = manager.Verify("session-1", NonceOpRevoke, "0x64", nonce+1)
		if !errors.Is(err, errs.ErrNonceMismatch) {
			t.Fatalf("wrong nonce should fail with ErrNonceMismatch, got: %s", err)
		}

		// a mismatch does not consume the stored nonce
		err = manager.Verify("session-1", NonceOpRevoke, "0x64", nonce)
		if err != nil {
			t.Fatalf("correct nonce should still verify after a mismatch: %s", err)
		}
	})

	t.Run("Err/NeverIssued", func(t *testing.T) {
		manager := NewNonceManager(log, time.Minute, 10)

		err := manager.Verify("session-1", NonceOpApprove, "req-1", 42)
		if !errors.Is(err, errs.ErrNonceNotFound) {
			t.Fatalf("verification without issuance should fail with ErrNonceNotFound, got: %s", err)
		}
	})

	t.Run("OK/ScopedSlots", func(t *testing.T) {
		manager := NewNonceManager(log, time.Minute, 10)

		revokeNonce, _ := manager.Issue("session-1", NonceOpRevoke, "0x64")
		unrevokeNonce, _ := manager.Issue("session-1", NonceOpUnrevoke, "0x64")

		err := manager.Verify("session-1", NonceOpUnrevoke, "0x64", revokeNonce)
		if err == nil {
			t.Fatalf("nonce issued for another operation should not verify")
		}

		err = manager.Verify("session-1", NonceOpUnrevoke, "0x64", unrevokeNonce)
		if err != nil {
			t.Fatalf("nonce for the matching operation should verify: %s", err)
		}
	})

	t.Run("OK/ReissueReplaces", func(t *testing.T) {
		manager := NewNonceManager(log, time.Minute, 10)

		first, _ := manager.Issue("session-1", NonceOpRevoke, "0x64")
		second, _ := manager.Issue("session-1", NonceOpRevoke, "0x64")

		err := manager.Verify("session-1", NonceOpRevoke, "0x64", first)
		if err == nil && first != second {
			t.Fatalf("reissuing should invalidate the previous nonce")
		}

		if first != second {
			err = manager.Verify("session-1", NonceOpRevoke, "0x64", second)
			if err != nil {
				t.Fatalf("latest issued nonce should verify: %s", err)
			}
		}
	})

	t.Run("OK/SessionCapEvictsOldest", func(t *testing.T) {
		manager := NewNonceManager(log, time.Minute, 2)

		oldest, _ := manager.Issue("session-1", NonceOpRevoke, "0x01")
		second, _ := manager.Issue("session-1", NonceOpRevoke, "0x02")
		third, _ := manager.Issue("session-1", NonceOpRevoke, "0x03")

		err := manager.Verify("session-1", NonceOpRevoke, "0x01", oldest)
		if !errors.Is(err, errs.ErrNonceNotFound) {
			t.Fatalf("slot over the session cap should be evicted, got: %s", err)
		}

		if err := manager.Verify("session-1", NonceOpRevoke, "0x02", second); err != nil {
			t.Fatalf("second slot should survive: %s", err)
		}

		if err := manager.Verify("session-1", NonceOpRevoke, "0x03", third); err != nil {
			t.Fatalf("third slot should survive: %s", err)
		}

		// other sessions are not affected by session-1's cap
		otherNonce, _ := manager.Issue("session-2", NonceOpRevoke, "0x01")
		if err := manager.Verify("session-2", NonceOpRevoke, "0x01", otherNonce); err != nil {
			t.Fatalf("unrelated session should verify: %s", err)
		}
	})
}
