package services

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/errs"
)

// Operation tags scoping nonces: the same session may hold one nonce per
// (operation, serial) pair.
const (
	NonceOpRevoke   = "cert-revoke"
	NonceOpUnrevoke = "cert-unrevoke"
	NonceOpApprove  = "request-approve"
	NonceOpReject   = "request-reject"
	NonceOpCancel   = "request-cancel"
)

// NonceManager hands out single-use 64-bit anti-replay tokens scoped to a
// session and operation. Entries expire with the session TTL; verification
// consumes the nonce (check then delete). Each session holds at most
// maxPerSession live slots; issuing past the cap evicts the oldest slot.
type NonceManager struct {
	logger        *logrus.Entry
	store         *cache.Cache
	maxPerSession int

	mu    sync.Mutex
	slots map[string][]string
}

func NewNonceManager(logger *logrus.Entry, ttl time.Duration, maxPerSession int) *NonceManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	if maxPerSession <= 0 {
		maxPerSession = 100
	}

	return &NonceManager{
		logger:        logger,
		store:         cache.New(ttl, 2*ttl),
		maxPerSession: maxPerSession,
		slots:         map[string][]string{},
	}
}

func nonceKey(sessionID, operation, key string) string {
	return fmt.Sprintf("%s|%s|%s", sessionID, operation, key)
}

// Issue generates a fresh nonce for the (session, operation, key) slot,
// replacing any previous one.
func (m *NonceManager) Issue(sessionID, operation, key string) (int64, error) {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("could not generate nonce: %w", err)
	}

	nonce := int64(binary.BigEndian.Uint64(buf[:]))
	slot := nonceKey(sessionID, operation, key)

	m.mu.Lock()
	if _, replacing := m.store.Get(slot); !replacing {
		live := m.slots[sessionID]
		if len(live) >= m.maxPerSession {
			evicted := live[0]
			live = live[1:]
			m.store.Delete(evicted)
			m.logger.Warnf("nonce limit reached for session, evicting oldest slot")
		}
		m.slots[sessionID] = append(live, slot)
	}
	m.store.Set(slot, nonce, cache.DefaultExpiration)
	m.mu.Unlock()

	return nonce, nil
}

// Verify checks the presented nonce against the issued one and deletes it on
// match. A consumed or never-issued nonce fails with ErrNonceNotFound.
func (m *NonceManager) Verify(sessionID, operation, key string, nonce int64) error {
	slot := nonceKey(sessionID, operation, key)

	stored, found := m.store.Get(slot)
	if !found {
		return errs.ErrNonceNotFound
	}

	if stored.(int64) != nonce {
		m.logger.Warnf("nonce mismatch for operation %s", operation)
		return errs.ErrNonceMismatch
	}

	m.store.Delete(slot)

	m.mu.Lock()
	live := m.slots[sessionID]
	for i, s := range live {
		if s == slot {
			m.slots[sessionID] = append(live[:i], live[i+1:]...)
			break
		}
	}
	if len(m.slots[sessionID]) == 0 {
		delete(m.slots, sessionID)
	}
	m.mu.Unlock()

	return nil
}
