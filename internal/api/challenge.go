package api

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"sync"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// challengeTTL bounds how long a nonce issued by GET /auth/challenge
// stays redeemable, closing the window for a captured-but-unused
// challenge to be replayed later.
const challengeTTL = 2 * time.Minute

type pendingChallenge struct {
	nonce     string
	issuedAt  time.Time
}

// challengeStore holds outstanding RSA login nonces in memory, keyed by
// handle. A restart invalidates every pending challenge, which is fine:
// clients just request a fresh one.
type challengeStore struct {
	mu    sync.Mutex
	byKey map[string]pendingChallenge
}

func newChallengeStore() *challengeStore {
	return &challengeStore{byKey: make(map[string]pendingChallenge)}
}

func (c *challengeStore) issue(handle string, now time.Time) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	nonce := base64.RawURLEncoding.EncodeToString(buf)

	c.mu.Lock()
	c.byKey[handle] = pendingChallenge{nonce: nonce, issuedAt: now}
	c.mu.Unlock()
	return nonce, nil
}

func (c *challengeStore) redeem(handle string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, ok := c.byKey[handle]
	if !ok {
		return "", false
	}
	delete(c.byKey, handle)
	if now.Sub(pending.issuedAt) > challengeTTL {
		return "", false
	}
	return pending.nonce, true
}

// verifyRSAChallenge checks signature (base64-encoded PKCS1v15 over the
// SHA-256 digest of nonce) against any of the user's registered public
// keys, returning true on the first match.
func verifyRSAChallenge(pemKeys []string, nonce, signatureB64 string) bool {
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	digest := sha256.Sum256([]byte(nonce))

	for _, keyPEM := range pemKeys {
		block, _ := pem.Decode([]byte(keyPEM))
		if block == nil {
			continue
		}
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			continue
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			continue
		}
		if rsa.VerifyPKCS1v15(rsaPub, 0, digest[:], signature) == nil {
			return true
		}
	}
	return false
}

var errChallengeExpired = apierr.Unauthorized("challenge expired or not found")
