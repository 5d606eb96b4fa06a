package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "trustledger/pkg/domain"
)

func sample() Credential {
	var issuer id.Address
	issuer[19] = 0xAA
	return Credential{
		Namespace:     1,
		Issuer:        issuer,
		Subject:       "did:tl:42",
		IssuedAt:      time.Unix(1700000000, 0),
		ExpiresAt:     time.Unix(1800000000, 0),
		PayloadDigest: DigestBytes([]byte(`{"degree":"BSc"}`)),
	}
}

func TestHash_Deterministic(t *testing.T) {
	a, b := sample(), sample()
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestHash_SensitiveToEveryField(t *testing.T) {
	base := sample()

	mutations := map[string]func(*Credential){
		"namespace": func(c *Credential) { c.Namespace = 2 },
		"issuer":    func(c *Credential) { c.Issuer[0] = 0xFF },
		"subject":   func(c *Credential) { c.Subject = "did:tl:43" },
		"issuedAt":  func(c *Credential) { c.IssuedAt = c.IssuedAt.Add(time.Second) },
		"expiresAt": func(c *Credential) { c.ExpiresAt = c.ExpiresAt.Add(time.Second) },
		"payload":   func(c *Credential) { c.PayloadDigest = DigestBytes([]byte(`{"degree":"MSc"}`)) },
	}

	for field, mutate := range mutations {
		c := sample()
		mutate(&c)
		assert.NotEqual(t, base.Hash(), c.Hash(), "mutating %s must change the hash", field)
	}
}

func TestCanonicalBytes_NoDelimiterAmbiguity(t *testing.T) {
	// Subject is length-prefixed, so a subject that happens to contain what
	// looks like another field cannot collide.
	a := sample()
	a.Subject = "ab"
	b := sample()
	b.Subject = "a"
	assert.NotEqual(t, a.Hash(), b.Hash())
}
