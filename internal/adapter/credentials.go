package adapter

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoCredentials is returned when a pool is constructed empty.
var ErrNoCredentials = errors.New("no credentials configured")

const (
	// cooldownSlack is added when every key is cooling down, so the caller
	// wakes slightly after the earliest key frees up.
	cooldownSlack = 2 * time.Second

	maxCredentialWaits = 5
)

// CredentialPool round-robins a small set of API keys and tracks per-key
// cooldowns. A quota-exhausted key is marked unavailable until a future
// timestamp; Next blocks only when every key is cooling down, and waits a
// bounded number of times rather than retrying forever.
type CredentialPool struct {
	mu        sync.Mutex
	keys      []string
	idx       int
	cooldowns map[string]time.Time
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewCredentialPool builds a pool over the given keys; empty strings are
// dropped.
func NewCredentialPool(keys []string) *CredentialPool {
	p := &CredentialPool{
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
		sleep:     sleepCtx,
	}
	for _, k := range keys {
		if k != "" {
			p.keys = append(p.keys, k)
		}
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Next returns the next usable key, advancing the round-robin index. When all
// keys are cooling down it sleeps until the earliest cooldown expires and
// retries, up to a fixed ceiling.
func (p *CredentialPool) Next(ctx context.Context) (string, error) {
	for attempt := 0; attempt <= maxCredentialWaits; attempt++ {
		key, wait, err := p.pick()
		if err != nil {
			return "", err
		}
		if key != "" {
			return key, nil
		}
		if err := p.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", errors.New("all credentials cooling down after max waits")
}

// pick returns a usable key, or the wait until the earliest cooldown expiry
// when none is usable right now.
func (p *CredentialPool) pick() (string, time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", 0, ErrNoCredentials
	}

	now := p.now()
	for i := 0; i < len(p.keys); i++ {
		idx := (p.idx + i) % len(p.keys)
		key := p.keys[idx]
		if until, ok := p.cooldowns[key]; ok && until.After(now) {
			continue
		}
		p.idx = (idx + 1) % len(p.keys)
		return key, 0, nil
	}

	earliest := p.cooldowns[p.keys[0]]
	for _, k := range p.keys[1:] {
		if until := p.cooldowns[k]; until.Before(earliest) {
			earliest = until
		}
	}
	wait := earliest.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return "", wait + cooldownSlack, nil
}

// MarkCooldown makes key unavailable until now+d.
func (p *CredentialPool) MarkCooldown(key string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cooldowns[key] = p.now().Add(d)
}

// Size returns the number of configured keys.
func (p *CredentialPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
