package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
)

// RecordTTL is how long a cached response stays replayable. Fixed; there is
// no per-endpoint override.
const RecordTTL = 24 * time.Hour

// CheckResult is the outcome of an idempotency lookup. When IsDuplicate is
// true the cached response must be returned verbatim and the underlying
// operation must not run again.
type CheckResult struct {
	IsDuplicate  bool
	CachedBody   []byte
	CachedStatus int
}

type IdempotencyGuard interface {
	Check(key, endpoint string, body []byte) (*CheckResult, error)
	Store(key, endpoint string, body []byte, response []byte, status int) error
	CleanupExpired() (int64, error)
	StartSweeper(ctx context.Context, interval time.Duration)
}

type idempotencyGuard struct {
	repo repository.IdempotencyRepository
	now  func() time.Time
}

func NewIdempotencyGuard(repo repository.IdempotencyRepository) IdempotencyGuard {
	return &idempotencyGuard{repo: repo, now: time.Now}
}

// Fingerprint hashes the canonicalized request body. Canonicalization
// round-trips the JSON through a generic decode so that map keys re-encode
// sorted; field order in the wire body never affects the hash. Non-JSON
// bodies hash as raw bytes.
func Fingerprint(body []byte) string {
	canonical := body
	if len(body) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(body, &decoded); err == nil {
			if encoded, err := json.Marshal(decoded); err == nil {
				canonical = encoded
			}
		}
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func (g *idempotencyGuard) Check(key, endpoint string, body []byte) (*CheckResult, error) {
	record, err := g.repo.GetByKey(key, g.now())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &CheckResult{IsDuplicate: false}, nil
	}
	if record.Fingerprint != Fingerprint(body) {
		// Same key, different body: the client reused a key across two
		// distinct logical actions. Never replay, never re-execute.
		return nil, apperrors.Conflict(key)
	}
	return &CheckResult{
		IsDuplicate:  true,
		CachedBody:   record.ResponseBody,
		CachedStatus: record.StatusCode,
	}, nil
}

// Store caches the response under the key. Losing a first-writer race is a
// no-op: the caller's own execution result is still valid for its caller.
func (g *idempotencyGuard) Store(key, endpoint string, body []byte, response []byte, status int) error {
	now := g.now()
	return g.repo.Insert(&models.IdempotencyRecord{
		Key:          key,
		Endpoint:     endpoint,
		Fingerprint:  Fingerprint(body),
		ResponseBody: response,
		StatusCode:   status,
		CreatedAt:    now,
		ExpiresAt:    now.Add(RecordTTL),
	})
}

func (g *idempotencyGuard) CleanupExpired() (int64, error) {
	return g.repo.DeleteExpired(g.now())
}

// StartSweeper runs the expiry sweep on a ticker until the context is done.
func (g *idempotencyGuard) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := g.CleanupExpired()
				if err != nil {
					log.Printf("Warning: idempotency sweep failed: %v", err)
					continue
				}
				if count > 0 {
					log.Printf("Idempotency sweep removed %d expired records", count)
				}
			}
		}
	}()
}
