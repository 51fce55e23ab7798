package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

// GenesisHash is the previous_hash of the first block of a chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Entry describes an administrative action to be recorded on the chain.
type Entry struct {
	SubjectID string
	EventID   int64
	EventName string
	Action    string
	Actor     string
}

// Store persists audit blocks append-only and reports the last stored hash so
// the chain can resume after a restart instead of silently forking.
type Store interface {
	AppendBlock(ctx context.Context, block *models.AuditBlock) error
	LastHash(ctx context.Context) (string, error)
}

// Chain maintains the running hash chain. The tail is guarded by a mutex so
// concurrent appends keep previous_hash linkage intact.
type Chain struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	tail string
}

// NewChain constructs a Chain, resuming from the last persisted block. An
// empty store starts at the genesis hash.
func NewChain(ctx context.Context, store Store, logger *zap.Logger) (*Chain, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tail := GenesisHash
	if store != nil {
		last, err := store.LastHash(ctx)
		if err != nil {
			return nil, err
		}
		if last != "" {
			tail = last
		}
	}
	return &Chain{store: store, logger: logger, now: time.Now, tail: tail}, nil
}

// Append records an entry as a new block, advances the tail and returns the
// block hash for storage alongside the business record. Hashing itself cannot
// fail; a failed block persist is logged and does not abort the caller's
// workflow, mirroring the availability-first policy of the secondary store.
func (c *Chain) Append(ctx context.Context, e Entry) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := models.AuditBlock{
		Timestamp:    c.now().UTC().Format(time.RFC3339Nano),
		SubjectID:    e.SubjectID,
		EventID:      e.EventID,
		EventName:    e.EventName,
		Action:       e.Action,
		Actor:        e.Actor,
		PreviousHash: c.tail,
	}
	block.Hash = ComputeHash(block)

	if c.store != nil {
		if err := c.store.AppendBlock(ctx, &block); err != nil {
			c.logger.Warn("failed to persist audit block",
				zap.String("subject_id", e.SubjectID),
				zap.String("action", e.Action),
				zap.Error(err))
		}
	}

	c.tail = block.Hash
	c.logger.Info("audit block appended",
		zap.String("subject_id", e.SubjectID),
		zap.Int64("event_id", e.EventID),
		zap.String("action", e.Action),
		zap.String("hash", block.Hash[:16]))

	return block.Hash, nil
}

// Tail returns the current chain tail hash.
func (c *Chain) Tail() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tail
}

// canonicalBlock fixes the serialized field order for hashing. Keys are
// sorted alphabetically and the declaration order below must not change,
// otherwise historical hashes stop verifying.
type canonicalBlock struct {
	Action       string `json:"action"`
	Actor        string `json:"actor"`
	EventID      int64  `json:"event_id"`
	EventName    string `json:"event_name"`
	PreviousHash string `json:"previous_hash"`
	SubjectID    string `json:"subject_id"`
	Timestamp    string `json:"timestamp"`
}

// ComputeHash returns the SHA-256 digest of the canonical serialization of a
// block's fields, excluding Hash itself.
func ComputeHash(b models.AuditBlock) string {
	payload, _ := json.Marshal(canonicalBlock{
		Action:       b.Action,
		Actor:        b.Actor,
		EventID:      b.EventID,
		EventName:    b.EventName,
		PreviousHash: b.PreviousHash,
		SubjectID:    b.SubjectID,
		Timestamp:    b.Timestamp,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Verify recomputes a block's hash and compares it against the expected
// value. It checks structural integrity of a single block only and never
// consults the chain tail, so stored audit hashes remain verifiable even
// across historic chain restarts.
func Verify(b models.AuditBlock, expected string) bool {
	return ComputeHash(b) == expected
}
