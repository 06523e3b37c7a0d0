// Package review is the moderation gate between a submitted ban form and
// the ledger. Submissions wait as pending payloads until an authorized
// moderator approves or denies them; approval is the only path that writes
// a ban record.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
)

var (
	// ErrUnauthorized means the actor lacks the moderator credential. No
	// state changes.
	ErrUnauthorized = errors.New("not authorized to review submissions")

	// ErrNotPending means the payload id is unknown or already decided.
	ErrNotPending = errors.New("submission is not pending")
)

// pendingTTL bounds how long an undecided payload is held. A review message
// nobody acts on would otherwise keep its payload for the process lifetime.
const pendingTTL = 24 * time.Hour

// Ledger is the write surface the gate needs.
type Ledger interface {
	AddBan(p ledger.AddParams) (string, error)
	RemoveStrike(banNumber string) (bool, error)
}

// Authorizer checks the moderator credential of an actor.
type Authorizer interface {
	IsAuthorized(actorID string) bool
}

// EventSink receives decision events. Optional; a nil sink disables
// publishing.
type EventSink interface {
	PublishDecision(ctx context.Context, payload map[string]interface{}) error
}

// Pending is one submission awaiting a decision.
type Pending struct {
	ID          string
	Submission  workflow.Submission
	SubmittedAt time.Time

	// claimed marks a payload a moderator is currently acting on, so two
	// racing decisions cannot both write. Released again if the ledger
	// write fails.
	claimed bool
}

// Decision is the result of an approval.
type Decision struct {
	BanNumber string
	Offense   string // offense text as recorded, including any strike note
	ActorID   string
}

// Gate holds pending payloads and applies moderator decisions exactly once
// each.
type Gate struct {
	ledger Ledger
	auth   Authorizer
	events EventSink

	mu      sync.Mutex
	pending map[string]*Pending
}

func NewGate(store Ledger, auth Authorizer, events EventSink) *Gate {
	return &Gate{
		ledger:  store,
		auth:    auth,
		events:  events,
		pending: make(map[string]*Pending),
	}
}

// Register stores a submission for review and returns its payload id.
func (g *Gate) Register(sub workflow.Submission) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := uuid.NewString()
	g.pending[id] = &Pending{
		ID:          id,
		Submission:  sub,
		SubmittedAt: time.Now(),
	}
	return id
}

// Get returns a snapshot of a pending payload.
func (g *Gate) Get(id string) (Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[id]
	if !ok {
		return Pending{}, false
	}
	return *p, true
}

// claim marks the payload in flight; a second claim fails until release.
func (g *Gate) claim(id string) (workflow.Submission, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[id]
	if !ok || p.claimed {
		return workflow.Submission{}, false
	}
	p.claimed = true
	return p.Submission, true
}

func (g *Gate) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pending[id]; ok {
		p.claimed = false
	}
}

// Approve finalizes a submission into the ledger. For unbans it first
// applies the strike disposition to the original ban and annotates the
// offense text with the outcome. A ledger failure leaves the payload
// pending so the decision can be retried rather than lost.
func (g *Gate) Approve(ctx context.Context, id, actorID string) (Decision, error) {
	if !g.auth.IsAuthorized(actorID) {
		return Decision{}, ErrUnauthorized
	}

	sub, ok := g.claim(id)
	if !ok {
		return Decision{}, ErrNotPending
	}

	offense := sub.Offense
	params := ledger.AddParams{
		PlayerName:  sub.PlayerName,
		BUID:        sub.BUID,
		Strike:      sub.Strike,
		Sanction:    sub.Sanction,
		Transcript:  sub.Transcript,
		SubmittedBy: sub.SubmittedBy,
	}

	if sub.IsUnban() {
		target := sub.UnbanData.BanNumberToUnban
		if sub.UnbanData.RemoveStrike {
			removed, err := g.ledger.RemoveStrike(target)
			if err != nil {
				g.release(id)
				return Decision{}, fmt.Errorf("remove strike from %s: %w", target, err)
			}
			if removed {
				offense += fmt.Sprintf(" (Strike Removed from %s)", target)
			} else {
				offense += fmt.Sprintf(" (Strike NOT Removed from %s)", target)
			}
		} else {
			offense += fmt.Sprintf(" (Strike Kept on %s)", target)
		}
		params.IsUnban = true
		params.RelatedBanID = sub.UnbanData.RelatedBanID
	}
	params.Offense = offense

	banNumber, err := g.ledger.AddBan(params)
	if err != nil {
		// Payload stays pending so the moderator can retry.
		g.release(id)
		return Decision{}, fmt.Errorf("record decision for %s: %w", sub.PlayerName, err)
	}

	g.finalize(id)
	g.publish(ctx, map[string]interface{}{
		"action":     "approved",
		"banNumber":  banNumber,
		"player":     sub.PlayerName,
		"buid":       sub.BUID,
		"isUnban":    sub.IsUnban(),
		"approvedBy": actorID,
	})

	return Decision{BanNumber: banNumber, Offense: offense, ActorID: actorID}, nil
}

// Deny rejects a submission. No ledger write happens; the payload is
// consumed.
func (g *Gate) Deny(ctx context.Context, id, actorID string) error {
	if !g.auth.IsAuthorized(actorID) {
		return ErrUnauthorized
	}

	sub, ok := g.claim(id)
	if !ok {
		return ErrNotPending
	}

	g.finalize(id)
	g.publish(ctx, map[string]interface{}{
		"action":   "denied",
		"player":   sub.PlayerName,
		"buid":     sub.BUID,
		"isUnban":  sub.IsUnban(),
		"deniedBy": actorID,
	})
	return nil
}

func (g *Gate) finalize(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
}

// StartJanitor drops pending payloads older than pendingTTL until ctx is
// done. Expired review messages then answer ErrNotPending.
func (g *Gate) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := g.evictStale(now); n > 0 {
				log.Printf("review: evicted %d expired pending submission(s)", n)
			}
		}
	}
}

// evictStale removes undecided payloads past the TTL. Claimed payloads are
// skipped; a decision in flight finishes on its own terms.
func (g *Gate) evictStale(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for id, p := range g.pending {
		if !p.claimed && now.Sub(p.SubmittedAt) > pendingTTL {
			delete(g.pending, id)
			evicted++
		}
	}
	return evicted
}

func (g *Gate) publish(ctx context.Context, payload map[string]interface{}) {
	if g.events == nil {
		return
	}
	if err := g.events.PublishDecision(ctx, payload); err != nil {
		// The decision is already in the ledger; the event is best effort.
		log.Printf("review: publish decision event: %v", err)
	}
}
