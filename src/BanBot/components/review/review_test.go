package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/BanBot/components/session"
	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
)

// memLedger is an in-memory stand-in for the ban store.
type memLedger struct {
	records []ledger.BanRecord
	nextID  uint
	addErr  error
}

func (m *memLedger) AddBan(p ledger.AddParams) (string, error) {
	if m.addErr != nil {
		return "", m.addErr
	}
	m.nextID++
	number := fmt.Sprintf("%04d", m.nextID)
	if p.IsUnban {
		number = fmt.Sprintf("UNBAN-%04d", m.nextID)
	}
	m.records = append(m.records, ledger.BanRecord{
		ID:           m.nextID,
		BanNumber:    number,
		PlayerName:   p.PlayerName,
		BUID:         p.BUID,
		Offense:      p.Offense,
		Strike:       p.Strike,
		Sanction:     p.Sanction,
		Transcript:   p.Transcript,
		SubmittedBy:  p.SubmittedBy,
		IsUnban:      p.IsUnban,
		RelatedBanID: p.RelatedBanID,
	})
	return number, nil
}

func (m *memLedger) RemoveStrike(banNumber string) (bool, error) {
	for i := range m.records {
		if m.records[i].BanNumber == banNumber && !m.records[i].IsUnban {
			m.records[i].StrikeRemoved = true
			return true, nil
		}
	}
	return false, nil
}

type allowList map[string]bool

func (a allowList) IsAuthorized(actorID string) bool { return a[actorID] }

type captureSink struct {
	events []map[string]interface{}
}

func (c *captureSink) PublishDecision(_ context.Context, payload map[string]interface{}) error {
	c.events = append(c.events, payload)
	return nil
}

func banSubmission() workflow.Submission {
	return workflow.Submission{
		PlayerName:  "Smith",
		BUID:        "buid-1",
		Offense:     "Cheating",
		Strike:      "Strike 1",
		Sanction:    "Permanent Ban",
		Transcript:  "N/A (No transcripts found)",
		SubmittedBy: "staff-1",
	}
}

func TestApproveWritesLedgerOnce(t *testing.T) {
	store := &memLedger{}
	sink := &captureSink{}
	gate := NewGate(store, allowList{"mod-1": true}, sink)

	id := gate.Register(banSubmission())
	decision, err := gate.Approve(context.Background(), id, "mod-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if decision.BanNumber != "0001" {
		t.Fatalf("got ban number %q", decision.BanNumber)
	}
	if len(store.records) != 1 {
		t.Fatalf("got %d records", len(store.records))
	}
	rec := store.records[0]
	if rec.Strike != "Strike 1" || rec.Sanction != "Permanent Ban" || rec.IsUnban {
		t.Fatalf("got %+v", rec)
	}

	// Single use.
	if _, err := gate.Approve(context.Background(), id, "mod-1"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second approve: %v", err)
	}
	if len(sink.events) != 1 || sink.events[0]["action"] != "approved" {
		t.Fatalf("events: %+v", sink.events)
	}
}

func TestApproveUnauthorized(t *testing.T) {
	store := &memLedger{}
	gate := NewGate(store, allowList{}, nil)

	id := gate.Register(banSubmission())
	if _, err := gate.Approve(context.Background(), id, "rando"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("unauthorized approve wrote to the ledger")
	}
	// Payload still pending for a real moderator.
	if _, ok := gate.Get(id); !ok {
		t.Fatal("payload consumed by unauthorized attempt")
	}
}

func TestApproveFailureLeavesPayloadRetryable(t *testing.T) {
	store := &memLedger{addErr: errors.New("ledger unavailable")}
	gate := NewGate(store, allowList{"mod-1": true}, nil)

	id := gate.Register(banSubmission())
	if _, err := gate.Approve(context.Background(), id, "mod-1"); err == nil {
		t.Fatal("expected error")
	}

	store.addErr = nil
	decision, err := gate.Approve(context.Background(), id, "mod-1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if decision.BanNumber == "" {
		t.Fatal("retry produced no ban number")
	}
}

func TestApproveUnbanRemovesStrike(t *testing.T) {
	store := &memLedger{}
	original, _ := store.AddBan(ledger.AddParams{
		PlayerName: "Smith", BUID: "buid-1",
		Offense: "Cheating", Strike: "Strike 1", Sanction: "Permanent Ban",
	})
	originalID := store.records[0].ID

	gate := NewGate(store, allowList{"mod-1": true}, nil)
	sub := workflow.Submission{
		PlayerName:  "Smith",
		BUID:        "buid-1",
		Offense:     "UNBAN (Remove Strike)",
		Strike:      "UNBAN",
		Sanction:    "Player Unbanned",
		Transcript:  "Will add later / No Transcript",
		SubmittedBy: "staff-1",
		UnbanData: &session.UnbanData{
			BanNumberToUnban: original,
			RemoveStrike:     true,
			RelatedBanID:     &originalID,
		},
	}
	id := gate.Register(sub)

	decision, err := gate.Approve(context.Background(), id, "mod-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !strings.HasPrefix(decision.BanNumber, "UNBAN-") {
		t.Fatalf("got ban number %q", decision.BanNumber)
	}
	if !strings.Contains(decision.Offense, fmt.Sprintf("(Strike Removed from %s)", original)) {
		t.Fatalf("offense not annotated: %q", decision.Offense)
	}

	if !store.records[0].StrikeRemoved {
		t.Fatal("original ban's strike not removed")
	}
	unban := store.records[1]
	if !unban.IsUnban || unban.Strike != "UNBAN" {
		t.Fatalf("got %+v", unban)
	}
	if unban.RelatedBanID == nil || *unban.RelatedBanID != originalID {
		t.Fatalf("related ban id: %+v", unban.RelatedBanID)
	}
}

func TestApproveUnbanKeepsStrike(t *testing.T) {
	store := &memLedger{}
	original, _ := store.AddBan(ledger.AddParams{
		PlayerName: "Smith", BUID: "buid-1",
		Offense: "Team Killing", Strike: "Strike 2", Sanction: "1 Month Ban",
	})
	originalID := store.records[0].ID

	gate := NewGate(store, allowList{"mod-1": true}, nil)
	id := gate.Register(workflow.Submission{
		PlayerName: "Smith", BUID: "buid-1",
		Offense: "UNBAN (Strike Remains)", Strike: "UNBAN", Sanction: "Player Unbanned",
		Transcript: "N/A (No transcripts found)", SubmittedBy: "staff-1",
		UnbanData: &session.UnbanData{
			BanNumberToUnban: original,
			RemoveStrike:     false,
			RelatedBanID:     &originalID,
		},
	})

	decision, err := gate.Approve(context.Background(), id, "mod-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !strings.Contains(decision.Offense, fmt.Sprintf("(Strike Kept on %s)", original)) {
		t.Fatalf("offense not annotated: %q", decision.Offense)
	}
	if store.records[0].StrikeRemoved {
		t.Fatal("strike removed despite keep-strike unban")
	}
}

func TestApproveUnbanMissingTargetAnnotatesNotRemoved(t *testing.T) {
	store := &memLedger{}
	gate := NewGate(store, allowList{"mod-1": true}, nil)

	id := gate.Register(workflow.Submission{
		PlayerName: "Smith", BUID: "buid-1",
		Offense: "UNBAN (Remove Strike)", Strike: "UNBAN", Sanction: "Player Unbanned",
		Transcript: "N/A (No transcripts found)", SubmittedBy: "staff-1",
		UnbanData: &session.UnbanData{BanNumberToUnban: "9999", RemoveStrike: true},
	})

	decision, err := gate.Approve(context.Background(), id, "mod-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !strings.Contains(decision.Offense, "(Strike NOT Removed from 9999)") {
		t.Fatalf("offense: %q", decision.Offense)
	}
}

func TestEvictStaleDropsExpiredPending(t *testing.T) {
	store := &memLedger{}
	gate := NewGate(store, allowList{"mod-1": true}, nil)

	stale := gate.Register(banSubmission())
	fresh := gate.Register(banSubmission())
	gate.pending[stale].SubmittedAt = time.Now().Add(-pendingTTL - time.Minute)

	if n := gate.evictStale(time.Now()); n != 1 {
		t.Fatalf("evicted %d payloads", n)
	}
	if _, err := gate.Approve(context.Background(), stale, "mod-1"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("stale approve: %v", err)
	}
	if _, err := gate.Approve(context.Background(), fresh, "mod-1"); err != nil {
		t.Fatalf("fresh approve: %v", err)
	}
}

func TestEvictStaleSkipsClaimedPayload(t *testing.T) {
	store := &memLedger{}
	gate := NewGate(store, allowList{"mod-1": true}, nil)

	id := gate.Register(banSubmission())
	gate.pending[id].SubmittedAt = time.Now().Add(-pendingTTL - time.Minute)
	if _, ok := gate.claim(id); !ok {
		t.Fatal("claim failed")
	}

	if n := gate.evictStale(time.Now()); n != 0 {
		t.Fatalf("evicted %d payloads", n)
	}
	gate.release(id)
	if _, ok := gate.Get(id); !ok {
		t.Fatal("claimed payload was evicted")
	}
}

func TestDeny(t *testing.T) {
	store := &memLedger{}
	sink := &captureSink{}
	gate := NewGate(store, allowList{"mod-1": true}, sink)

	id := gate.Register(banSubmission())
	if err := gate.Deny(context.Background(), id, "rando"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v", err)
	}
	if err := gate.Deny(context.Background(), id, "mod-1"); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("deny wrote to the ledger")
	}
	if err := gate.Deny(context.Background(), id, "mod-1"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second deny: %v", err)
	}
	if len(sink.events) != 1 || sink.events[0]["action"] != "denied" {
		t.Fatalf("events: %+v", sink.events)
	}
}
