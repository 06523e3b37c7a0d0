package workflow

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/BanBot/components/players"
	"github.com/mfl-ops/banbot/src/BanBot/components/policy"
	"github.com/mfl-ops/banbot/src/BanBot/components/session"
	"github.com/mfl-ops/banbot/src/BanBot/components/transcripts"
)

type fakePlayers struct {
	found []players.Player
	err   error
}

func (f *fakePlayers) FindPlayers(term string) ([]players.Player, error) { return f.found, f.err }

type fakeTranscripts struct {
	found []transcripts.Transcript
	err   error
}

func (f *fakeTranscripts) FindTranscripts(keyword string) ([]transcripts.Transcript, error) {
	return f.found, f.err
}

type fakeLedger struct {
	history []ledger.BanRecord
	strikes int
	err     error
}

func (f *fakeLedger) PlayerHistory(buid string) ([]ledger.BanRecord, error) {
	return f.history, f.err
}

func (f *fakeLedger) ActiveStrikeCount(buid string) (int, error) { return f.strikes, f.err }

func newTestEngine(p *fakePlayers, t *fakeTranscripts, l *fakeLedger) *Engine {
	if p == nil {
		p = &fakePlayers{}
	}
	if t == nil {
		t = &fakeTranscripts{}
	}
	if l == nil {
		l = &fakeLedger{}
	}
	return NewEngine(session.NewStore(5*time.Minute), policy.Default(), l, p, t)
}

func twoSmiths() []players.Player {
	return []players.Player{
		{Name: "Smith", Level: 10, LastPlayed: "5H", BUID: "buid-1"},
		{Name: "Smithy", Level: 22, LastPlayed: "1H", BUID: "buid-2"},
	}
}

func TestBeginNoResultsEndsFlow(t *testing.T) {
	e := newTestEngine(&fakePlayers{}, nil, nil)

	prompt, err := e.Begin("u1", "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !prompt.Done {
		t.Fatal("expected a terminal prompt")
	}
	if !strings.Contains(prompt.Content, "ghost") {
		t.Fatalf("content %q does not name the term", prompt.Content)
	}
	if _, err := e.ChoosePlayer("u1", "buid-1"); !errors.Is(err, ErrStateLost) {
		t.Fatalf("expected ErrStateLost after a dead search, got %v", err)
	}
}

func TestBeginLookupErrorDegradesToEmpty(t *testing.T) {
	e := newTestEngine(&fakePlayers{err: errors.New("db down")}, nil, nil)

	prompt, err := e.Begin("u1", "smith")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !prompt.Done {
		t.Fatal("expected a terminal prompt when the lookup fails")
	}
}

// Full pass: search -> candidate 2 -> Cheating -> Strike 1 (fixed sanction,
// no duration pick) -> report transcripts empty -> confirm -> submit.
func TestFixedSanctionFlowEndToEnd(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{})

	prompt, err := e.Begin("u1", "Smith")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if prompt.Step != StepSelectPlayer || len(prompt.Options) != 2 {
		t.Fatalf("got step %s with %d options", prompt.Step, len(prompt.Options))
	}

	prompt, err = e.ChoosePlayer("u1", "buid-2")
	if err != nil {
		t.Fatalf("ChoosePlayer: %v", err)
	}
	if prompt.Step != StepSelectOffense {
		t.Fatalf("got step %s", prompt.Step)
	}

	prompt, err = e.ChooseOffense("u1", "Cheating")
	if err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if prompt.Step != StepSelectStrike {
		t.Fatalf("got step %s", prompt.Step)
	}

	// Cheating / Strike 1 maps to a single fixed sanction, so the duration
	// pick is skipped.
	prompt, err = e.ChooseStrike("u1", "Strike 1")
	if err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}
	if prompt.Step != StepTranscriptType {
		t.Fatalf("got step %s", prompt.Step)
	}

	// No transcripts in report channels: straight to confirm with the
	// sentinel value.
	prompt, err = e.ChooseTranscriptType("u1", "report")
	if err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}
	if prompt.Step != StepConfirm {
		t.Fatalf("got step %s", prompt.Step)
	}
	if !strings.Contains(prompt.Preview, "N/A (No transcripts found)") {
		t.Fatalf("preview missing sentinel: %q", prompt.Preview)
	}
	if !strings.Contains(prompt.Preview, "Ban Length: (Strike 1) Permanent Ban") {
		t.Fatalf("preview missing sanction line: %q", prompt.Preview)
	}

	sub, err := e.Submit("u1", "mod-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.PlayerName != "Smithy" || sub.BUID != "buid-2" {
		t.Fatalf("wrong player snapshot: %+v", sub)
	}
	if sub.Offense != "Cheating" || sub.Strike != "Strike 1" || sub.Sanction != "Permanent Ban" {
		t.Fatalf("wrong verdict: %+v", sub)
	}
	if sub.IsUnban() {
		t.Fatal("regular ban flagged as unban")
	}
	if _, err := e.Submit("u1", "mod-9"); !errors.Is(err, ErrStateLost) {
		t.Fatalf("form not cleared after submit: %v", err)
	}
}

func TestCustomPunishmentFlow(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{})

	if _, err := e.Begin("u1", "Smith"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := e.ChoosePlayer("u1", "buid-1"); err != nil {
		t.Fatalf("ChoosePlayer: %v", err)
	}

	prompt, err := e.ChooseOffense("u1", policy.OffenseCustom)
	if err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if !prompt.NeedsModal || prompt.Step != StepCustomDetails {
		t.Fatalf("expected modal prompt, got %+v", prompt)
	}

	prompt, err = e.SubmitCustomDetails("u1", "Racist slurs", "Permanent")
	if err != nil {
		t.Fatalf("SubmitCustomDetails: %v", err)
	}
	if prompt.Step != StepTranscriptType {
		t.Fatalf("got step %s", prompt.Step)
	}

	if _, err := e.ChooseTranscriptType("u1", "report"); err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}

	sub, err := e.Submit("u1", "mod-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Strike != "Custom" || sub.Sanction != "Permanent" || sub.Offense != "Racist slurs" {
		t.Fatalf("got %+v", sub)
	}
}

func TestSanctionOptionsBranch(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{})

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Team Killing"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}

	prompt, err := e.ChooseStrike("u1", "Strike 1")
	if err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}
	if prompt.Step != StepSelectSanction {
		t.Fatalf("expected duration pick, got step %s", prompt.Step)
	}
	if len(prompt.Options) != 5 {
		t.Fatalf("got %d duration options", len(prompt.Options))
	}

	if _, err := e.ChooseSanction("u1", "2 Week Ban"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("off-menu duration accepted: %v", err)
	}

	next, err := e.ChooseSanction("u1", "5 Day Ban")
	if err != nil {
		t.Fatalf("ChooseSanction: %v", err)
	}
	if next.Step != StepTranscriptType {
		t.Fatalf("got step %s", next.Step)
	}
}

func TestBackFromSanctionReturnsToStrike(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{})

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Team Killing"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if _, err := e.ChooseStrike("u1", "Strike 1"); err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}

	prompt, err := e.Back("u1")
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if prompt.Step != StepSelectStrike {
		t.Fatalf("went back to %s", prompt.Step)
	}

	// Player and offense survive; strike and sanction are re-chosen.
	prompt, err = e.ChooseStrike("u1", "Strike 2")
	if err != nil {
		t.Fatalf("re-ChooseStrike: %v", err)
	}
	if prompt.Step != StepTranscriptType {
		t.Fatalf("got step %s", prompt.Step)
	}
	if _, err := e.ChooseTranscriptType("u1", "report"); err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}
	sub, err := e.Submit("u1", "mod-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Offense != "Team Killing" || sub.Strike != "Strike 2" || sub.Sanction != "1 Month Ban" {
		t.Fatalf("got %+v", sub)
	}
}

func TestBackFromConfirmReselectsTranscriptType(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{})

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Cheating"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if _, err := e.ChooseStrike("u1", "Strike 1"); err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}
	if _, err := e.ChooseTranscriptType("u1", "report"); err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}

	prompt, err := e.Back("u1")
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if prompt.Step != StepTranscriptType {
		t.Fatalf("went back to %s", prompt.Step)
	}
}

func TestUnbanFlowResolvesRelatedBan(t *testing.T) {
	history := []ledger.BanRecord{
		{ID: 7, BanNumber: "0042", Offense: "Cheating", Strike: "Strike 1", Timestamp: time.Now()},
		{ID: 9, BanNumber: "UNBAN-0001", Strike: "UNBAN", IsUnban: true, Timestamp: time.Now()},
	}
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{history: history})

	mustAdvance(t, e, "u1")
	prompt, err := e.ChooseOffense("u1", policy.OffenseUnbanRemoveStrike)
	if err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if prompt.Step != StepSelectUnbanTarget {
		t.Fatalf("got step %s", prompt.Step)
	}
	// The unban record itself is never offered as a target.
	if len(prompt.Options) != 1 || prompt.Options[0].Value != "0042" {
		t.Fatalf("got options %+v", prompt.Options)
	}

	if _, err := e.ChooseUnbanTarget("u1", "0042"); err != nil {
		t.Fatalf("ChooseUnbanTarget: %v", err)
	}
	if _, err := e.ChooseTranscriptType("u1", "ticket"); err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}

	sub, err := e.Submit("u1", "mod-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !sub.IsUnban() {
		t.Fatal("unban submission not flagged")
	}
	if sub.UnbanData.BanNumberToUnban != "0042" || !sub.UnbanData.RemoveStrike {
		t.Fatalf("got %+v", sub.UnbanData)
	}
	if sub.UnbanData.RelatedBanID == nil || *sub.UnbanData.RelatedBanID != 7 {
		t.Fatalf("related ban id not resolved: %+v", sub.UnbanData)
	}
	if sub.Strike != "UNBAN" || sub.Sanction != "Player Unbanned" {
		t.Fatalf("got %+v", sub)
	}
}

func TestUnbanWithoutHistoryIsDeadEnd(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{}, &fakeLedger{})

	mustAdvance(t, e, "u1")
	prompt, err := e.ChooseOffense("u1", policy.OffenseUnbanKeepStrike)
	if err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if !prompt.Done {
		t.Fatal("expected a terminal prompt")
	}
	// The dead end requires a restart, not a resume.
	if _, err := e.ChooseUnbanTarget("u1", "0042"); !errors.Is(err, ErrStateLost) {
		t.Fatalf("expected ErrStateLost, got %v", err)
	}
}

func TestTranscriptSelection(t *testing.T) {
	found := []transcripts.Transcript{
		{Label: "Report-0042", URL: "https://discord.com/channels/1/2/3"},
		{Label: "Report-0041", URL: "https://discord.com/channels/1/2/4"},
	}
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{found: found}, &fakeLedger{strikes: 2})

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Cheating"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if _, err := e.ChooseStrike("u1", "Strike 1"); err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}

	prompt, err := e.ChooseTranscriptType("u1", "report")
	if err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}
	if prompt.Step != StepSelectTranscript {
		t.Fatalf("got step %s", prompt.Step)
	}
	// Two sentinels plus the two discovered transcripts.
	if len(prompt.Options) != 4 {
		t.Fatalf("got %d options", len(prompt.Options))
	}

	confirm, err := e.ChooseTranscript("u1", prompt.Options[2].Value)
	if err != nil {
		t.Fatalf("ChooseTranscript: %v", err)
	}
	if confirm.Step != StepConfirm {
		t.Fatalf("got step %s", confirm.Step)
	}
	if !strings.Contains(confirm.Preview, found[0].Markdown()) {
		t.Fatalf("preview missing transcript link: %q", confirm.Preview)
	}
	if !strings.Contains(confirm.Preview, "Previous Active Strikes: 2") {
		t.Fatalf("preview missing strike warning: %q", confirm.Preview)
	}

	if _, err := e.ChooseTranscript("u1", "99"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("out-of-range index accepted: %v", err)
	}
}

// Jump links with real 19-digit snowflake IDs render longer than Discord's
// 100-character cap on select option values, so options must carry an index
// into the stored list instead of the link itself.
func TestTranscriptOptionValuesFitSelectLimit(t *testing.T) {
	found := []transcripts.Transcript{
		{Label: "Report-0042", URL: "https://discord.com/channels/1234567890123456789/1234567890123456789/1234567890123456789"},
	}
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{found: found}, &fakeLedger{})

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Cheating"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if _, err := e.ChooseStrike("u1", "Strike 1"); err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}

	prompt, err := e.ChooseTranscriptType("u1", "report")
	if err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}
	for _, opt := range prompt.Options {
		if len(opt.Value) > 100 {
			t.Fatalf("option value is %d chars: %q", len(opt.Value), opt.Value)
		}
		if len(opt.Label) > 100 {
			t.Fatalf("option label is %d chars: %q", len(opt.Label), opt.Label)
		}
	}

	// The short value still resolves to the full rendered link.
	if _, err := e.ChooseTranscript("u1", prompt.Options[2].Value); err != nil {
		t.Fatalf("ChooseTranscript: %v", err)
	}
	sub, err := e.Submit("u1", "mod-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Transcript != found[0].Markdown() {
		t.Fatalf("got transcript %q", sub.Transcript)
	}
}

func TestTranscriptSentinels(t *testing.T) {
	found := []transcripts.Transcript{{Label: "Report-0001", URL: "https://discord.com/channels/1/2/3"}}
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, &fakeTranscripts{found: found}, &fakeLedger{})

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Cheating"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}
	if _, err := e.ChooseStrike("u1", "Strike 1"); err != nil {
		t.Fatalf("ChooseStrike: %v", err)
	}
	if _, err := e.ChooseTranscriptType("u1", "report"); err != nil {
		t.Fatalf("ChooseTranscriptType: %v", err)
	}
	if _, err := e.ChooseTranscript("u1", ChoiceWitness); err != nil {
		t.Fatalf("ChooseTranscript: %v", err)
	}

	sub, err := e.Submit("u1", "mod-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Transcript != "Witness Statement (No HTML)" {
		t.Fatalf("got transcript %q", sub.Transcript)
	}
}

func TestCancelClearsForm(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, nil, nil)

	mustAdvance(t, e, "u1")
	e.Cancel("u1")
	if _, err := e.ChooseOffense("u1", "Cheating"); !errors.Is(err, ErrStateLost) {
		t.Fatalf("expected ErrStateLost, got %v", err)
	}
}

func TestBeginOverwritesPreviousForm(t *testing.T) {
	e := newTestEngine(&fakePlayers{found: twoSmiths()}, nil, nil)

	mustAdvance(t, e, "u1")
	if _, err := e.ChooseOffense("u1", "Cheating"); err != nil {
		t.Fatalf("ChooseOffense: %v", err)
	}

	// A fresh search silently discards the in-flight form.
	if _, err := e.Begin("u1", "Smith"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := e.ChooseStrike("u1", "Strike 1"); !errors.Is(err, ErrStateLost) {
		t.Fatalf("stale offense survived a restart: %v", err)
	}
}

// mustAdvance walks a form through search and player selection.
func mustAdvance(t *testing.T, e *Engine, userID string) {
	t.Helper()
	if _, err := e.Begin(userID, "Smith"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := e.ChoosePlayer(userID, "buid-1"); err != nil {
		t.Fatalf("ChoosePlayer: %v", err)
	}
}
