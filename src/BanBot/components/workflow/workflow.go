// Package workflow drives the multi-step ban form as an explicit state
// machine: each step consumes one user choice, mutates the per-user form
// state, and returns the next prompt to render. Back navigation is a
// transition-table lookup, not a view back-stack, so every path through the
// form shares one canonical step order.
package workflow

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/BanBot/components/players"
	"github.com/mfl-ops/banbot/src/BanBot/components/policy"
	"github.com/mfl-ops/banbot/src/BanBot/components/session"
	"github.com/mfl-ops/banbot/src/BanBot/components/transcripts"
)

// Step identifies one state of the ban form.
type Step string

const (
	StepSearch            Step = "search"
	StepSelectPlayer      Step = "select_player"
	StepSelectOffense     Step = "select_offense"
	StepCustomDetails     Step = "custom_details"
	StepSelectStrike      Step = "select_strike"
	StepSelectSanction    Step = "select_sanction"
	StepSelectUnbanTarget Step = "select_unban_target"
	StepTranscriptType    Step = "select_transcript_type"
	StepSelectTranscript  Step = "select_transcript"
	StepConfirm           Step = "confirm"
)

const (
	// Select menus render at most this many entries.
	maxPlayerOptions     = 25
	maxUnbanOptions      = 24
	maxTranscriptOptions = 23

	promptTimeout      = 5 * time.Minute
	shortPromptTimeout = 3 * time.Minute
)

// Sentinel values for the transcript select.
const (
	ChoiceAddLater = "add_later"
	ChoiceWitness  = "witness"

	transcriptAddLater = "Will add later / No Transcript"
	transcriptWitness  = "Witness Statement (No HTML)"
	transcriptNone     = "N/A (No transcripts found)"
)

const unbanSanction = "Player Unbanned"

var (
	// ErrStateLost means the form is missing a value a step depends on,
	// typically after eviction or a restart. The user must start over.
	ErrStateLost = errors.New("form state lost")

	// ErrInvalidChoice means the submitted value is not one of the options
	// the current step offered.
	ErrInvalidChoice = errors.New("invalid choice")
)

// Option is one selectable entry of a prompt.
type Option struct {
	Label       string
	Value       string
	Description string
}

// Prompt is the engine's instruction to the transport: either render a set
// of mutually exclusive options (or a free-text modal), or show a terminal
// message. The transport owns rendering and the inactivity timeout.
type Prompt struct {
	Step       Step
	Content    string
	Options    []Option
	NeedsModal bool
	Preview    string
	Done       bool
	Timeout    time.Duration
}

// Ledger is the slice of the ban store the form needs while collecting
// choices. Writes happen later, in the review gate.
type Ledger interface {
	PlayerHistory(buid string) ([]ledger.BanRecord, error)
	ActiveStrikeCount(buid string) (int, error)
}

// Submission is the payload handed to the review gate on submit.
type Submission struct {
	PlayerName  string
	BUID        string
	Offense     string
	Strike      string
	Sanction    string
	Transcript  string
	SubmittedBy string
	UnbanData   *session.UnbanData
}

// IsUnban reports whether the submission reverses an earlier ban.
func (s Submission) IsUnban() bool { return s.UnbanData != nil }

// Engine drives ban forms for all users. Safe for concurrent use; the
// session store serializes access to each user's form.
type Engine struct {
	sessions    *session.Store
	policy      *policy.Table
	ledger      Ledger
	players     players.Source
	transcripts transcripts.Source
	sanitizer   *bluemonday.Policy
}

func NewEngine(sessions *session.Store, table *policy.Table, store Ledger, playerSource players.Source, transcriptSource transcripts.Source) *Engine {
	return &Engine{
		sessions:    sessions,
		policy:      table,
		ledger:      store,
		players:     playerSource,
		transcripts: transcriptSource,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// Begin starts a fresh form from a search term, discarding any previous
// form the user had. Zero matches ends the flow with a notice, not an
// error.
func (e *Engine) Begin(userID, term string) (Prompt, error) {
	term = e.sanitizer.Sanitize(term)

	found, err := e.players.FindPlayers(term)
	if err != nil {
		// Read-path degradation: report nothing found rather than failing
		// the command.
		log.Printf("workflow: player lookup failed for %q: %v", term, err)
		found = nil
	}
	if len(found) == 0 {
		return Prompt{
			Done:    true,
			Content: fmt.Sprintf("No players found matching '%s'. Cannot start ban form.", term),
		}, nil
	}

	candidates := make([]session.Player, 0, len(found))
	for _, p := range found {
		candidates = append(candidates, session.Player{
			Name:       p.Name,
			Level:      p.Level,
			LastPlayed: p.LastPlayed,
			BUID:       p.BUID,
		})
	}

	e.sessions.Begin(userID)
	e.sessions.Update(userID, func(form *session.FormState) {
		form.SearchTerm = term
		form.Players = candidates
		form.Step = string(StepSelectPlayer)
	})

	form, _ := e.sessions.Get(userID)
	return e.playerPrompt(form), nil
}

// ChoosePlayer stores the selected candidate's snapshot and advances to
// offense selection.
func (e *Engine) ChoosePlayer(userID, buid string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || len(form.Players) == 0 {
		return Prompt{}, ErrStateLost
	}

	var picked *session.Player
	for i := range form.Players {
		if form.Players[i].BUID == buid {
			picked = &form.Players[i]
			break
		}
	}
	if picked == nil {
		return Prompt{}, ErrInvalidChoice
	}

	chosen := *picked
	e.sessions.Update(userID, func(form *session.FormState) {
		form.Player = &chosen
		form.Step = string(StepSelectOffense)
	})
	form, _ = e.sessions.Get(userID)
	return e.offensePrompt(form), nil
}

// ChooseOffense branches the form: a real offense goes on to strike
// selection, Custom Punishment opens the free-text modal, and the unban
// pseudo-offenses divert to picking the ban to reverse.
func (e *Engine) ChooseOffense(userID, offense string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil {
		return Prompt{}, ErrStateLost
	}

	switch {
	case offense == policy.OffenseCustom:
		e.sessions.Update(userID, func(form *session.FormState) {
			form.Offense = offense
			form.Step = string(StepCustomDetails)
		})
		return Prompt{
			Step:       StepCustomDetails,
			NeedsModal: true,
			Timeout:    promptTimeout,
		}, nil

	case policy.IsUnbanOffense(offense):
		e.sessions.Update(userID, func(form *session.FormState) {
			form.Offense = offense
			form.Step = string(StepSelectUnbanTarget)
		})
		form, _ = e.sessions.Get(userID)
		return e.unbanTargetPrompt(userID, form)

	case e.policy.Known(offense):
		e.sessions.Update(userID, func(form *session.FormState) {
			form.Offense = offense
			form.Step = string(StepSelectStrike)
		})
		form, _ = e.sessions.Get(userID)
		return e.strikePrompt(form), nil

	default:
		return Prompt{}, ErrInvalidChoice
	}
}

// SubmitCustomDetails captures the free-text reason and length of a custom
// punishment. Strike is the Custom marker, which never counts toward
// active strikes.
func (e *Engine) SubmitCustomDetails(userID, reason, length string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil {
		return Prompt{}, ErrStateLost
	}

	reason = e.sanitizer.Sanitize(reason)
	length = e.sanitizer.Sanitize(length)
	if reason == "" || length == "" {
		return Prompt{}, ErrInvalidChoice
	}

	e.sessions.Update(userID, func(form *session.FormState) {
		form.Offense = policy.OffenseCustom
		form.OffenseDetail = reason
		form.Strike = ledger.StrikeCustom
		form.Sanction = length
		form.Step = string(StepTranscriptType)
	})
	form, _ = e.sessions.Get(userID)
	return e.transcriptTypePrompt(form), nil
}

// ChooseStrike resolves the offense/strike combination against the policy
// table. A fixed sanction is stored directly and skips the duration pick.
func (e *Engine) ChooseStrike(userID, strike string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil || form.Offense == "" {
		return Prompt{}, ErrStateLost
	}

	sanction, ok := e.policy.Sanction(form.Offense, strike)
	if !ok {
		return Prompt{}, ErrInvalidChoice
	}

	if sanction.HasOptions() {
		e.sessions.Update(userID, func(form *session.FormState) {
			form.Strike = strike
			form.Sanction = ""
			form.Step = string(StepSelectSanction)
		})
		form, _ = e.sessions.Get(userID)
		return e.sanctionPrompt(form), nil
	}

	e.sessions.Update(userID, func(form *session.FormState) {
		form.Strike = strike
		form.Sanction = sanction.Fixed
		form.Step = string(StepTranscriptType)
	})
	form, _ = e.sessions.Get(userID)
	return e.transcriptTypePrompt(form), nil
}

// ChooseSanction stores the duration picked from a multi-option sanction.
func (e *Engine) ChooseSanction(userID, chosen string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil || form.Offense == "" || form.Strike == "" {
		return Prompt{}, ErrStateLost
	}

	sanction, ok := e.policy.Sanction(form.Offense, form.Strike)
	if !ok {
		return Prompt{}, ErrStateLost
	}
	valid := false
	for _, opt := range sanction.Options {
		if opt == chosen {
			valid = true
			break
		}
	}
	if !valid {
		return Prompt{}, ErrInvalidChoice
	}

	e.sessions.Update(userID, func(form *session.FormState) {
		form.Sanction = chosen
		form.Step = string(StepTranscriptType)
	})
	form, _ = e.sessions.Get(userID)
	return e.transcriptTypePrompt(form), nil
}

// ChooseUnbanTarget stores which existing ban the unban reverses. The
// original record's surrogate id is resolved now so approval can link the
// reversal back to it.
func (e *Engine) ChooseUnbanTarget(userID, banNumber string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil || !policy.IsUnbanOffense(form.Offense) {
		return Prompt{}, ErrStateLost
	}

	history, err := e.ledger.PlayerHistory(form.Player.BUID)
	if err != nil {
		return Prompt{}, fmt.Errorf("load ban history: %w", err)
	}

	var target *ledger.BanRecord
	for i := range history {
		if !history[i].IsUnban && history[i].BanNumber == banNumber {
			target = &history[i]
			break
		}
	}
	if target == nil {
		return Prompt{}, ErrInvalidChoice
	}

	relatedID := target.ID
	unban := &session.UnbanData{
		BanNumberToUnban: banNumber,
		RemoveStrike:     form.Offense == policy.OffenseUnbanRemoveStrike,
		RelatedBanID:     &relatedID,
	}
	e.sessions.Update(userID, func(form *session.FormState) {
		form.UnbanData = unban
		form.Strike = ledger.StrikeUnban
		form.Sanction = unbanSanction
		form.Step = string(StepTranscriptType)
	})
	form, _ = e.sessions.Get(userID)
	return e.transcriptTypePrompt(form), nil
}

// ChooseTranscriptType asks the transcript source for candidates in the
// chosen category. No candidates is the common case and skips straight to
// confirmation with a sentinel transcript value.
func (e *Engine) ChooseTranscriptType(userID, category string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil || form.Sanction == "" {
		return Prompt{}, ErrStateLost
	}
	if category != "report" && category != "ticket" {
		return Prompt{}, ErrInvalidChoice
	}

	found, err := e.transcripts.FindTranscripts(category)
	if err != nil {
		log.Printf("workflow: transcript lookup failed for %q: %v", category, err)
		found = nil
	}

	if len(found) == 0 {
		e.sessions.Update(userID, func(form *session.FormState) {
			form.Transcripts = nil
			form.TranscriptLink = transcriptNone
			form.Step = string(StepConfirm)
		})
		form, _ = e.sessions.Get(userID)
		prompt, err := e.confirmPrompt(form)
		if err != nil {
			return Prompt{}, err
		}
		prompt.Content = fmt.Sprintf("No transcripts found in '%s' channels.", category)
		return prompt, nil
	}

	if len(found) > maxTranscriptOptions {
		found = found[:maxTranscriptOptions]
	}
	rendered := make([]string, 0, len(found))
	for _, t := range found {
		rendered = append(rendered, t.Markdown())
	}
	e.sessions.Update(userID, func(form *session.FormState) {
		form.Transcripts = rendered
		form.Step = string(StepSelectTranscript)
	})
	form, _ = e.sessions.Get(userID)
	return e.transcriptPrompt(form), nil
}

// ChooseTranscript stores the picked transcript reference, or one of the
// two sentinels for submissions without an HTML artifact. Real transcripts
// arrive as an index into the candidates stored by ChooseTranscriptType.
func (e *Engine) ChooseTranscript(userID, value string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil {
		return Prompt{}, ErrStateLost
	}

	var link string
	switch value {
	case ChoiceAddLater:
		link = transcriptAddLater
	case ChoiceWitness:
		link = transcriptWitness
	default:
		idx, err := strconv.Atoi(value)
		if err != nil || idx < 0 || idx >= len(form.Transcripts) {
			return Prompt{}, ErrInvalidChoice
		}
		link = form.Transcripts[idx]
	}

	e.sessions.Update(userID, func(form *session.FormState) {
		form.TranscriptLink = link
		form.Step = string(StepConfirm)
	})
	form, _ = e.sessions.Get(userID)
	return e.confirmPrompt(form)
}

// Submit packages the completed form for moderator review and clears the
// user's state. The ledger is not touched here; that happens on approval.
func (e *Engine) Submit(userID, submittedBy string) (Submission, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil || form.Strike == "" || form.Sanction == "" || form.TranscriptLink == "" {
		return Submission{}, ErrStateLost
	}

	offense := form.Offense
	if form.Strike == ledger.StrikeCustom && form.OffenseDetail != "" {
		offense = form.OffenseDetail
	}

	sub := Submission{
		PlayerName:  form.Player.Name,
		BUID:        form.Player.BUID,
		Offense:     offense,
		Strike:      form.Strike,
		Sanction:    form.Sanction,
		Transcript:  form.TranscriptLink,
		SubmittedBy: submittedBy,
		UnbanData:   form.UnbanData,
	}
	e.sessions.Clear(userID)
	return sub, nil
}

// Cancel abandons the form without any ledger write.
func (e *Engine) Cancel(userID string) {
	e.sessions.Clear(userID)
}
