package workflow

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/BanBot/components/policy"
	"github.com/mfl-ops/banbot/src/BanBot/components/session"
)

// backTargets maps each step to the step Back re-enters. The two branch
// points (where the prior step depends on the path taken) are resolved in
// backFrom.
var backTargets = map[Step]Step{
	StepSelectOffense:     StepSelectPlayer,
	StepSelectStrike:      StepSelectOffense,
	StepSelectSanction:    StepSelectStrike,
	StepSelectUnbanTarget: StepSelectOffense,
	StepSelectTranscript:  StepTranscriptType,
	StepConfirm:           StepTranscriptType,
}

func backFrom(form session.FormState) (Step, bool) {
	current := Step(form.Step)
	if current == StepTranscriptType {
		// The step before transcript type depends on which branch filled
		// in the sanction.
		switch {
		case form.UnbanData != nil:
			return StepSelectUnbanTarget, true
		case form.Strike == ledger.StrikeCustom:
			return StepSelectOffense, true
		default:
			if form.Offense != "" && form.Strike != "" {
				return StepSelectStrike, true
			}
			return StepSelectOffense, true
		}
	}
	target, ok := backTargets[current]
	return target, ok
}

// Back re-enters the previous step using values already in the form,
// clearing everything the abandoned steps had filled in.
func (e *Engine) Back(userID string) (Prompt, error) {
	form, ok := e.sessions.Get(userID)
	if !ok || form.Player == nil {
		return Prompt{}, ErrStateLost
	}

	target, ok := backFrom(form)
	if !ok {
		return Prompt{}, ErrStateLost
	}

	e.sessions.Update(userID, func(form *session.FormState) {
		rewind(form, target)
		form.Step = string(target)
	})
	form, _ = e.sessions.Get(userID)
	return e.promptFor(userID, target, form)
}

// rewind clears every field the steps at and after target are responsible
// for, so re-entering the step starts from a clean slate.
func rewind(form *session.FormState, target Step) {
	form.Transcripts = nil
	form.TranscriptLink = ""
	switch target {
	case StepSelectPlayer:
		form.Player = nil
		form.Offense, form.OffenseDetail = "", ""
		form.Strike, form.Sanction, form.UnbanData = "", "", nil
	case StepSelectOffense:
		form.Offense, form.OffenseDetail = "", ""
		form.Strike, form.Sanction, form.UnbanData = "", "", nil
	case StepSelectStrike, StepSelectUnbanTarget:
		form.Strike, form.Sanction, form.UnbanData = "", "", nil
	case StepSelectSanction:
		form.Sanction = ""
	}
}

func (e *Engine) promptFor(userID string, step Step, form session.FormState) (Prompt, error) {
	switch step {
	case StepSelectPlayer:
		if len(form.Players) == 0 {
			return Prompt{}, ErrStateLost
		}
		return e.playerPrompt(form), nil
	case StepSelectOffense:
		return e.offensePrompt(form), nil
	case StepSelectStrike:
		if form.Offense == "" {
			return Prompt{}, ErrStateLost
		}
		return e.strikePrompt(form), nil
	case StepSelectSanction:
		if form.Offense == "" || form.Strike == "" {
			return Prompt{}, ErrStateLost
		}
		return e.sanctionPrompt(form), nil
	case StepSelectUnbanTarget:
		return e.unbanTargetPrompt(userID, form)
	case StepTranscriptType:
		if form.Sanction == "" {
			return Prompt{}, ErrStateLost
		}
		return e.transcriptTypePrompt(form), nil
	default:
		return Prompt{}, ErrStateLost
	}
}

func (e *Engine) playerPrompt(form session.FormState) Prompt {
	limit := len(form.Players)
	if limit > maxPlayerOptions {
		limit = maxPlayerOptions
	}
	options := make([]Option, 0, limit)
	for _, p := range form.Players[:limit] {
		options = append(options, Option{
			Label:       truncate(p.Name, 100),
			Value:       p.BUID,
			Description: truncate(fmt.Sprintf("Lvl %d, Last: %s", p.Level, p.LastPlayed), 100),
		})
	}
	return Prompt{
		Step:    StepSelectPlayer,
		Content: "Choose a player to proceed:",
		Options: options,
		Timeout: promptTimeout,
	}
}

func (e *Engine) offensePrompt(form session.FormState) Prompt {
	names := append(e.policy.Offenses(), policy.OffenseUnbanKeepStrike, policy.OffenseUnbanRemoveStrike)
	if len(names) > maxPlayerOptions {
		names = names[:maxPlayerOptions]
	}
	options := make([]Option, 0, len(names))
	for _, name := range names {
		options = append(options, Option{Label: truncate(name, 100), Value: name})
	}
	return Prompt{
		Step:    StepSelectOffense,
		Content: "Select offense:",
		Options: options,
		Timeout: promptTimeout,
	}
}

func (e *Engine) strikePrompt(form session.FormState) Prompt {
	strikes := e.policy.Strikes(form.Offense)
	options := make([]Option, 0, len(strikes))
	for _, s := range strikes {
		options = append(options, Option{Label: s, Value: s})
	}
	return Prompt{
		Step:    StepSelectStrike,
		Content: "Select the strike level:",
		Options: options,
		Timeout: promptTimeout,
	}
}

func (e *Engine) sanctionPrompt(form session.FormState) Prompt {
	sanction, _ := e.policy.Sanction(form.Offense, form.Strike)
	options := make([]Option, 0, len(sanction.Options))
	for _, s := range sanction.Options {
		options = append(options, Option{Label: s, Value: s})
	}
	return Prompt{
		Step:    StepSelectSanction,
		Content: "Select a ban duration:",
		Options: options,
		Timeout: shortPromptTimeout,
	}
}

// unbanTargetPrompt offers the player's non-unban bans, newest first. No
// history is a dead end: the form is cleared and the user told so.
func (e *Engine) unbanTargetPrompt(userID string, form session.FormState) (Prompt, error) {
	history, err := e.ledger.PlayerHistory(form.Player.BUID)
	if err != nil {
		log.Printf("workflow: ban history lookup failed for %s: %v", form.Player.BUID, err)
		history = nil
	}

	options := make([]Option, 0, maxUnbanOptions)
	for _, rec := range history {
		if rec.IsUnban {
			continue
		}
		status := ""
		if rec.StrikeRemoved {
			status = " (Strike Removed)"
		}
		options = append(options, Option{
			Label:       truncate(fmt.Sprintf("%s - %s%s", rec.BanNumber, truncate(rec.Offense, 40), status), 100),
			Value:       rec.BanNumber,
			Description: truncate(fmt.Sprintf("%s (%s)", rec.Timestamp.Format("2006-01-02"), rec.Strike), 100),
		})
		if len(options) >= maxUnbanOptions {
			break
		}
	}

	if len(options) == 0 {
		e.sessions.Clear(userID)
		return Prompt{
			Done:    true,
			Content: fmt.Sprintf("No active bans found for %s. Nothing to unban.", form.Player.Name),
		}, nil
	}

	return Prompt{
		Step:    StepSelectUnbanTarget,
		Content: "Select which existing ban to unban:",
		Options: options,
		Timeout: promptTimeout,
	}, nil
}

func (e *Engine) transcriptTypePrompt(form session.FormState) Prompt {
	return Prompt{
		Step:    StepTranscriptType,
		Content: "Select transcript type:",
		Options: []Option{
			{Label: "Report Transcript", Value: "report", Description: "Transcripts from report investigations"},
			{Label: "Ticket Transcript", Value: "ticket", Description: "Transcripts from player appeals/tickets"},
		},
		Timeout: shortPromptTimeout,
	}
}

func (e *Engine) transcriptPrompt(form session.FormState) Prompt {
	options := []Option{
		{Label: "Will add later/No Transcript", Value: ChoiceAddLater, Description: "No transcript or manual add."},
		{Label: "Witness Statement (No HTML)", Value: ChoiceWitness, Description: "Based on witness testimony only."},
	}
	// Discord caps option values at 100 characters and a rendered jump link
	// exceeds that, so the value is an index into the stored transcript list.
	for i, link := range form.Transcripts {
		options = append(options, Option{Label: truncate(linkLabel(link), 100), Value: strconv.Itoa(i)})
	}
	return Prompt{
		Step:    StepSelectTranscript,
		Content: "Select a transcript or option:",
		Options: options,
		Timeout: shortPromptTimeout,
	}
}

// confirmPrompt renders the full pending submission. Non-unban actions
// include the player's current active strikes as a warning so moderators
// see escalation context before approving.
func (e *Engine) confirmPrompt(form session.FormState) (Prompt, error) {
	if form.Player == nil {
		return Prompt{}, ErrStateLost
	}

	offense := form.Offense
	if form.Strike == ledger.StrikeCustom && form.OffenseDetail != "" {
		offense = form.OffenseDetail
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transcript: %s\n", form.TranscriptLink)
	fmt.Fprintf(&b, "Player: %s\n", form.Player.Name)
	fmt.Fprintf(&b, "BUID: %s\n", form.Player.BUID)
	if form.UnbanData != nil {
		fmt.Fprintf(&b, "Unban Details: %s\n", offense)
		fmt.Fprintf(&b, "Action: %s\n", form.Sanction)
		fmt.Fprintf(&b, "Original Ban #: %s", form.UnbanData.BanNumberToUnban)
	} else {
		fmt.Fprintf(&b, "Verdict/Reason: %s\n", offense)
		fmt.Fprintf(&b, "Ban Length: (%s) %s", form.Strike, form.Sanction)
		strikes, err := e.ledger.ActiveStrikeCount(form.Player.BUID)
		if err != nil {
			log.Printf("workflow: strike count lookup failed for %s: %v", form.Player.BUID, err)
		} else if strikes > 0 {
			fmt.Fprintf(&b, "\n⚠️ Previous Active Strikes: %d", strikes)
		}
	}

	return Prompt{
		Step:    StepConfirm,
		Content: "**Preview of Submission:**",
		Preview: b.String(),
		Timeout: promptTimeout,
	}, nil
}

// linkLabel extracts the display label from a [label](<url>) markdown link.
func linkLabel(link string) string {
	if strings.HasPrefix(link, "[") {
		if end := strings.Index(link, "]"); end > 1 {
			return link[1:end]
		}
	}
	return link
}

// truncate caps s at n characters, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
