package bot

import (
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
)

// timeoutNotices is what a stale prompt message is replaced with, per step.
var timeoutNotices = map[workflow.Step]string{
	workflow.StepSelectPlayer:      "Player selection for ban timed out.",
	workflow.StepSelectOffense:     "Offense selection timed out.",
	workflow.StepSelectStrike:      "Strike selection timed out.",
	workflow.StepSelectSanction:    "Sanction choice timed out.",
	workflow.StepSelectUnbanTarget: "Unban report selection timed out.",
	workflow.StepTranscriptType:    "Transcript type selection timed out.",
	workflow.StepSelectTranscript:  "Transcript selection timed out.",
	workflow.StepConfirm:           "Ban form confirmation timed out.",
}

func timeoutNotice(step workflow.Step) string {
	if notice, ok := timeoutNotices[step]; ok {
		return notice
	}
	return "Ban form timed out."
}

// promptTimers holds the inactivity timer of each user's open form prompt.
// Rendering a prompt re-arms the user's timer; terminal steps cancel it.
type promptTimers struct {
	mu sync.Mutex
	m  map[string]*time.Timer
}

func newPromptTimers() *promptTimers {
	return &promptTimers{m: make(map[string]*time.Timer)}
}

// Arm schedules fn after d, replacing any timer the user already had. A
// fired timer only runs fn while it is still the user's current timer, so a
// prompt rendered just after expiry is not clobbered by the stale one.
func (p *promptTimers) Arm(userID string, d time.Duration, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.m[userID]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		p.mu.Lock()
		current := p.m[userID] == timer
		if current {
			delete(p.m, userID)
		}
		p.mu.Unlock()
		if current {
			fn()
		}
	})
	p.m[userID] = timer
}

// Cancel stops the user's pending timer, if any.
func (p *promptTimers) Cancel(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.m[userID]; ok {
		t.Stop()
		delete(p.m, userID)
	}
}

// armPromptTimeout schedules the inactivity expiry for a just-rendered
// prompt: the form is abandoned and the prompt message loses its components
// in favor of a timed-out notice.
func (b *Bot) armPromptTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, prompt workflow.Prompt) {
	userID := interactionUserID(i)
	if prompt.Timeout <= 0 {
		b.timers.Cancel(userID)
		return
	}

	interaction := i.Interaction
	notice := timeoutNotice(prompt.Step)
	b.timers.Arm(userID, prompt.Timeout, func() {
		b.engine.Cancel(userID)
		empty := []discordgo.MessageComponent{}
		_, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Content:    &notice,
			Components: &empty,
		})
		if err != nil {
			log.Printf("bot: edit timed-out prompt: %v", err)
		}
	})
}
