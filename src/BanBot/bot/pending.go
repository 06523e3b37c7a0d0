package bot

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mfl-ops/banbot/src/BanBot/components/review"
	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
	"github.com/mfl-ops/banbot/src/shared/data"
)

const (
	colorPending  = 0xE67E22 // orange
	colorApproved = 0x2ECC71 // green
	colorDenied   = 0xE74C3C // red
	colorError    = 0x992D22 // dark red
)

// submitForReview packages the form, posts the pending embed to the review
// channel, and confirms to the submitter.
func (b *Bot) submitForReview(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	sub, err := b.engine.Submit(userID, userID)
	if err != nil {
		b.respondFormError(s, i, err)
		return
	}

	payloadID := b.gate.Register(sub)
	embed := pendingEmbed(b, sub, userID)

	channelID := data.GetSetting(settingPendingChannel)
	if channelID == "" {
		channelID = i.ChannelID
	}

	actionType := "ban"
	if sub.IsUnban() {
		actionType = "unban"
	}

	_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Approve", Style: discordgo.SuccessButton, CustomID: idReviewApprove + payloadID},
				discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: idReviewDeny + payloadID},
			}},
		},
	})
	if err != nil {
		log.Printf("bot: post pending review: %v", err)
		updateMessage(s, i, "Error: could not post the request to the moderation channel.", nil, []discordgo.MessageComponent{})
		return
	}

	updateMessage(s, i,
		fmt.Sprintf("✅ Your %s request for **%s** has been submitted for review in <#%s>.", actionType, sub.PlayerName, channelID),
		nil, []discordgo.MessageComponent{})
}

func pendingEmbed(b *Bot, sub workflow.Submission, submitterID string) *discordgo.MessageEmbed {
	actionType := "Ban"
	if sub.IsUnban() {
		actionType = "Unban"
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("New %s Request: %s", actionType, sub.PlayerName),
		Color:     colorPending,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Submitter User ID: " + submitterID},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Player", Value: sub.PlayerName, Inline: true},
			{Name: "BUID", Value: sub.BUID, Inline: true},
			{Name: "Transcript", Value: sub.Transcript, Inline: false},
		},
	}

	if sub.IsUnban() {
		yesNo := "No"
		if sub.UnbanData.RemoveStrike {
			yesNo = "Yes"
		}
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Unban Details", Value: sub.Offense, Inline: false},
			&discordgo.MessageEmbedField{Name: "Original Ban #", Value: sub.UnbanData.BanNumberToUnban, Inline: true},
			&discordgo.MessageEmbedField{Name: "Remove Original Strike?", Value: yesNo, Inline: true},
		)
		return embed
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Offense", Value: sub.Offense, Inline: false},
		&discordgo.MessageEmbedField{Name: "Strike Level", Value: sub.Strike, Inline: true},
		&discordgo.MessageEmbedField{Name: "Sanction", Value: sub.Sanction, Inline: true},
	)
	if strikes, err := b.ledger.ActiveStrikeCount(sub.BUID); err == nil && strikes > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "⚠️ Previous Active Strikes", Value: fmt.Sprintf("%d", strikes), Inline: true,
		})
	}
	return embed
}

func (b *Bot) handleApprove(s *discordgo.Session, i *discordgo.InteractionCreate, payloadID string) {
	actorID := interactionUserID(i)

	pending, ok := b.gate.Get(payloadID)
	if !ok {
		respondText(s, i, "⚠️ This request has already been decided.")
		return
	}

	decision, err := b.gate.Approve(b.ctx, payloadID, actorID)
	if err != nil {
		b.respondDecisionError(s, i, err)
		return
	}

	actionType := "Ban"
	if pending.Submission.IsUnban() {
		actionType = "Unban"
	}

	embed := firstEmbed(i)
	if embed != nil {
		embed.Title = fmt.Sprintf("%s Approved: %s", actionType, pending.Submission.PlayerName)
		embed.Color = colorApproved
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: actionType + " ID", Value: decision.BanNumber, Inline: false},
			&discordgo.MessageEmbedField{Name: "Approved By", Value: "<@" + actorID + ">", Inline: false},
		)
		updateMessage(s, i, "", []*discordgo.MessageEmbed{embed}, []discordgo.MessageComponent{})
	} else {
		updateMessage(s, i, fmt.Sprintf("%s approved as %s by <@%s>.", actionType, decision.BanNumber, actorID), nil, []discordgo.MessageComponent{})
	}
}

func (b *Bot) handleDeny(s *discordgo.Session, i *discordgo.InteractionCreate, payloadID string) {
	actorID := interactionUserID(i)

	pending, ok := b.gate.Get(payloadID)
	if !ok {
		respondText(s, i, "⚠️ This request has already been decided.")
		return
	}

	if err := b.gate.Deny(b.ctx, payloadID, actorID); err != nil {
		b.respondDecisionError(s, i, err)
		return
	}

	embed := firstEmbed(i)
	if embed != nil {
		embed.Title = "Request Denied: " + pending.Submission.PlayerName
		embed.Color = colorDenied
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Denied By", Value: "<@" + actorID + ">", Inline: false},
		)
		updateMessage(s, i, "", []*discordgo.MessageEmbed{embed}, []discordgo.MessageComponent{})
	} else {
		updateMessage(s, i, fmt.Sprintf("Request denied by <@%s>.", actorID), nil, []discordgo.MessageComponent{})
	}
}

// respondDecisionError keeps a failed approval actionable: the message and
// its buttons stay in place, and only the acting moderator sees the error.
func (b *Bot) respondDecisionError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, review.ErrUnauthorized):
		respondText(s, i, "❌ You don't have permission to review ban requests.")
	case errors.Is(err, review.ErrNotPending):
		respondText(s, i, "⚠️ This request has already been decided.")
	default:
		log.Printf("bot: decision error: %v", err)
		respondText(s, i, fmt.Sprintf("An error occurred while recording the decision: %v\nThe request is still pending; try again.", err))
	}
}

// firstEmbed copies the first embed of the message the component sits on.
func firstEmbed(i *discordgo.InteractionCreate) *discordgo.MessageEmbed {
	if i.Message == nil || len(i.Message.Embeds) == 0 {
		return nil
	}
	embed := *i.Message.Embeds[0]
	return &embed
}
