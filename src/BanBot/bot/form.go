package bot

import (
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
)

const restartHint = "❌ Form state lost. Please start over with `/ban_player`."

// stepCustomIDs maps a form step to the select menu custom ID handling it.
var stepCustomIDs = map[workflow.Step]string{
	workflow.StepSelectPlayer:      idFormPlayer,
	workflow.StepSelectOffense:     idFormOffense,
	workflow.StepSelectStrike:      idFormStrike,
	workflow.StepSelectSanction:    idFormSanction,
	workflow.StepSelectUnbanTarget: idFormUnbanTarget,
	workflow.StepTranscriptType:    idFormTranscriptType,
	workflow.StepSelectTranscript:  idFormTranscript,
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// handleBanPlayer opens the player search modal that starts the ban form.
func (b *Bot) handleBanPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	if !b.limiter.CanUse(userID) {
		respondText(s, i, fmt.Sprintf("Please wait %s before starting another form.", b.limiter.TimeUntilNext(userID).Round(1e9)))
		return
	}
	b.openSearchModal(s, i, idModalSearch)
}

func (b *Bot) openSearchModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customID,
			Title:    "Player Search",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "search_term",
						Label:       "Player name (partial match)",
						Style:       discordgo.TextInputShort,
						Placeholder: "e.g. Smith",
						Required:    true,
						MaxLength:   100,
					},
				}},
			},
		},
	})
	if err != nil {
		log.Printf("bot: open search modal: %v", err)
	}
}

func (b *Bot) handleSearchModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	term := modalInput(i, "search_term")
	prompt, err := b.engine.Begin(interactionUserID(i), term)
	if err != nil {
		b.respondFormError(s, i, err)
		return
	}
	b.respondPrompt(s, i, prompt, false)
}

// handleFormComponent routes a ban form button or select back into the
// engine.
func (b *Bot) handleFormComponent(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	userID := interactionUserID(i)

	var value string
	if values := i.MessageComponentData().Values; len(values) > 0 {
		value = values[0]
	}

	var (
		prompt workflow.Prompt
		err    error
	)
	switch customID {
	case idFormPlayer:
		prompt, err = b.engine.ChoosePlayer(userID, value)
	case idFormOffense:
		prompt, err = b.engine.ChooseOffense(userID, value)
	case idFormStrike:
		prompt, err = b.engine.ChooseStrike(userID, value)
	case idFormSanction:
		prompt, err = b.engine.ChooseSanction(userID, value)
	case idFormUnbanTarget:
		prompt, err = b.engine.ChooseUnbanTarget(userID, value)
	case idFormTranscriptType:
		prompt, err = b.engine.ChooseTranscriptType(userID, value)
	case idFormTranscript:
		prompt, err = b.engine.ChooseTranscript(userID, value)
	case idFormBack:
		prompt, err = b.engine.Back(userID)
	case idFormSearchAgain:
		b.openSearchModal(s, i, idModalSearch)
		return
	case idFormCancel:
		b.engine.Cancel(userID)
		b.timers.Cancel(userID)
		updateMessage(s, i, "❌ Ban form cancelled.", nil, []discordgo.MessageComponent{})
		return
	case idFormSubmit:
		b.timers.Cancel(userID)
		b.submitForReview(s, i)
		return
	default:
		log.Printf("bot: unhandled form component %q", customID)
		return
	}

	if err != nil {
		b.respondFormError(s, i, err)
		return
	}
	b.respondPrompt(s, i, prompt, true)
}

func (b *Bot) handleCustomPunishmentModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	prompt, err := b.engine.SubmitCustomDetails(interactionUserID(i),
		modalInput(i, "reason"), modalInput(i, "length"))
	if err != nil {
		b.respondFormError(s, i, err)
		return
	}
	b.respondPrompt(s, i, prompt, false)
}

// respondPrompt renders the engine's next prompt. Component interactions
// replace the previous prompt message; modal submissions send a fresh
// ephemeral message. Every rendered prompt re-arms the user's inactivity
// timer; a terminal prompt cancels it.
func (b *Bot) respondPrompt(s *discordgo.Session, i *discordgo.InteractionCreate, prompt workflow.Prompt, inPlace bool) {
	if prompt.NeedsModal {
		b.timers.Cancel(interactionUserID(i))
		b.openCustomPunishmentModal(s, i)
		return
	}

	content, components := renderPrompt(prompt)
	if inPlace {
		updateMessage(s, i, content, nil, components)
	} else {
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    content,
				Components: components,
				Flags:      discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.Printf("bot: respond prompt: %v", err)
			return
		}
	}

	if prompt.Done {
		b.timers.Cancel(interactionUserID(i))
		return
	}
	b.armPromptTimeout(s, i, prompt)
}

func renderPrompt(prompt workflow.Prompt) (string, []discordgo.MessageComponent) {
	if prompt.Done {
		return prompt.Content, []discordgo.MessageComponent{}
	}

	if prompt.Step == workflow.StepConfirm {
		content := prompt.Content + "\n" + prompt.Preview
		return content, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Submit for Review", Style: discordgo.PrimaryButton, CustomID: idFormSubmit},
				discordgo.Button{Label: "← Back", Style: discordgo.SecondaryButton, CustomID: idFormBack},
				discordgo.Button{Label: "Cancel Form", Style: discordgo.DangerButton, CustomID: idFormCancel},
			}},
		}
	}

	options := make([]discordgo.SelectMenuOption, 0, len(prompt.Options))
	for _, opt := range prompt.Options {
		options = append(options, discordgo.SelectMenuOption{
			Label:       opt.Label,
			Value:       opt.Value,
			Description: opt.Description,
		})
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID: stepCustomIDs[prompt.Step],
				Options:  options,
			},
		}},
	}

	// The player step offers a fresh search instead of Back.
	if prompt.Step == workflow.StepSelectPlayer {
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "🔍 Search Again", Style: discordgo.SecondaryButton, CustomID: idFormSearchAgain},
		}})
	} else {
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "← Back", Style: discordgo.SecondaryButton, CustomID: idFormBack},
			discordgo.Button{Label: "Cancel Form", Style: discordgo.DangerButton, CustomID: idFormCancel},
		}})
	}

	return prompt.Content, components
}

func (b *Bot) openCustomPunishmentModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: idModalCustom,
			Title:    "Custom Punishment",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "reason",
						Label:       "Reason for Custom Punishment",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Enter custom reason...",
						Required:    true,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "length",
						Label:       "Ban Length",
						Style:       discordgo.TextInputShort,
						Placeholder: "e.g., 3 days, 1 week, Permanent",
						Required:    true,
					},
				}},
			},
		},
	})
	if err != nil {
		log.Printf("bot: open custom punishment modal: %v", err)
	}
}

func (b *Bot) respondFormError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, workflow.ErrStateLost):
		b.timers.Cancel(interactionUserID(i))
		respondText(s, i, restartHint)
	case errors.Is(err, workflow.ErrInvalidChoice):
		respondText(s, i, "❌ That option is not available. Please pick one from the menu.")
	default:
		log.Printf("bot: form error: %v", err)
		respondText(s, i, "An unexpected error occurred. Please try again.")
	}
}

// modalInput extracts a text input value from a modal submission.
func modalInput(i *discordgo.InteractionCreate, customID string) string {
	for _, row := range i.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
