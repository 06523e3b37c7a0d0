package bot

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mfl-ops/banbot/src/discord"
)

// Component and modal custom IDs. The review and history IDs carry their
// target after the prefix.
const (
	idFormPlayer         = "banform:player"
	idFormSearchAgain    = "banform:search_again"
	idFormOffense        = "banform:offense"
	idFormStrike         = "banform:strike"
	idFormSanction       = "banform:sanction"
	idFormUnbanTarget    = "banform:unban_target"
	idFormTranscriptType = "banform:transcript_type"
	idFormTranscript     = "banform:transcript"
	idFormBack           = "banform:back"
	idFormCancel         = "banform:cancel"
	idFormSubmit         = "banform:submit"

	idModalSearch = "banform:search_modal"
	idModalCustom = "banform:custom_modal"
	idModalFind   = "findplayer:search_modal"

	idReviewApprove = "review:approve:"
	idReviewDeny    = "review:deny:"
	idHistoryPage   = "history:"
	idHelpCategory  = "help:category"
)

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmd := i.ApplicationCommandData()
	switch cmd.Name {
	case discord.CommandBanPlayer:
		b.handleBanPlayer(s, i)
	case discord.CommandFindPlayer:
		b.handleFindPlayer(s, i)
	case discord.CommandBanHistory:
		b.handleBanHistory(s, i)
	case discord.CommandRecentBans:
		b.handleRecentBans(s, i)
	case discord.CommandSearchBan:
		b.handleSearchBan(s, i)
	case discord.CommandBanStats:
		b.handleBanStats(s, i)
	case discord.CommandRepeatOffenders:
		b.handleRepeatOffenders(s, i)
	case discord.CommandDeleteBan:
		b.handleDeleteBan(s, i)
	case discord.CommandSetup:
		b.handleSetup(s, i)
	case discord.CommandHelp:
		b.handleHelp(s, i)
	default:
		log.Printf("bot: unhandled command %q", cmd.Name)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, idReviewApprove):
		b.handleApprove(s, i, strings.TrimPrefix(customID, idReviewApprove))
	case strings.HasPrefix(customID, idReviewDeny):
		b.handleDeny(s, i, strings.TrimPrefix(customID, idReviewDeny))
	case strings.HasPrefix(customID, idHistoryPage):
		b.handleHistoryPage(s, i, strings.TrimPrefix(customID, idHistoryPage))
	case customID == idHelpCategory:
		b.handleHelpCategory(s, i)
	case strings.HasPrefix(customID, "banform:"):
		b.handleFormComponent(s, i, customID)
	default:
		log.Printf("bot: unhandled component %q", customID)
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ModalSubmitData().CustomID {
	case idModalSearch:
		b.handleSearchModal(s, i)
	case idModalCustom:
		b.handleCustomPunishmentModal(s, i)
	case idModalFind:
		b.handleFindPlayerModal(s, i)
	default:
		log.Printf("bot: unhandled modal %q", i.ModalSubmitData().CustomID)
	}
}

// respondText sends an ephemeral text reply to an interaction.
func respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("bot: interaction respond: %v", err)
	}
}

// respondEmbed sends an ephemeral embed reply, optionally with components.
func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("bot: interaction respond: %v", err)
	}
}

// updateMessage replaces the interaction's originating message in place.
func updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: components,
		},
	})
	if err != nil {
		log.Printf("bot: interaction update: %v", err)
	}
}
