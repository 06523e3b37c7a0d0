package bot

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// handleFindPlayer runs the player lookup without starting a ban form.
func (b *Bot) handleFindPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.openSearchModal(s, i, idModalFind)
}

func (b *Bot) handleFindPlayerModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	term := strings.TrimSpace(modalInput(i, "search_term"))

	found, err := b.players.FindPlayers(term)
	if err != nil {
		log.Printf("bot: find player: %v", err)
		found = nil
	}
	if len(found) == 0 {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "No Players Found",
			Description: fmt.Sprintf("No players found matching '%s'.", term),
			Color:       colorDenied,
		}, nil)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Player Search Results for '%s'", term),
		Description: fmt.Sprintf("Found %d player(s).", len(found)),
		Color:       colorInfo,
	}
	for _, p := range found {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  p.Name,
			Value: fmt.Sprintf("Level %d | Last Played: %s | BUID: `%s`", p.Level, p.LastPlayed, p.BUID),
		})
	}
	respondEmbed(s, i, embed, nil)
}
