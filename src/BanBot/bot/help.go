package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Help category labels; also the select option values.
const (
	helpOverview = "Overview"
	helpBanFlow  = "Ban & Unban Process"
	helpHistory  = "History & Searching"
	helpAdmin    = "Admin & Setup"
)

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondEmbed(s, i, helpCategoryEmbed(helpOverview), helpComponents())
}

// handleHelpCategory swaps the help embed for the picked category, keeping
// the select menu in place.
func (b *Bot) handleHelpCategory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	category := helpOverview
	if values := i.MessageComponentData().Values; len(values) > 0 {
		category = values[0]
	}
	updateMessage(s, i, "", []*discordgo.MessageEmbed{helpCategoryEmbed(category)}, helpComponents())
}

func helpComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    idHelpCategory,
				Placeholder: "Choose a category to learn more...",
				Options: []discordgo.SelectMenuOption{
					{Label: helpOverview, Value: helpOverview, Description: "Start here! A general overview of the bot.", Emoji: &discordgo.ComponentEmoji{Name: "ℹ️"}},
					{Label: helpBanFlow, Value: helpBanFlow, Description: "How to use the main /ban_player command.", Emoji: &discordgo.ComponentEmoji{Name: "⚖️"}},
					{Label: helpHistory, Value: helpHistory, Description: "How to look up player and ban history.", Emoji: &discordgo.ComponentEmoji{Name: "📜"}},
					{Label: helpAdmin, Value: helpAdmin, Description: "Commands for server administrators.", Emoji: &discordgo.ComponentEmoji{Name: "⚙️"}},
				},
			},
		}},
	}
}

func helpCategoryEmbed(category string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:  colorInfo,
		Footer: &discordgo.MessageEmbedFooter{Text: "Bot Help | Selected: " + category},
	}

	switch category {
	case helpBanFlow:
		embed.Title = "⚖️ Ban & Unban Process"
		embed.Description = "The main command for all bans, unbans, and custom punishments is `/ban_player`."
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name: "`/ban_player` Workflow",
				Value: "This command starts an interactive form to create a ban/unban request.\n" +
					"1. **Search:** Provide a player's name.\n" +
					"2. **Select Player:** Choose the correct player from the list.\n" +
					"3. **Select Offense:** Choose a predefined offense, a custom one, or an unban option.\n" +
					"4. **Select Strike/Sanction:** Follow the prompts for punishment details.\n" +
					"5. **Link Transcript:** The bot asks if this is from a 'Report' or a 'Ticket' and finds recent `.html` files in matching channels. You can also pick 'Witness' or 'Add Later'.\n" +
					"6. **Submit:** Your request is posted for moderator approval.",
			},
			{
				Name: "Special Cases",
				Value: "• **Custom Punishment:** Allows you to enter a free-form reason and ban length.\n" +
					"• **Unban:** Prompts you to select one of the player's existing bans to reverse.",
			},
		}

	case helpHistory:
		embed.Title = "📜 History & Searching Commands"
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "`/banhistory buid:<BohemiaUID>`", Value: "Shows the complete, paginated ban history for a specific player."},
			{Name: "`/recentbans [limit]`", Value: "Displays the most recent ban submissions approved by moderators. Default is 10."},
			{Name: "`/searchban term:<text>`", Value: "Looks up a ban by its exact number, or searches player names, BUIDs and offense text."},
			{Name: "`/banstats`", Value: "Shows ledger-wide totals: bans, unbans, active strikes and more."},
			{Name: "`/repeatoffenders [min_bans]`", Value: "Lists players with multiple bans, most-banned first."},
			{Name: "`/find_player`", Value: "A utility command to quickly search for a player's BUID by name."},
		}

	case helpAdmin:
		embed.Title = "⚙️ Admin & Setup Commands"
		embed.Description = "⚠️ **These commands require Administrator permissions.**"
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "`/setup roles [add_role] [remove_role]`", Value: "Manages which roles are considered 'Moderators' who can approve/deny bans."},
			{Name: "`/setup channel channel:<#channel>`", Value: "Sets the specific channel where new ban requests are posted for review."},
			{Name: "`/setup check`", Value: "Displays the current configuration and checks if the bot has the required permissions."},
			{Name: "`/delete_ban ban_number:<ID>`", Value: "Permanently deletes a ban record from the database. This action is irreversible."},
		}

	default:
		embed.Title = "ℹ️ Bot Overview"
		embed.Description = "Welcome to the Ban Management Bot!\n\n" +
			"This bot streamlines banning players, tracking their history, and managing moderation actions in a fair and consistent way.\n\n" +
			"**Key Features:**\n" +
			"• Step-by-step ban form to ensure all information is captured.\n" +
			"• Moderation queue where all bans must be approved.\n" +
			"• Complete ban/unban history for every player.\n" +
			"• Interactive commands for searching and configuration.\n\n" +
			"Use the dropdown menu below to explore specific command categories."
		embed.Footer.Text = "Bot Help | Selected: " + helpOverview
	}

	return embed
}
