package bot

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mfl-ops/banbot/src/discord"
	"github.com/mfl-ops/banbot/src/shared/data"
)

// handleSetup manages the moderator role list and the pending-review
// channel. Administrator only; the permission gate is server-side and not
// just a command default.
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdministrator(i) {
		respondText(s, i, "❌ You must be an Administrator to use setup commands.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		respondText(s, i, "A setup subcommand is required.")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "roles":
		b.handleSetupRoles(s, i, sub)
	case "channel":
		b.handleSetupChannel(s, i, sub)
	case "check":
		b.handleSetupCheck(s, i)
	default:
		respondText(s, i, fmt.Sprintf("Unknown setup subcommand %q.", sub.Name))
	}
}

func isAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func (b *Bot) handleSetupRoles(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var addRole, removeRole string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "add_role":
			addRole = opt.RoleValue(s, b.config.GuildID).ID
		case "remove_role":
			removeRole = opt.RoleValue(s, b.config.GuildID).ID
		}
	}

	current := discord.SplitRoleList(data.GetSetting(settingModeratorRoles))

	if addRole == "" && removeRole == "" {
		if len(current) == 0 {
			respondText(s, i, "**Current Moderator Roles:**\nNo moderator roles set.")
			return
		}
		mentions := make([]string, 0, len(current))
		for _, id := range current {
			mentions = append(mentions, "<@&"+id+">")
		}
		respondText(s, i, "**Current Moderator Roles:**\n"+strings.Join(mentions, "\n"))
		return
	}

	if addRole != "" {
		for _, id := range current {
			if id == addRole {
				respondText(s, i, fmt.Sprintf("⚠️ Role <@&%s> is already a Moderator.", addRole))
				return
			}
		}
		current = append(current, addRole)
		if err := b.saveModeratorRoles(current); err != nil {
			respondText(s, i, "Could not save the role configuration.")
			return
		}
		respondText(s, i, fmt.Sprintf("✅ Role <@&%s> has been added as a Moderator.", addRole))
		return
	}

	kept := current[:0]
	found := false
	for _, id := range current {
		if id == removeRole {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		respondText(s, i, fmt.Sprintf("⚠️ Role <@&%s> was not a Moderator.", removeRole))
		return
	}
	if err := b.saveModeratorRoles(kept); err != nil {
		respondText(s, i, "Could not save the role configuration.")
		return
	}
	respondText(s, i, fmt.Sprintf("🗑️ Role <@&%s> has been removed as a Moderator.", removeRole))
}

func (b *Bot) saveModeratorRoles(ids []string) error {
	err := data.SetSetting(b.db, settingModeratorRoles, strings.Join(ids, ","))
	if err != nil {
		log.Printf("bot: save moderator roles: %v", err)
	}
	return err
}

func (b *Bot) handleSetupChannel(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var channelID string
	for _, opt := range sub.Options {
		if opt.Name == "channel" {
			channelID = opt.ChannelValue(s).ID
		}
	}
	if channelID == "" {
		respondText(s, i, "A channel is required.")
		return
	}

	if err := data.SetSetting(b.db, settingPendingChannel, channelID); err != nil {
		log.Printf("bot: save pending channel: %v", err)
		respondText(s, i, "Could not save the channel configuration.")
		return
	}
	respondText(s, i, fmt.Sprintf("✅ Pending ban requests will now be sent to <#%s>.", channelID))
}

func (b *Bot) handleSetupCheck(s *discordgo.Session, i *discordgo.InteractionCreate) {
	roles := discord.SplitRoleList(data.GetSetting(settingModeratorRoles))
	roleList := "None set. Use `/setup roles`."
	if len(roles) > 0 {
		mentions := make([]string, 0, len(roles))
		for _, id := range roles {
			mentions = append(mentions, "<@&"+id+">")
		}
		roleList = strings.Join(mentions, "\n")
	}

	channelID := data.GetSetting(settingPendingChannel)
	channelText := "None set. Defaults to the submitting channel."
	permsStatus := "Not set."
	if channelID != "" {
		channelText = "<#" + channelID + ">"
		permsStatus = checkChannelPermissions(s, channelID)
	}

	dbStatus := "✅ OK"
	if err := b.ledger.Ping(); err != nil {
		dbStatus = "❌ Unreachable: " + err.Error()
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: "Bot Configuration Status",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Moderator Roles", Value: roleList},
			{Name: "Pending Bans Channel", Value: channelText},
			{Name: "Channel Permissions Check", Value: permsStatus},
			{Name: "Ledger Database", Value: dbStatus},
		},
	}, nil)
}

func checkChannelPermissions(s *discordgo.Session, channelID string) string {
	perms, err := s.UserChannelPermissions(s.State.User.ID, channelID)
	if err != nil {
		return "⚠️ Channel not found."
	}
	need := int64(discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks)
	if perms&need == need {
		return "✅ OK"
	}
	return "❌ **Missing Permissions!** (Need Send Messages & Embed Links)"
}
