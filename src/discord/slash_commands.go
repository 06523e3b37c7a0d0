package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandBanPlayer       = "ban_player"
	CommandFindPlayer      = "find_player"
	CommandBanHistory      = "banhistory"
	CommandRecentBans      = "recentbans"
	CommandSearchBan       = "searchban"
	CommandBanStats        = "banstats"
	CommandRepeatOffenders = "repeatoffenders"
	CommandDeleteBan       = "delete_ban"
	CommandSetup           = "setup"
	CommandHelp            = "help"
)

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandBanPlayer: {
		Name:        CommandBanPlayer,
		Description: "Start the ban or unban process for a player",
	},
	CommandFindPlayer: {
		Name:        CommandFindPlayer,
		Description: "Search for a player in the database or channels",
	},
	CommandBanHistory: {
		Name:        CommandBanHistory,
		Description: "View ban history for a player",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "buid",
				Description: "The Bohemia UID of the player to check",
				Required:    true,
			},
		},
	},
	CommandRecentBans: {
		Name:        CommandRecentBans,
		Description: "View recent ban submissions",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "Number of recent bans to show (max 25)",
				Required:    false,
			},
		},
	},
	CommandSearchBan: {
		Name:        CommandSearchBan,
		Description: "Look up a ban by number, or search player name, BUID or offense",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "term",
				Description: "Ban number (e.g. 0042 or UNBAN-0001) or search text",
				Required:    true,
			},
		},
	},
	CommandBanStats: {
		Name:        CommandBanStats,
		Description: "Show overall ban ledger statistics",
	},
	CommandRepeatOffenders: {
		Name:        CommandRepeatOffenders,
		Description: "List players with multiple bans",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "min_bans",
				Description: "Minimum ban count to include (default 2)",
				Required:    false,
			},
		},
	},
	CommandDeleteBan: {
		Name:        CommandDeleteBan,
		Description: "ADMIN: delete a ban record by its ban number",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "ban_number",
				Description: "The unique ban number to delete",
				Required:    true,
			},
		},
	},
	CommandSetup: {
		Name:        CommandSetup,
		Description: "Configure bot settings (Admin only)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "roles",
				Description: "Add or remove moderator roles, or view the current list",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "add_role",
						Description: "Role allowed to approve bans",
						Required:    false,
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "remove_role",
						Description: "Role to remove from the moderator list",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "channel",
				Description: "Set the channel for pending ban requests",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel where new requests are posted for review",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "check",
				Description: "Check the current bot configuration and permissions",
			},
		},
	},
	CommandHelp: {
		Name:        CommandHelp,
		Description: "Explains how to use the bot and its commands",
	},
}

var defaultCommandOrder = []string{
	CommandBanPlayer,
	CommandFindPlayer,
	CommandBanHistory,
	CommandRecentBans,
	CommandSearchBan,
	CommandBanStats,
	CommandRepeatOffenders,
	CommandDeleteBan,
	CommandSetup,
	CommandHelp,
}

// RegisterSlashCommands registers the requested slash commands for a guild.
// When no command names are provided, all known commands are registered.
func RegisterSlashCommands(s *discordgo.Session, guildID string, names ...string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to register slash commands")
	}

	if len(names) == 0 {
		names = defaultCommandOrder
	}

	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			log.Printf("discord: unknown slash command %q", name)
			continue
		}

		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition)
		if err != nil {
			if isDuplicateCommandError(err) {
				log.Printf("discord: slash command %q already registered", name)
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			log.Printf("discord: failed to register command %q: %v", name, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("discord: slash command registration errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

// DeleteSlashCommands removes all registered slash commands for a guild.
func DeleteSlashCommands(s *discordgo.Session, guildID string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to delete slash commands")
	}

	commands, err := s.ApplicationCommands(s.State.User.ID, guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID); err != nil {
			return err
		}
	}

	return nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			msg := strings.ToLower(restErr.Message.Message)
			if strings.Contains(msg, "already exists") {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}
