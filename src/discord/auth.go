package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HasRole checks whether a user has a role in a guild. Empty roleID always returns true.
func HasRole(s *discordgo.Session, guildID, userID, roleID string) bool {
	if roleID == "" {
		return true
	}
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return false
	}
	for _, role := range member.Roles {
		if role == roleID {
			return true
		}
	}
	return false
}

// HasAnyRole checks whether a user holds at least one of the comma-separated
// role IDs. An empty list denies: moderation actions require an explicit
// moderator role configuration.
func HasAnyRole(s *discordgo.Session, guildID, userID, roleIDs string) bool {
	ids := SplitRoleList(roleIDs)
	if len(ids) == 0 {
		return false
	}

	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return false
	}

	for _, role := range member.Roles {
		for _, id := range ids {
			if role == id {
				return true
			}
		}
	}
	return false
}

// SplitRoleList parses the stored moderator_roles setting value.
func SplitRoleList(roleIDs string) []string {
	var ids []string
	for _, id := range strings.Split(roleIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
