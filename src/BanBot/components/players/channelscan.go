package players

import (
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const scanMessagesPerChannel = 100

// ChannelScanner recovers player candidates from guild text channels where
// profile lines have been posted, e.g. by server-side tooling:
//
//	Name = Smith | Level = 12 | Last Played = 5H | BohemiaUID = 1234abcd
//
// It exists as a fallback for players the profile database does not know.
type ChannelScanner struct {
	session *discordgo.Session
	guildID string
}

func NewChannelScanner(session *discordgo.Session, guildID string) *ChannelScanner {
	return &ChannelScanner{session: session, guildID: guildID}
}

func (c *ChannelScanner) FindPlayers(term string) ([]Player, error) {
	channels, err := c.session.GuildChannels(c.guildID)
	if err != nil {
		return nil, err
	}

	termLower := strings.ToLower(term)
	var found []Player
	seen := make(map[string]bool)

	for _, channel := range channels {
		if channel.Type != discordgo.ChannelTypeGuildText {
			continue
		}

		messages, err := c.session.ChannelMessages(channel.ID, scanMessagesPerChannel, "", "", "")
		if err != nil {
			// Typically missing read permission; skip the channel.
			log.Printf("players: cannot scan channel %s: %v", channel.Name, err)
			continue
		}

		for _, msg := range messages {
			if !strings.Contains(msg.Content, "Name = ") || !strings.Contains(msg.Content, "BohemiaUID = ") {
				continue
			}
			for _, line := range strings.Split(strings.ReplaceAll(msg.Content, ",", "\n"), "\n") {
				p, ok := parseProfileLine(line)
				if !ok || !strings.Contains(strings.ToLower(p.Name), termLower) {
					continue
				}
				if seen[p.BUID] {
					continue
				}
				seen[p.BUID] = true
				found = append(found, p)
				if len(found) >= maxResults {
					return found, nil
				}
			}
		}
	}

	return found, nil
}

func parseProfileLine(line string) (Player, bool) {
	fields := make(map[string]string)
	for _, part := range strings.Split(strings.TrimSpace(line), " | ") {
		k, v, ok := strings.Cut(part, " = ")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	for _, required := range []string{"Name", "Level", "Last Played", "BohemiaUID"} {
		if fields[required] == "" {
			return Player{}, false
		}
	}

	level, _ := strconv.Atoi(fields["Level"])
	return Player{
		Name:       fields["Name"],
		Level:      level,
		LastPlayed: fields["Last Played"],
		BUID:       fields["BohemiaUID"],
	}, true
}
