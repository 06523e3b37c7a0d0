// Package transcripts discovers exported HTML transcripts posted into report
// and ticket channels so the ban form can attach evidence links.
package transcripts

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	maxTranscripts   = 5
	scanHistoryLimit = 30
)

var numberPattern = regexp.MustCompile(`\d+`)

// Transcript is one discovered transcript attachment.
type Transcript struct {
	Label string
	URL   string // jump link to the message carrying the attachment
}

// Markdown renders the transcript as a suppressed-embed markdown link,
// e.g. [Report-0042](<https://discord.com/channels/...>).
func (t Transcript) Markdown() string {
	return fmt.Sprintf("[%s](<%s>)", t.Label, t.URL)
}

// Source finds recent transcripts for a channel-name keyword such as
// "report" or "ticket". An empty result is not an error.
type Source interface {
	FindTranscripts(keyword string) ([]Transcript, error)
}

// ChannelSource scans the first guild text channel whose name contains the
// keyword for messages with .html attachments.
type ChannelSource struct {
	session *discordgo.Session
	guildID string
}

func NewChannelSource(session *discordgo.Session, guildID string) *ChannelSource {
	return &ChannelSource{session: session, guildID: guildID}
}

func (c *ChannelSource) FindTranscripts(keyword string) ([]Transcript, error) {
	channels, err := c.session.GuildChannels(c.guildID)
	if err != nil {
		return nil, fmt.Errorf("list guild channels: %w", err)
	}

	channel := matchChannel(channels, keyword)
	if channel == nil {
		return nil, nil
	}

	messages, err := c.session.ChannelMessages(channel.ID, scanHistoryLimit, "", "", "")
	if err != nil {
		// Usually missing history permission; treat as no transcripts.
		log.Printf("transcripts: cannot read channel %s: %v", channel.Name, err)
		return nil, nil
	}

	var found []Transcript
	for _, msg := range messages {
		for _, att := range msg.Attachments {
			if !strings.HasSuffix(att.Filename, ".html") {
				continue
			}
			found = append(found, Transcript{
				Label: labelFor(att.Filename, channel.Name),
				URL:   jumpURL(c.guildID, channel.ID, msg.ID),
			})
			break
		}
		if len(found) >= maxTranscripts {
			break
		}
	}
	return found, nil
}

func matchChannel(channels []*discordgo.Channel, keyword string) *discordgo.Channel {
	keyword = strings.ToLower(keyword)
	for _, channel := range channels {
		if channel.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.Contains(strings.ToLower(channel.Name), keyword) {
			return channel
		}
	}
	return nil
}

// labelFor derives a short label from the attachment filename. Filenames
// carrying a number become "Report-0042" or "Ticket-0042" depending on the
// channel; anything else falls back to the (truncated) filename.
func labelFor(filename, channelName string) string {
	digits := numberPattern.FindString(filename)
	if digits == "" {
		if len(filename) > 80 {
			filename = filename[:80]
		}
		return "File: " + filename
	}
	number, _ := strconv.Atoi(digits)
	prefix := "Report"
	if strings.Contains(strings.ToLower(channelName), "ticket") {
		prefix = "Ticket"
	}
	return fmt.Sprintf("%s-%04d", prefix, number)
}

func jumpURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
