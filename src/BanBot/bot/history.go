package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
)

const historyPageSize = 4

const (
	colorInfo   = 0x3498DB // blue
	colorWarn   = 0xF1C40F // yellow
	colorRecent = 0x9B59B6 // purple
	colorBan    = 0x7D1F1F
)

// commandOptions flattens an interaction's options into a name -> option map.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}
	return opts
}

func (b *Bot) handleBanHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := commandOptions(i)
	buidOpt, ok := opts["buid"]
	if !ok {
		respondText(s, i, "A BUID is required.")
		return
	}
	buid := strings.TrimSpace(buidOpt.StringValue())

	history, err := b.ledger.PlayerHistory(buid)
	if err != nil {
		log.Printf("bot: ban history: %v", err)
		respondText(s, i, "Could not load ban history right now.")
		return
	}
	if len(history) == 0 {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "No History Found",
			Description: fmt.Sprintf("No ban history found for BUID: `%s`", buid),
			Color:       colorWarn,
		}, nil)
		return
	}

	embed := historyPageEmbed(history, buid, 0)
	strikes, err := b.ledger.ActiveStrikeCount(buid)
	if err == nil {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Active Strikes", Value: strconv.Itoa(strikes), Inline: true},
			&discordgo.MessageEmbedField{Name: "Total Records", Value: strconv.Itoa(len(history)), Inline: true},
		)
	}

	respondEmbed(s, i, embed, historyPageButtons(buid, 0, totalPages(len(history))))
}

// handleHistoryPage re-queries the ledger and renders the requested page.
// The custom id payload is "<direction>:<page>:<buid>".
func (b *Bot) handleHistoryPage(s *discordgo.Session, i *discordgo.InteractionCreate, payload string) {
	parts := strings.SplitN(payload, ":", 3)
	if len(parts) != 3 {
		log.Printf("bot: bad history page id %q", payload)
		return
	}
	direction := parts[0]
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return
	}
	buid := parts[2]

	if direction == "next" {
		page++
	} else if page > 0 {
		page--
	}

	history, ledgerErr := b.ledger.PlayerHistory(buid)
	if ledgerErr != nil || len(history) == 0 {
		respondText(s, i, "Could not load ban history right now.")
		return
	}

	pages := totalPages(len(history))
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}

	embed := historyPageEmbed(history, buid, page)
	updateMessage(s, i, "", []*discordgo.MessageEmbed{embed}, historyPageButtons(buid, page, pages))
}

func totalPages(records int) int {
	pages := (records + historyPageSize - 1) / historyPageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func historyPageEmbed(history []ledger.BanRecord, buid string, page int) *discordgo.MessageEmbed {
	start := page * historyPageSize
	end := start + historyPageSize
	if end > len(history) {
		end = len(history)
	}
	playerName := history[0].PlayerName

	embed := &discordgo.MessageEmbed{
		Title:       "Ban History for " + playerName,
		Description: fmt.Sprintf("BUID: `%s`", buid),
		Color:       colorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d of %d", page+1, totalPages(len(history)))},
	}

	for _, rec := range history[start:end] {
		marker := "⚖️"
		if rec.IsUnban {
			marker = "🔓"
		}
		removed := ""
		if rec.StrikeRemoved {
			removed = " (Strike Removed)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s on %s%s", marker, rec.BanNumber, rec.Timestamp.Format("2006-01-02"), removed),
			Value: fmt.Sprintf("**Offense:** %s\n**Punishment:** (%s) %s", rec.Offense, rec.Strike, rec.Sanction),
		})
	}
	return embed
}

func historyPageButtons(buid string, page, pages int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "⬅️ Previous",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("%sprev:%d:%s", idHistoryPage, page, buid),
				Disabled: page == 0,
			},
			discordgo.Button{
				Label:    "Next ➡️",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("%snext:%d:%s", idHistoryPage, page, buid),
				Disabled: page >= pages-1,
			},
		}},
	}
}

func (b *Bot) handleRecentBans(s *discordgo.Session, i *discordgo.InteractionCreate) {
	limit := 10
	if opt, ok := commandOptions(i)["limit"]; ok {
		limit = int(opt.IntValue())
	}

	recent, err := b.ledger.Recent(limit)
	if err != nil {
		log.Printf("bot: recent bans: %v", err)
		respondText(s, i, "Could not load recent bans right now.")
		return
	}
	if len(recent) == 0 {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "No Recent Bans",
			Description: "No recent ban submissions found in the database.",
			Color:       colorWarn,
		}, nil)
		return
	}

	var description strings.Builder
	for _, rec := range recent {
		marker := ""
		if rec.IsUnban {
			marker = "🔓 "
		}
		entry := fmt.Sprintf("**%s%s** | %s | **%s**\nOffense: *%s*\n\n",
			marker, rec.BanNumber, rec.Timestamp.Format("2006-01-02"), rec.PlayerName, firstN(rec.Offense, 70))
		if description.Len()+len(entry) > 4000 {
			description.WriteString("\n... (list truncated)")
			break
		}
		description.WriteString(entry)
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Recent Ban Submissions (Last %d)", len(recent)),
		Description: description.String(),
		Color:       colorRecent,
	}, nil)
}

// handleSearchBan resolves an exact ban number first; anything else is a
// substring search over player name, BUID, number and offense text.
func (b *Bot) handleSearchBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := commandOptions(i)
	termOpt, ok := opts["term"]
	if !ok {
		respondText(s, i, "A search term is required.")
		return
	}
	term := strings.TrimSpace(termOpt.StringValue())

	rec, err := b.ledger.ByNumber(term)
	if err != nil {
		log.Printf("bot: search ban: %v", err)
		respondText(s, i, "Could not search the ledger right now.")
		return
	}
	if rec != nil {
		respondEmbed(s, i, banDetailEmbed(rec), nil)
		return
	}

	matches, err := b.ledger.Search(term, 0)
	if err != nil {
		log.Printf("bot: search ban: %v", err)
		respondText(s, i, "Could not search the ledger right now.")
		return
	}
	if len(matches) == 0 {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Ban Not Found",
			Description: fmt.Sprintf("No ban matched: `%s`", term),
			Color:       colorDenied,
		}, nil)
		return
	}
	if len(matches) == 1 {
		respondEmbed(s, i, banDetailEmbed(&matches[0]), nil)
		return
	}

	var description strings.Builder
	for _, m := range matches {
		description.WriteString(fmt.Sprintf("**%s** | %s | %s — %s\n",
			m.BanNumber, m.Timestamp.Format("2006-01-02"), m.PlayerName, firstN(m.Offense, 50)))
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Matches for '%s'", term),
		Description: description.String(),
		Color:       colorInfo,
	}, nil)
}

func banDetailEmbed(rec *ledger.BanRecord) *discordgo.MessageEmbed {
	color := colorBan
	author := "BAN Record"
	if rec.IsUnban {
		color = colorPending
		author = "UNBAN Record"
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Details for Ban/Unban: " + rec.BanNumber,
		Color:     color,
		Author:    &discordgo.MessageEmbedAuthor{Name: author},
		Timestamp: rec.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Player", Value: rec.PlayerName, Inline: true},
			{Name: "BUID", Value: "`" + rec.BUID + "`", Inline: true},
			{Name: "Submitted By", Value: "<@" + rec.SubmittedBy + ">", Inline: true},
			{Name: "Offense/Reason", Value: rec.Offense, Inline: false},
			{Name: "Strike Level", Value: rec.Strike, Inline: true},
			{Name: "Sanction/Action", Value: rec.Sanction, Inline: true},
		},
	}

	if providedTranscript(rec.Transcript) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Transcript", Value: rec.Transcript, Inline: false})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Transcript", Value: "Not Provided", Inline: true})
	}
	if rec.StrikeRemoved {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "⚠️ Status", Value: "Strike Associated With This Ban Was Removed", Inline: true,
		})
	}
	return embed
}

func providedTranscript(transcript string) bool {
	switch strings.ToLower(transcript) {
	case "", "n/a", "none", "n/a (no transcripts found)",
		"will add later / no transcript", "witness statement (no html)":
		return false
	}
	return true
}

func (b *Bot) handleBanStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	stats, err := b.ledger.Stats()
	if err != nil {
		log.Printf("bot: ban stats: %v", err)
		respondText(s, i, "Could not load ledger statistics right now.")
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: "Ban Ledger Statistics",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total Bans", Value: strconv.FormatInt(stats.TotalBans, 10), Inline: true},
			{Name: "Total Unbans", Value: strconv.FormatInt(stats.TotalUnbans, 10), Inline: true},
			{Name: "Active Strikes", Value: strconv.FormatInt(stats.ActiveStrikes, 10), Inline: true},
			{Name: "Unique Players Banned", Value: strconv.FormatInt(stats.UniquePlayersBanned, 10), Inline: true},
			{Name: "Bans This Month", Value: strconv.FormatInt(stats.BansThisMonth, 10), Inline: true},
		},
	}, nil)
}

func (b *Bot) handleRepeatOffenders(s *discordgo.Session, i *discordgo.InteractionCreate) {
	minBans := 2
	if opt, ok := commandOptions(i)["min_bans"]; ok {
		minBans = int(opt.IntValue())
	}

	offenders, err := b.ledger.RepeatOffenders(minBans)
	if err != nil {
		log.Printf("bot: repeat offenders: %v", err)
		respondText(s, i, "Could not load the repeat offender report right now.")
		return
	}
	if len(offenders) == 0 {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "No Repeat Offenders",
			Description: fmt.Sprintf("No players with %d or more bans.", minBans),
			Color:       colorWarn,
		}, nil)
		return
	}

	var description strings.Builder
	for _, o := range offenders {
		description.WriteString(fmt.Sprintf("**%s** (`%s`) — %d bans, %d active strikes\n",
			o.PlayerName, o.BUID, o.TotalBans, o.ActiveStrikes))
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Repeat Offenders (%d+ bans)", minBans),
		Description: description.String(),
		Color:       colorBan,
	}, nil)
}

func (b *Bot) handleDeleteBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.authorizer().IsAuthorized(interactionUserID(i)) {
		respondText(s, i, "❌ You do not have the necessary role to use this command.")
		return
	}

	opts := commandOptions(i)
	numberOpt, ok := opts["ban_number"]
	if !ok {
		respondText(s, i, "A ban number is required.")
		return
	}
	banNumber := strings.TrimSpace(numberOpt.StringValue())

	deleted, err := b.ledger.Delete(banNumber)
	if err != nil {
		log.Printf("bot: delete ban: %v", err)
		respondText(s, i, fmt.Sprintf("⚠️ Could not delete ban record `%s`: storage error.", banNumber))
		return
	}
	if !deleted {
		respondText(s, i, fmt.Sprintf("⚠️ Could not delete ban record `%s`. It might not exist.", banNumber))
		return
	}
	respondText(s, i, fmt.Sprintf("🗑️ Ban record `%s` has been deleted.", banNumber))
}

// firstN shortens s to at most n characters, slicing on rune boundaries so
// non-ASCII names never produce broken UTF-8 in embeds.
func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
