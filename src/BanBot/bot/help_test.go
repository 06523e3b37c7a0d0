package bot

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestHelpCategoryEmbeds(t *testing.T) {
	overview := helpCategoryEmbed(helpOverview)
	if !strings.Contains(overview.Description, "Ban Management Bot") {
		t.Fatalf("overview description: %q", overview.Description)
	}

	banFlow := helpCategoryEmbed(helpBanFlow)
	if !strings.Contains(banFlow.Description, "/ban_player") {
		t.Fatalf("ban flow description: %q", banFlow.Description)
	}
	if len(banFlow.Fields) != 2 {
		t.Fatalf("ban flow has %d fields", len(banFlow.Fields))
	}

	history := helpCategoryEmbed(helpHistory)
	var names []string
	for _, f := range history.Fields {
		names = append(names, f.Name)
	}
	joined := strings.Join(names, " ")
	for _, cmd := range []string{"/banhistory", "/recentbans", "/searchban", "/banstats", "/repeatoffenders", "/find_player"} {
		if !strings.Contains(joined, cmd) {
			t.Fatalf("history help missing %s: %v", cmd, names)
		}
	}

	admin := helpCategoryEmbed(helpAdmin)
	if !strings.Contains(admin.Description, "Administrator") {
		t.Fatalf("admin description: %q", admin.Description)
	}
	if admin.Footer.Text != "Bot Help | Selected: "+helpAdmin {
		t.Fatalf("footer: %q", admin.Footer.Text)
	}
}

func TestHelpUnknownCategoryFallsBackToOverview(t *testing.T) {
	embed := helpCategoryEmbed("bogus")
	if embed.Title != "ℹ️ Bot Overview" {
		t.Fatalf("got title %q", embed.Title)
	}
	if embed.Footer.Text != "Bot Help | Selected: "+helpOverview {
		t.Fatalf("footer: %q", embed.Footer.Text)
	}
}

func TestHelpComponentsCoverEveryCategory(t *testing.T) {
	components := helpComponents()
	if len(components) != 1 {
		t.Fatalf("got %d component rows", len(components))
	}
	row, ok := components[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("unexpected component type %T", components[0])
	}
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	if !ok {
		t.Fatalf("unexpected component type %T", row.Components[0])
	}
	if menu.CustomID != idHelpCategory {
		t.Fatalf("custom id %q", menu.CustomID)
	}

	want := []string{helpOverview, helpBanFlow, helpHistory, helpAdmin}
	if len(menu.Options) != len(want) {
		t.Fatalf("got %d options", len(menu.Options))
	}
	for n, opt := range menu.Options {
		if opt.Value != want[n] {
			t.Fatalf("option %d = %q, want %q", n, opt.Value, want[n])
		}
	}
}
