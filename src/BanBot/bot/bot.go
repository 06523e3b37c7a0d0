package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
	"github.com/mfl-ops/banbot/src/BanBot/components/players"
	"github.com/mfl-ops/banbot/src/BanBot/components/policy"
	"github.com/mfl-ops/banbot/src/BanBot/components/review"
	"github.com/mfl-ops/banbot/src/BanBot/components/session"
	"github.com/mfl-ops/banbot/src/BanBot/components/transcripts"
	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
	"github.com/mfl-ops/banbot/src/discord"
	"github.com/mfl-ops/banbot/src/shared/data"
)

// Settings keys managed through /setup.
const (
	settingModeratorRoles = "moderator_roles"
	settingPendingChannel = "pending_bans_channel"
)

const formTTL = 5 * time.Minute

type Config struct {
	Token    string
	GuildID  string
	DB       *gorm.DB
	PlayerDB *gorm.DB // game profile database, read-only; may be nil
	Redis    *redis.Client
}

type Bot struct {
	session  *discordgo.Session
	db       *gorm.DB
	config   Config
	ledger   *ledger.Store
	players  players.Source
	sessions *session.Store
	engine   *workflow.Engine
	gate     *review.Gate
	limiter  *session.RateLimiter
	timers   *promptTimers
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(config Config) (*Bot, error) {
	if err := data.LoadSettings(config.DB); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		session: dg,
		db:      config.DB,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := bot.initializeComponents(); err != nil {
		cancel()
		return nil, err
	}

	bot.registerHandlers()

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return bot, nil
}

func (b *Bot) initializeComponents() error {
	store, err := ledger.NewStore(b.db)
	if err != nil {
		return fmt.Errorf("create ledger store: %w", err)
	}
	b.ledger = store

	b.sessions = session.NewStore(formTTL)
	b.limiter = session.NewRateLimiter(10 * time.Second)
	b.timers = newPromptTimers()

	// Player lookup: game database first, channel scan as fallback. Without
	// a game DB the scan is the only source.
	var sources players.Chain
	if b.config.PlayerDB != nil {
		sources = append(sources, players.NewDBSource(b.config.PlayerDB))
	}
	sources = append(sources, players.NewChannelScanner(b.session, b.config.GuildID))
	b.players = sources

	b.engine = workflow.NewEngine(
		b.sessions,
		policy.Default(),
		store,
		sources,
		transcripts.NewChannelSource(b.session, b.config.GuildID),
	)

	var events review.EventSink
	if b.config.Redis != nil {
		events = data.NewDecisionStream(b.config.Redis)
	}
	b.gate = review.NewGate(store, b.authorizer(), events)

	return nil
}

// authorizer checks the moderator role list maintained through /setup.
func (b *Bot) authorizer() review.Authorizer {
	return authorizerFunc(func(actorID string) bool {
		return discord.HasAnyRole(b.session, b.config.GuildID, actorID, data.GetSetting(settingModeratorRoles))
	})
}

type authorizerFunc func(actorID string) bool

func (f authorizerFunc) IsAuthorized(actorID string) bool { return f(actorID) }

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteraction)
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
	b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	if err := discord.RegisterSlashCommands(s, b.config.GuildID); err != nil {
		log.Printf("Failed to register slash commands: %v", err)
	}

	// Evict abandoned forms and undecided review payloads for the process
	// lifetime.
	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		b.sessions.StartJanitor(b.ctx)
	}()
	go func() {
		defer b.wg.Done()
		b.gate.StartJanitor(b.ctx)
	}()
}
