package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"news_bot/internal/config"
	"news_bot/internal/pipeline"
	"news_bot/internal/responder"
	"news_bot/internal/storage"
)

// session is the subset of the Discord API the bot uses.
type session interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Dispatcher runs a dispatch cycle restricted to one guild. Satisfied by
// *pipeline.Pipeline.
type Dispatcher interface {
	RunCycleFor(ctx context.Context, guildID string) *pipeline.Report
}

// Bot is the Discord bot: it handles slash commands and inbound
// messages, and delivers article notifications for the pipeline.
type Bot struct {
	session   session
	store     storage.Storage
	responder *responder.Responder
	dispatch  Dispatcher
	cfg       *config.Config
	log       *slog.Logger

	mu        sync.Mutex
	cooldowns map[string]time.Time // per-user /update cooldown
	now       func() time.Time
}

// New creates a Bot with the given Discord token, storage, and config.
func New(token string, store storage.Storage, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{
		session:   s,
		store:     store,
		responder: responder.New(store, log),
		cfg:       cfg,
		log:       log,
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}, nil
}

// SetDispatcher wires the dispatch pipeline. Set after construction
// because the pipeline posts through this bot's session.
func (b *Bot) SetDispatcher(d Dispatcher) {
	b.dispatch = d
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleMessage)
	b.session.AddHandler(b.handleGuildCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer func() { _ = b.session.Close() }()

	b.log.Info("connected to gateway")
	<-ctx.Done()
	return nil
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	if _, err := b.session.ApplicationCommandBulkOverwrite(r.User.ID, "", commands); err != nil {
		b.log.Error("register commands", "error", err)
		return
	}
	b.log.Info("logged in", "user", r.User.Username)
}

// handleGuildCreate sends setup instructions to the owner of a newly
// joined guild. GuildCreate also fires for every guild on connect, so
// only a recent join triggers the message.
func (b *Bot) handleGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.JoinedAt.IsZero() || b.now().Sub(g.JoinedAt) > time.Minute {
		return
	}

	dm, err := b.session.UserChannelCreate(g.OwnerID)
	if err != nil {
		b.log.Warn("open welcome DM", "guild", g.ID, "error", err)
		return
	}
	if _, err := b.session.ChannelMessageSend(dm.ID, welcomeMessage); err != nil {
		b.log.Warn("send welcome DM", "guild", g.ID, "error", err)
		return
	}
	b.log.Info("joined new guild", "guild", g.ID)
}

// handleMessage runs the pattern auto-responder over guild messages.
func (b *Bot) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	parentID := ""
	if ch, err := b.session.Channel(m.ChannelID); err == nil && ch.IsThread() {
		parentID = ch.ParentID
	}

	ctx := context.Background()
	reply, ok := b.responder.Reply(ctx, m.GuildID, m.ChannelID, parentID, m.Content)
	if !ok {
		return
	}

	msg := &discordgo.MessageSend{
		Content:   reply,
		Reference: m.Reference(),
	}
	if _, err := b.session.ChannelMessageSendComplex(m.ChannelID, msg); err != nil {
		b.log.Error("send pattern reply", "guild", m.GuildID, "channel", m.ChannelID, "error", err)
		return
	}
	b.log.Info("pattern reply sent", "guild", m.GuildID, "channel", m.ChannelID)
}

// cooldownRemaining reports how long a user must wait before the next
// manual update, and records the attempt when none is needed.
func (b *Bot) cooldownRemaining(userID string) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if last, ok := b.cooldowns[userID]; ok {
		wait := time.Duration(b.cfg.UpdateCooldown)*time.Second - now.Sub(last)
		if wait > 0 {
			return wait
		}
	}
	b.cooldowns[userID] = now
	return 0
}
