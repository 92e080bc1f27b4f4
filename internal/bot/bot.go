// Package bot connects to Telegram via the Bot API using long polling
// and routes updates to the search, archive and download components.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/time/rate"

	"github.com/technicalserena/tunegram/internal/archive"
	"github.com/technicalserena/tunegram/internal/config"
	"github.com/technicalserena/tunegram/internal/download"
	"github.com/technicalserena/tunegram/internal/gate"
	"github.com/technicalserena/tunegram/internal/search"
	"github.com/technicalserena/tunegram/internal/store"
)

// Bot is the Telegram front end. It owns the long-polling loop and
// dispatches private messages, callback queries and channel posts.
type Bot struct {
	bot         *telego.Bot
	ownerID     int64
	channelID   int64
	maxResults  int
	gate        *gate.Gate
	searcher    *search.Client
	resolver    *archive.Resolver
	pipeline    *download.Pipeline
	users       store.UserStore
	index       store.ArchiveStore
	broadcaster *Broadcaster
	sendFn      func(ctx context.Context, chatID int64, text string) error

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// New builds the bot and wires the download pipeline with the bot
// itself as the audio deliverer.
func New(cfg config.Config, stores *store.Stores, g *gate.Gate, searcher *search.Client, resolver *archive.Resolver, extractor download.Extractor) (*Bot, error) {
	var opts []telego.BotOption

	if cfg.Bot.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Bot.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Bot.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	tg, err := telego.NewBot(cfg.Bot.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	maxResults := cfg.Search.MaxResults
	if maxResults <= 0 {
		maxResults = 8
	}

	perSecond := cfg.Broadcast.PerSecond
	if perSecond <= 0 {
		perSecond = 10
	}

	b := &Bot{
		bot:        tg,
		ownerID:    cfg.Bot.OwnerID,
		channelID:  cfg.Archive.ChannelID,
		maxResults: maxResults,
		gate:       g,
		searcher:   searcher,
		resolver:   resolver,
		users:      stores.Users,
		index:      stores.Archive,
	}
	b.sendFn = b.telegramSend
	b.pipeline = download.NewPipeline(g, searcher, extractor, b)
	b.broadcaster = NewBroadcaster(stores.Users, rate.NewLimiter(rate.Limit(perSecond), 1), b.sendFn)
	return b, nil
}

// Start begins long polling for updates.
func (b *Bot) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	// Stop() cancels this context to cleanly shut down long polling.
	pollCtx, cancel := context.WithCancel(ctx)
	b.pollCancel = cancel
	b.pollDone = make(chan struct{})

	updates, err := b.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout: 30,
		AllowedUpdates: []string{
			"message",
			"callback_query",
			"channel_post",
		},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	slog.Info("telegram bot connected", "username", b.bot.Username())

	// Register bot menu commands with retry.
	go func() {
		for attempt := 1; attempt <= 3; attempt++ {
			if err := b.syncMenuCommands(pollCtx); err != nil {
				slog.Warn("failed to sync telegram menu commands", "error", err, "attempt", attempt)
				if attempt < 3 {
					select {
					case <-pollCtx.Done():
						return
					case <-time.After(time.Duration(attempt*5) * time.Second):
					}
				}
			} else {
				slog.Info("telegram menu commands synced")
				return
			}
		}
	}()

	go func() {
		defer close(b.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				// Each update gets its own goroutine so one slow
				// handler (a search call, a broadcast) never stalls
				// every other user's interactions.
				switch {
				case update.Message != nil:
					go b.handleMessage(pollCtx, update.Message)
				case update.CallbackQuery != nil:
					go b.handleCallbackQuery(pollCtx, update.CallbackQuery)
				case update.ChannelPost != nil:
					go b.handleChannelPost(pollCtx, update.ChannelPost)
				default:
					slog.Debug("telegram update skipped", "update_id", update.UpdateID)
				}
			}
		}
	}()

	return nil
}

// Stop shuts down the bot by cancelling the long polling context and
// waiting for the polling goroutine to exit so that Telegram releases
// the getUpdates lock before a new instance starts.
func (b *Bot) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")

	if b.pollCancel != nil {
		b.pollCancel()
	}

	if b.pollDone != nil {
		select {
		case <-b.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}

	return nil
}

func (b *Bot) syncMenuCommands(ctx context.Context) error {
	return b.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: menuCommands(),
	})
}

func menuCommands() []telego.BotCommand {
	return []telego.BotCommand{
		{Command: "start", Description: "What this bot does"},
		{Command: "help", Description: "Show available commands"},
		{Command: "song", Description: "Search YouTube and get an MP3"},
		{Command: "file", Description: "Get a file from the channel by name"},
	}
}

// telegramSend sends a plain text message to a chat.
func (b *Bot) telegramSend(ctx context.Context, chatID int64, text string) error {
	_, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	return err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.sendFn(ctx, chatID, text); err != nil {
		slog.Warn("telegram reply failed", "chat_id", chatID, "error", err)
	}
}
