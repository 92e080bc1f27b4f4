package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/technicalserena/tunegram/internal/archive"
	"github.com/technicalserena/tunegram/internal/search"
)

const startText = "Hello! I'm a music and channel file bot.\n\n" +
	"Send me a song name or use /song <query> to search YouTube.\n" +
	"Use /file <filename> to retrieve files from the channel.\n\n" +
	"Type /help for more commands."

const helpText = "Commands:\n" +
	"/song <query> - Search YouTube and get an MP3.\n" +
	"Or just send a text query in private chat to search.\n" +
	"/file <filename> - Send a file from the configured channel to you.\n\n" +
	"Owner only:\n" +
	"/add <user_id> <days> - Grant premium.\n" +
	"/rem <user_id> - Revoke premium.\n" +
	"/broadcast <message> - Broadcast to all known users.\n\n" +
	"Examples:\n" +
	"/song never gonna give you up\n" +
	"/file MyCoolSong.mp3"

// titleLabelLimit bounds button label length; Telegram truncates long
// button text itself, this keeps labels readable.
const titleLabelLimit = 40

// handleSong searches and replies with a selection keyboard. An empty
// result set is a distinct outcome from a failed search.
func (b *Bot) handleSong(ctx context.Context, chatID int64, query string) {
	b.reply(ctx, chatID, "Searching YouTube...")

	results, err := b.searcher.Search(ctx, query, b.maxResults)
	if err != nil {
		slog.Error("youtube search failed", "query", truncate(query, 60), "error", err)
		b.reply(ctx, chatID, "YouTube search failed. Try again later.")
		return
	}
	if len(results) == 0 {
		b.reply(ctx, chatID, "No results found.")
		return
	}

	msg := tu.Message(tu.ID(chatID), "Select a result to download MP3:")
	msg.ReplyMarkup = resultKeyboard(results)
	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		slog.Warn("send result keyboard failed", "chat_id", chatID, "error", err)
	}
}

// resultKeyboard builds one button row per candidate, labeled by rank
// and truncated title, with the video ID round-tripped in the callback
// token.
func resultKeyboard(results []search.Candidate) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(results))
	for i, r := range results {
		label := fmt.Sprintf("%d. %s", i+1, truncate(r.Title, titleLabelLimit))
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(downloadToken(r.VideoID)),
		))
	}
	return tu.InlineKeyboard(rows...)
}

// handleFile resolves a filename against the channel index and copies
// the matching post into the requester's DM. Cooldown-gated like a
// download; premium is not required on this path.
func (b *Bot) handleFile(ctx context.Context, chatID, userID int64, nameQuery string) {
	b.reply(ctx, chatID, "Searching channel for file...")

	found, err := b.resolver.FindFile(ctx, nameQuery)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			b.reply(ctx, chatID, "No file matched that filename in the channel.")
			return
		}
		slog.Error("channel file search failed", "query", truncate(nameQuery, 60), "error", err)
		b.reply(ctx, chatID, "Failed to search the channel. Make sure the bot has access and the channel id is correct.")
		return
	}

	ok, err := b.gate.CanSend(ctx, userID)
	if err != nil {
		slog.Error("gate check failed", "user_id", userID, "error", err)
		b.reply(ctx, chatID, "Something went wrong. Try again later.")
		return
	}
	if !ok {
		wait, _ := b.gate.RemainingWait(ctx, userID)
		b.reply(ctx, chatID, fmt.Sprintf("Please wait %d seconds between file sends.", waitSeconds(wait, b.gate.Cooldown())))
		return
	}

	_, err = b.bot.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     tu.ID(userID),
		FromChatID: tu.ID(b.channelID),
		MessageID:  found.MessageID,
	})
	if err != nil {
		slog.Error("copy message failed", "message_id", found.MessageID, "user_id", userID, "error", err)
		b.reply(ctx, chatID, "Failed to send the file. Ensure the bot can read and copy messages from the channel.")
		return
	}

	if err := b.gate.MarkSent(ctx, userID); err != nil {
		slog.Warn("mark sent failed after file copy", "user_id", userID, "error", err)
	}
}

// handleOwnerCommand dispatches /add, /rem and /broadcast. The caller
// has already verified ownership.
func (b *Bot) handleOwnerCommand(ctx context.Context, chatID int64, cmd, args string) {
	switch cmd {
	case "add":
		fields := strings.Fields(args)
		if len(fields) < 2 {
			b.reply(ctx, chatID, "Usage: /add <user_id> <days>")
			return
		}
		userID, err1 := strconv.ParseInt(fields[0], 10, 64)
		days, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			b.reply(ctx, chatID, "user_id and days must be integers.")
			return
		}
		until, err := b.gate.GrantPremium(ctx, userID, days)
		if err != nil {
			slog.Error("grant premium failed", "user_id", userID, "error", err)
			b.reply(ctx, chatID, "Failed to grant premium.")
			return
		}
		b.reply(ctx, chatID, fmt.Sprintf("Premium granted to %d until %s UTC.", userID, until.Format("2006-01-02 15:04:05")))

	case "rem":
		fields := strings.Fields(args)
		if len(fields) < 1 {
			b.reply(ctx, chatID, "Usage: /rem <user_id>")
			return
		}
		userID, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			b.reply(ctx, chatID, "user_id must be an integer.")
			return
		}
		if err := b.gate.RevokePremium(ctx, userID); err != nil {
			slog.Error("revoke premium failed", "user_id", userID, "error", err)
			b.reply(ctx, chatID, "Failed to revoke premium.")
			return
		}
		b.reply(ctx, chatID, fmt.Sprintf("Premium removed from %d.", userID))

	case "broadcast":
		if args == "" {
			b.reply(ctx, chatID, "Usage: /broadcast <message text>")
			return
		}
		// A rate-limited fanout over a large user base takes minutes;
		// it must not occupy the handler while it runs.
		go func() {
			count := b.broadcaster.Broadcast(ctx, "Broadcast:\n\n"+args)
			b.reply(ctx, chatID, fmt.Sprintf("Broadcast sent to %d users.", count))
		}()
	}
}

// waitSeconds rounds the remaining wait up to whole seconds for user
// messaging, falling back to the full cooldown when unknown.
func waitSeconds(wait, cooldown time.Duration) int {
	if wait <= 0 {
		wait = cooldown
	}
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
