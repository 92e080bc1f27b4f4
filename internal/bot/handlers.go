package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"github.com/technicalserena/tunegram/internal/store"
)

// handleMessage processes one inbound message. Only private chats are
// served; group messages are ignored.
func (b *Bot) handleMessage(ctx context.Context, message *telego.Message) {
	user := message.From
	if user == nil || message.Chat.Type != telego.ChatTypePrivate {
		return
	}

	slog.Debug("telegram message received",
		"user_id", user.ID,
		"username", user.Username,
		"text_preview", truncate(message.Text, 60),
	)

	// Lazy record creation on first contact; the display name is set
	// once and never overwritten.
	if err := b.users.EnsureExists(ctx, user.ID, user.FirstName); err != nil {
		slog.Warn("user upsert failed", "user_id", user.ID, "error", err)
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	if cmd, args, ok := parseCommand(text); ok {
		b.handleCommand(ctx, message, user, cmd, args)
		return
	}

	// Free private text is a song search.
	b.handleSong(ctx, message.Chat.ID, text)
}

func (b *Bot) handleCommand(ctx context.Context, message *telego.Message, user *telego.User, cmd, args string) {
	chatID := message.Chat.ID

	switch cmd {
	case "start":
		b.reply(ctx, chatID, startText)
	case "help":
		b.reply(ctx, chatID, helpText)
	case "song":
		if args == "" {
			b.reply(ctx, chatID, "Usage: /song <query>")
			return
		}
		b.handleSong(ctx, chatID, args)
	case "file":
		if args == "" {
			b.reply(ctx, chatID, "Usage: /file <filename>")
			return
		}
		b.handleFile(ctx, chatID, user.ID, args)
	case "add", "rem", "broadcast":
		// Owner commands from anyone else produce no response at all.
		if !b.isOwner(user.ID) {
			slog.Debug("owner command ignored", "command", cmd, "user_id", user.ID)
			return
		}
		b.handleOwnerCommand(ctx, chatID, cmd, args)
	default:
		// Unknown commands are ignored, matching free-text handling
		// which skips anything starting with a slash.
	}
}

// handleChannelPost indexes attachments posted to the curated channel.
func (b *Bot) handleChannelPost(ctx context.Context, post *telego.Message) {
	if post.Chat.ID != b.channelID {
		slog.Debug("channel post from unconfigured channel skipped", "chat_id", post.Chat.ID)
		return
	}

	entry := archiveEntry(post)
	if entry.Kind == "" && entry.Caption == "" {
		return
	}

	if err := b.index.Save(ctx, entry); err != nil {
		slog.Warn("archive index save failed", "message_id", post.MessageID, "error", err)
		return
	}
	slog.Debug("channel post indexed",
		"message_id", post.MessageID,
		"kind", entry.Kind,
		"file_name", entry.FileName,
	)
}

// archiveEntry maps a channel post to an index entry. Attachment kinds
// are checked in the resolver's precedence order.
func archiveEntry(post *telego.Message) store.ArchiveMessage {
	entry := store.ArchiveMessage{
		MessageID: post.MessageID,
		Caption:   post.Caption,
		PostedAt:  time.Unix(post.Date, 0).UTC(),
	}
	switch {
	case post.Document != nil:
		entry.Kind = store.KindDocument
		entry.FileName = post.Document.FileName
	case post.Audio != nil:
		entry.Kind = store.KindAudio
		entry.FileName = post.Audio.FileName
	case post.Video != nil:
		entry.Kind = store.KindVideo
		entry.FileName = post.Video.FileName
	}
	return entry
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.ownerID
}

// parseCommand splits "/cmd@botname args" into its command name and
// argument string. ok is false for non-command text.
func parseCommand(text string) (cmd, args string, ok bool) {
	if len(text) == 0 || text[0] != '/' {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// truncate bounds s to n runes. Byte slicing would cut multi-byte
// titles mid-rune and Telegram rejects invalid UTF-8 outright.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
