package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/technicalserena/tunegram/internal/download"
)

// downloadTokenPrefix tags selection callbacks; the video ID rides in
// the token so no per-user selection state is kept server-side.
const downloadTokenPrefix = "dl|"

func downloadToken(videoID string) string {
	return downloadTokenPrefix + videoID
}

// parseDownloadToken extracts the video ID from a selection callback.
func parseDownloadToken(data string) (string, bool) {
	rest, found := strings.CutPrefix(data, downloadTokenPrefix)
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

// handleCallbackQuery runs a download selection. The callback is
// answered immediately; the pipeline runs on its own goroutine so a
// slow extraction never blocks the update loop.
func (b *Bot) handleCallbackQuery(ctx context.Context, query *telego.CallbackQuery) {
	videoID, ok := parseDownloadToken(query.Data)
	if !ok {
		b.answerCallback(ctx, query.ID, "", false)
		return
	}

	userID := query.From.ID

	// Pre-check the cooldown here so the rejection arrives as a
	// callback alert instead of a chat message. The pipeline checks
	// again before doing any work.
	if allowed, err := b.gate.CanSend(ctx, userID); err == nil && !allowed {
		wait, _ := b.gate.RemainingWait(ctx, userID)
		b.answerCallback(ctx, query.ID,
			fmt.Sprintf("Wait %d seconds between downloads.", waitSeconds(wait, b.gate.Cooldown())), true)
		return
	}

	b.answerCallback(ctx, query.ID, "Downloading... please wait", false)

	replyChatID := userID
	if query.Message != nil {
		replyChatID = query.Message.GetChat().ID
	}

	go func() {
		res := b.pipeline.Run(ctx, userID, videoID)
		b.reportResult(ctx, replyChatID, videoID, res)
	}()
}

func (b *Bot) reportResult(ctx context.Context, chatID int64, videoID string, res download.Result) {
	switch res.State {
	case download.StateDelivered:
		slog.Info("audio delivered", "video_id", videoID, "title", res.Title)
		b.reply(ctx, chatID, "Sent!")
	case download.StateRejectedCooldown:
		b.reply(ctx, chatID, fmt.Sprintf("Wait %d seconds between downloads.", waitSeconds(res.Wait, b.gate.Cooldown())))
	case download.StateFailedDelivery:
		slog.Error("audio delivery failed", "video_id", videoID, "error", res.Err)
		b.reply(ctx, chatID, "Failed to send audio. The file may be too large or Telegram blocked it.")
	default:
		slog.Error("download failed", "video_id", videoID, "state", res.State, "error", res.Err)
		b.reply(ctx, chatID, "Failed to download audio. Try again later.")
	}
}

func (b *Bot) answerCallback(ctx context.Context, queryID, text string, alert bool) {
	err := b.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		slog.Debug("answer callback failed", "error", err)
	}
}
