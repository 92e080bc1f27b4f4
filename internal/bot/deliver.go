package bot

import (
	"context"
	"fmt"
	"os"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// SendAudio uploads a finished artifact to the user's private chat.
// Implements the download pipeline's deliverer.
func (b *Bot) SendAudio(ctx context.Context, userID int64, path, title string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	_, err = b.bot.SendAudio(ctx, &telego.SendAudioParams{
		ChatID: tu.ID(userID),
		Audio:  tu.File(f),
		Title:  title,
	})
	if err != nil {
		return fmt.Errorf("telegram sendAudio: %w", err)
	}
	return nil
}
