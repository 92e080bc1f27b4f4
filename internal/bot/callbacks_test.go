package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/technicalserena/tunegram/internal/download"
	"github.com/technicalserena/tunegram/internal/gate"
)

func TestReportResult(t *testing.T) {
	tests := []struct {
		name string
		res  download.Result
		want string
	}{
		{
			name: "delivered confirms to the user",
			res:  download.Result{State: download.StateDelivered, Title: "Some Song"},
			want: "Sent!",
		},
		{
			name: "cooldown rejection names the wait",
			res:  download.Result{State: download.StateRejectedCooldown, Wait: 4 * time.Second},
			want: "Wait 4 seconds between downloads.",
		},
		{
			name: "delivery failure",
			res:  download.Result{State: download.StateFailedDelivery, Err: errors.New("file too big")},
			want: "Failed to send audio. The file may be too large or Telegram blocked it.",
		},
		{
			name: "download failure",
			res:  download.Result{State: download.StateFailedDownload, Err: errors.New("yt-dlp exit 1")},
			want: "Failed to download audio. Try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bot{gate: gate.New(&listOnlyUserStore{}, 10*time.Second)}
			var got []string
			b.sendFn = func(_ context.Context, _ int64, text string) error {
				got = append(got, text)
				return nil
			}

			b.reportResult(context.Background(), 7, "vid1", tt.res)

			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("replies = %q, want [%q]", got, tt.want)
			}
		})
	}
}
