package bot

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/mymmrac/telego"

	"github.com/technicalserena/tunegram/internal/store"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCmd  string
		wantArgs string
		wantOK   bool
	}{
		{"bare command", "/start", "start", "", true},
		{"command with args", "/song never gonna give you up", "song", "never gonna give you up", true},
		{"botname suffix stripped", "/help@tunegram_bot", "help", "", true},
		{"uppercase normalized", "/SONG abba", "song", "abba", true},
		{"free text", "never gonna give you up", "", "", false},
		{"lone slash", "/", "", "", false},
		{"empty", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := parseCommand(tt.text)
			if cmd != tt.wantCmd || args != tt.wantArgs || ok != tt.wantOK {
				t.Errorf("parseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.text, cmd, args, ok, tt.wantCmd, tt.wantArgs, tt.wantOK)
			}
		})
	}
}

func TestArchiveEntry(t *testing.T) {
	tests := []struct {
		name     string
		post     telego.Message
		wantKind string
		wantFile string
	}{
		{
			"document",
			telego.Message{MessageID: 1, Document: &telego.Document{FileName: "song.mp3"}},
			store.KindDocument, "song.mp3",
		},
		{
			"audio",
			telego.Message{MessageID: 2, Audio: &telego.Audio{FileName: "track.mp3"}},
			store.KindAudio, "track.mp3",
		},
		{
			"video",
			telego.Message{MessageID: 3, Video: &telego.Video{FileName: "clip.mp4"}},
			store.KindVideo, "clip.mp4",
		},
		{
			"document wins over caption-only",
			telego.Message{MessageID: 4, Document: &telego.Document{FileName: "a.zip"}, Caption: "archive"},
			store.KindDocument, "a.zip",
		},
		{
			"text-only post",
			telego.Message{MessageID: 5, Caption: "just a caption"},
			"", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := archiveEntry(&tt.post)
			if entry.Kind != tt.wantKind || entry.FileName != tt.wantFile {
				t.Errorf("archiveEntry = kind %q file %q, want kind %q file %q",
					entry.Kind, entry.FileName, tt.wantKind, tt.wantFile)
			}
			if entry.MessageID != tt.post.MessageID {
				t.Errorf("MessageID = %d, want %d", entry.MessageID, tt.post.MessageID)
			}
		})
	}
}

func TestOwnerCommandsSilentForNonOwner(t *testing.T) {
	var replies []string
	b := &Bot{
		ownerID: 99,
		sendFn: func(_ context.Context, _ int64, text string) error {
			replies = append(replies, text)
			return nil
		},
	}

	msg := &telego.Message{Chat: telego.Chat{ID: 5, Type: telego.ChatTypePrivate}}
	user := &telego.User{ID: 5}

	for _, cmd := range []string{"add", "rem", "broadcast"} {
		b.handleCommand(context.Background(), msg, user, cmd, "123 30")
	}
	if len(replies) != 0 {
		t.Errorf("non-owner admin commands produced replies: %v", replies)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short ascii untouched", "hello", 10, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multi-byte cut on rune boundary", "日本語のタイトル", 3, "日本語"},
		{"multi-byte within limit", "日本語", 3, "日本語"},
		{"mixed", "ab日本語", 4, "ab日本"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
			}
		})
	}
}

func TestIsOwner(t *testing.T) {
	b := &Bot{ownerID: 42}
	if !b.isOwner(42) {
		t.Error("owner not recognized")
	}
	if b.isOwner(43) {
		t.Error("non-owner recognized as owner")
	}
}
