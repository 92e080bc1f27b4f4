package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrMissingArtifact means extraction reported success but no audio
// file could be located, even after the fallback directory scan.
var ErrMissingArtifact = errors.New("extraction produced no artifact")

// Extractor turns a video ID into a local audio file and returns its
// path. The caller owns the file and is responsible for deleting it.
type Extractor interface {
	Extract(ctx context.Context, videoID, title string) (string, error)
}

// YTDLP extracts audio by invoking the yt-dlp binary with an ffmpeg
// mp3 post-processing step at a fixed bitrate.
//
// No timeout is applied: a hung yt-dlp ties up only the requesting
// goroutine, and the process is reaped when the bot's root context is
// cancelled on shutdown.
type YTDLP struct {
	Path    string // binary name or path, resolved via PATH
	TempDir string
	Bitrate string // e.g. "192K"
}

func NewYTDLP(path, tempDir, bitrate string) *YTDLP {
	if path == "" {
		path = "yt-dlp"
	}
	if bitrate == "" {
		bitrate = "192K"
	}
	return &YTDLP{Path: path, TempDir: tempDir, Bitrate: bitrate}
}

// Extract downloads the best audio stream for videoID and transcodes
// it to mp3. The output name combines the sanitized title with the
// video ID so concurrent extractions of different content never
// collide.
func (y *YTDLP) Extract(ctx context.Context, videoID, title string) (string, error) {
	if err := os.MkdirAll(y.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	base := SanitizeFileName(fmt.Sprintf("%s_%s", title, videoID))
	if base == "" {
		base = videoID
	}
	template := filepath.Join(y.TempDir, base+".%(ext)s")
	mp3Path := filepath.Join(y.TempDir, base+".mp3")

	cmd := exec.CommandContext(ctx, y.Path,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", y.Bitrate,
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--output", template,
		"https://www.youtube.com/watch?v="+videoID,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", err, tail(string(out), 500))
	}

	if _, statErr := os.Stat(mp3Path); statErr == nil {
		return mp3Path, nil
	}

	// yt-dlp occasionally rewrites the output name; scan the temp dir
	// for an mp3 carrying the video ID before giving up.
	if found := y.scanForArtifact(videoID); found != "" {
		return found, nil
	}
	return "", ErrMissingArtifact
}

func (y *YTDLP) scanForArtifact(videoID string) string {
	entries, err := os.ReadDir(y.TempDir)
	if err != nil {
		slog.Warn("artifact fallback scan failed", "dir", y.TempDir, "error", err)
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".mp3") && strings.Contains(name, videoID) {
			return filepath.Join(y.TempDir, name)
		}
	}
	return ""
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
