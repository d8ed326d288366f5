package music

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"regexp"
)

var soundcloudURL = regexp.MustCompile(`^(https?://)?(www\.)?soundcloud\.com/.+`)

// TrackInfo is the resolved metadata of one playable track.
type TrackInfo struct {
	Title      string  `json:"title"`
	StreamURL  string  `json:"url"`
	WebpageURL string  `json:"webpage_url"`
	Duration   float64 `json:"duration"` // seconds
}

// Resolver turns a user query into a streamable track.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*TrackInfo, error)
}

// NormalizeQuery passes SoundCloud URLs through untouched and turns
// anything else into a SoundCloud search for the first match.
func NormalizeQuery(query string) string {
	if soundcloudURL.MatchString(query) {
		return query
	}
	return "scsearch1:" + query
}

// YTDLPResolver resolves tracks by shelling out to yt-dlp. The subprocess
// only extracts metadata; no download happens.
type YTDLPResolver struct {
	path string
}

func NewYTDLPResolver(path string) *YTDLPResolver {
	return &YTDLPResolver{path: path}
}

func (r *YTDLPResolver) Resolve(ctx context.Context, query string) (*TrackInfo, error) {
	cmd := exec.CommandContext(ctx, r.path,
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		"--format", "bestaudio/best",
		NormalizeQuery(query),
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open yt-dlp pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	// A search target emits one JSON object per entry; the first one is
	// all we play.
	var track TrackInfo
	decodeErr := json.NewDecoder(bufio.NewReader(stdout)).Decode(&track)
	io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil && decodeErr != nil {
		return nil, fmt.Errorf("yt-dlp failed for %q: %w", query, err)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output for %q: %w", query, decodeErr)
	}
	if track.StreamURL == "" {
		return nil, fmt.Errorf("yt-dlp returned no stream URL for %q", query)
	}
	return &track, nil
}
