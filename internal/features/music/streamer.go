package music

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

// pauseCheckInterval is how often a paused stream re-checks its state.
const pauseCheckInterval = 50 * time.Millisecond

// StreamFunc pumps a stream URL into a voice connection until the track
// ends or ctx is cancelled. The paused flag is polled between packets.
type StreamFunc func(ctx context.Context, vc *discordgo.VoiceConnection, streamURL string, paused *atomic.Bool) error

// NewFFmpegStreamer builds the production StreamFunc: ffmpeg transcodes
// the source to Ogg Opus on stdout and each extracted packet is handed to
// the voice connection, which paces the sends itself.
func NewFFmpegStreamer(ffmpegPath string) StreamFunc {
	return func(ctx context.Context, vc *discordgo.VoiceConnection, streamURL string, paused *atomic.Bool) error {
		cmd := exec.CommandContext(ctx, ffmpegPath,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
			"-i", streamURL,
			"-vn",
			"-c:a", "libopus",
			"-b:a", "96k",
			"-ar", "48000",
			"-ac", "2",
			"-f", "ogg",
			"pipe:1",
		)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("failed to open ffmpeg pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to start ffmpeg: %w", err)
		}
		defer cmd.Wait()

		if err := vc.Speaking(true); err != nil {
			return fmt.Errorf("failed to set speaking state: %w", err)
		}
		defer vc.Speaking(false)

		reader := newOggOpusReader(bufio.NewReaderSize(stdout, 64*1024))
		for {
			if paused.Load() {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(pauseCheckInterval):
				}
				continue
			}

			packet, err := reader.ReadPacket()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read opus packet: %w", err)
			}

			select {
			case vc.OpusSend <- packet:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
