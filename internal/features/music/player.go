package music

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"discord-giveaway-bot/internal/common/logger"
)

var (
	ErrNotPlaying = errors.New("nothing is playing")
	ErrNotPaused  = errors.New("playback is not paused")
	ErrNotInVoice = errors.New("user is not in a voice channel")
)

// voiceJoiner is the piece of the gateway the player needs; split out so
// the session machinery is testable without a live voice connection.
type voiceJoiner interface {
	Join(guildID, channelID string) (*discordgo.VoiceConnection, error)
	Disconnect(vc *discordgo.VoiceConnection) error
}

type discordVoice struct {
	session *discordgo.Session
}

func (d *discordVoice) Join(guildID, channelID string) (*discordgo.VoiceConnection, error) {
	// ChannelVoiceJoin moves the bot if it is already connected elsewhere
	// in the guild.
	return d.session.ChannelVoiceJoin(guildID, channelID, false, true)
}

func (d *discordVoice) Disconnect(vc *discordgo.VoiceConnection) error {
	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

// guildSession is the playback state of one guild. One track at a time;
// starting a new one replaces the old. When the track ends naturally the
// session goes idle but keeps the voice connection, so Stop can still
// leave the channel.
type guildSession struct {
	track  *TrackInfo
	vc     *discordgo.VoiceConnection
	paused *atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
	idle   bool // guarded by Player.mu
}

// Player runs at most one playback session per guild.
type Player struct {
	voice    voiceJoiner
	resolver Resolver
	stream   StreamFunc

	mu       sync.Mutex
	sessions map[string]*guildSession
	log      zerolog.Logger
}

func NewPlayer(session *discordgo.Session, resolver Resolver, stream StreamFunc) *Player {
	return newPlayer(&discordVoice{session: session}, resolver, stream)
}

func newPlayer(voice voiceJoiner, resolver Resolver, stream StreamFunc) *Player {
	return &Player{
		voice:    voice,
		resolver: resolver,
		stream:   stream,
		sessions: make(map[string]*guildSession),
		log:      logger.Component("music_player"),
	}
}

// Play resolves the query and starts it in the given voice channel,
// replacing whatever was playing in the guild before.
func (p *Player) Play(ctx context.Context, guildID, voiceChannelID, query string) (*TrackInfo, error) {
	track, err := p.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if old, ok := p.sessions[guildID]; ok {
		old.cancel()
		delete(p.sessions, guildID)
	}
	p.mu.Unlock()

	vc, err := p.voice.Join(guildID, voiceChannelID)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	session := &guildSession{
		track:  track,
		vc:     vc,
		paused: &atomic.Bool{},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	p.mu.Lock()
	p.sessions[guildID] = session
	p.mu.Unlock()

	go func() {
		defer close(session.done)
		err := p.stream(streamCtx, vc, track.StreamURL, session.paused)
		if err != nil && !errors.Is(err, context.Canceled) {
			p.log.Error().Err(err).
				Str("guild_id", guildID).
				Str("track", track.Title).
				Msg("Playback failed")
		}

		// Natural end of track: go idle but stay in the channel, like a
		// voice client that finished its source. A replaced session was
		// already removed by Play.
		p.mu.Lock()
		if p.sessions[guildID] == session {
			session.idle = true
		}
		p.mu.Unlock()
	}()

	p.log.Info().
		Str("guild_id", guildID).
		Str("track", track.Title).
		Msg("Playback started")
	return track, nil
}

// Stop ends playback, if any, and leaves the voice channel. It also
// works on an idle session whose track already finished.
func (p *Player) Stop(guildID string) error {
	p.mu.Lock()
	session, ok := p.sessions[guildID]
	if ok {
		delete(p.sessions, guildID)
	}
	p.mu.Unlock()

	if !ok {
		return ErrNotPlaying
	}

	session.cancel()
	<-session.done
	return p.voice.Disconnect(session.vc)
}

func (p *Player) Pause(guildID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.sessions[guildID]
	if !ok || session.idle || session.paused.Load() {
		return ErrNotPlaying
	}
	session.paused.Store(true)
	return nil
}

func (p *Player) Resume(guildID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.sessions[guildID]
	if !ok || session.idle || !session.paused.Load() {
		return ErrNotPaused
	}
	session.paused.Store(false)
	return nil
}

// NowPlaying returns the current track of the guild, if any.
func (p *Player) NowPlaying(guildID string) (*TrackInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.sessions[guildID]
	if !ok || session.idle {
		return nil, false
	}
	return session.track, true
}
