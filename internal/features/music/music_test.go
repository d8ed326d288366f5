package music

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuery(t *testing.T) {
	cases := map[string]string{
		"https://soundcloud.com/artist/track": "https://soundcloud.com/artist/track",
		"http://www.soundcloud.com/a/b":       "http://www.soundcloud.com/a/b",
		"soundcloud.com/artist/track":         "soundcloud.com/artist/track",
		"lofi beats":                          "scsearch1:lofi beats",
		"https://example.com/track":           "scsearch1:https://example.com/track",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeQuery(in), "query %q", in)
	}
}

// oggPage serializes packets into one Ogg page for parser tests.
func oggPage(packets ...[]byte) []byte {
	var table []byte
	var payload []byte
	for _, pkt := range packets {
		rest := len(pkt)
		for rest >= 255 {
			table = append(table, 255)
			rest -= 255
		}
		table = append(table, byte(rest))
		payload = append(payload, pkt...)
	}

	header := make([]byte, 27)
	copy(header, "OggS")
	binary.LittleEndian.PutUint32(header[14:], 1)
	header[26] = byte(len(table))

	page := append(header, table...)
	return append(page, payload...)
}

func TestOggReaderExtractsPackets(t *testing.T) {
	head := append([]byte("OpusHead"), make([]byte, 11)...)
	tags := append([]byte("OpusTags"), 0)
	frame1 := bytes.Repeat([]byte{0xAA}, 100)
	frame2 := bytes.Repeat([]byte{0xBB}, 300) // spans two lacing segments

	var stream []byte
	stream = append(stream, oggPage(head)...)
	stream = append(stream, oggPage(tags)...)
	stream = append(stream, oggPage(frame1, frame2)...)

	r := newOggOpusReader(bytes.NewReader(stream))

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, frame1, pkt)

	pkt, err = r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, frame2, pkt)

	_, err = r.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func TestOggReaderPacketSpanningPages(t *testing.T) {
	frame := bytes.Repeat([]byte{0xCC}, 255)

	// First page carries one full 255-byte segment with no terminator, so
	// the packet continues on the next page.
	header := make([]byte, 27)
	copy(header, "OggS")
	header[26] = 1
	page1 := append(header, 255)
	page1 = append(page1, frame...)

	header2 := make([]byte, 27)
	copy(header2, "OggS")
	header2[5] = 0x01 // continuation
	header2[26] = 1
	page2 := append(header2, 0)

	r := newOggOpusReader(bytes.NewReader(append(page1, page2...)))

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, frame, pkt)
}

func TestOggReaderRejectsGarbage(t *testing.T) {
	r := newOggOpusReader(bytes.NewReader(bytes.Repeat([]byte{0x00}, 64)))
	_, err := r.ReadPacket()
	assert.Error(t, err)
}

type fakeVoice struct {
	joined       []string
	disconnected int
}

func (f *fakeVoice) Join(guildID, channelID string) (*discordgo.VoiceConnection, error) {
	f.joined = append(f.joined, guildID+"/"+channelID)
	return nil, nil
}

func (f *fakeVoice) Disconnect(*discordgo.VoiceConnection) error {
	f.disconnected++
	return nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, query string) (*TrackInfo, error) {
	return &TrackInfo{Title: "Track: " + query, StreamURL: "https://cdn.example/" + query}, nil
}

// blockingStream runs until cancelled, like a long track.
func blockingStream(ctx context.Context, _ *discordgo.VoiceConnection, _ string, _ *atomic.Bool) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPlayerLifecycle(t *testing.T) {
	voice := &fakeVoice{}
	p := newPlayer(voice, fakeResolver{}, blockingStream)

	track, err := p.Play(context.Background(), "guild-1", "voice-1", "lofi")
	require.NoError(t, err)
	assert.Equal(t, "Track: lofi", track.Title)
	assert.Equal(t, []string{"guild-1/voice-1"}, voice.joined)

	now, ok := p.NowPlaying("guild-1")
	require.True(t, ok)
	assert.Equal(t, track, now)

	require.NoError(t, p.Pause("guild-1"))
	assert.ErrorIs(t, p.Pause("guild-1"), ErrNotPlaying)
	require.NoError(t, p.Resume("guild-1"))
	assert.ErrorIs(t, p.Resume("guild-1"), ErrNotPaused)

	require.NoError(t, p.Stop("guild-1"))
	assert.Equal(t, 1, voice.disconnected)

	_, ok = p.NowPlaying("guild-1")
	assert.False(t, ok)
	assert.ErrorIs(t, p.Stop("guild-1"), ErrNotPlaying)
	assert.ErrorIs(t, p.Pause("guild-1"), ErrNotPlaying)
}

func TestPlayReplacesCurrentTrack(t *testing.T) {
	voice := &fakeVoice{}
	p := newPlayer(voice, fakeResolver{}, blockingStream)

	_, err := p.Play(context.Background(), "guild-1", "voice-1", "first")
	require.NoError(t, err)
	_, err = p.Play(context.Background(), "guild-1", "voice-2", "second")
	require.NoError(t, err)

	now, ok := p.NowPlaying("guild-1")
	require.True(t, ok)
	assert.Equal(t, "Track: second", now.Title)

	require.NoError(t, p.Stop("guild-1"))
}

func TestTrackEndingGoesIdle(t *testing.T) {
	voice := &fakeVoice{}
	finished := func(context.Context, *discordgo.VoiceConnection, string, *atomic.Bool) error {
		return nil
	}
	p := newPlayer(voice, fakeResolver{}, finished)

	_, err := p.Play(context.Background(), "guild-1", "voice-1", "short")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := p.NowPlaying("guild-1")
		return !ok
	}, time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, p.Pause("guild-1"), ErrNotPlaying)
	assert.ErrorIs(t, p.Resume("guild-1"), ErrNotPaused)

	// The bot stays in the channel after the track ends; Stop still
	// disconnects it.
	require.NoError(t, p.Stop("guild-1"))
	assert.Equal(t, 1, voice.disconnected)
	assert.ErrorIs(t, p.Stop("guild-1"), ErrNotPlaying)
}
