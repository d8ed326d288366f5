package music

import (
	"fmt"
	"io"
)

// oggOpusReader extracts Opus packets from an Ogg container, the format
// ffmpeg emits on stdout. Discord voice wants raw Opus packets, so only
// the lacing structure matters here; CRCs and granule positions are
// ignored.
type oggOpusReader struct {
	r       io.Reader
	packets [][]byte // packets finished in the current page
	pending []byte   // packet continued on the next page
}

func newOggOpusReader(r io.Reader) *oggOpusReader {
	return &oggOpusReader{r: r}
}

// ReadPacket returns the next Opus packet, or io.EOF when the stream
// ends. Codec header packets (OpusHead, OpusTags) are skipped.
func (o *oggOpusReader) ReadPacket() ([]byte, error) {
	for {
		if len(o.packets) > 0 {
			pkt := o.packets[0]
			o.packets = o.packets[1:]
			if isOpusHeaderPacket(pkt) {
				continue
			}
			return pkt, nil
		}
		if err := o.readPage(); err != nil {
			return nil, err
		}
	}
}

func (o *oggOpusReader) readPage() error {
	var header [27]byte
	if _, err := io.ReadFull(o.r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return io.EOF
		}
		return err
	}
	if string(header[0:4]) != "OggS" {
		return fmt.Errorf("bad ogg page magic %q", header[0:4])
	}

	segmentCount := int(header[26])
	table := make([]byte, segmentCount)
	if _, err := io.ReadFull(o.r, table); err != nil {
		return err
	}

	payloadLen := 0
	for _, l := range table {
		payloadLen += int(l)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(o.r, payload); err != nil {
		return err
	}

	// Lacing: segments of 255 continue the packet, anything shorter ends
	// it. A page ending on a 255 segment leaves the packet pending for
	// the next page.
	offset := 0
	for _, l := range table {
		o.pending = append(o.pending, payload[offset:offset+int(l)]...)
		offset += int(l)
		if l < 255 {
			o.packets = append(o.packets, o.pending)
			o.pending = nil
		}
	}
	return nil
}

func isOpusHeaderPacket(pkt []byte) bool {
	return len(pkt) >= 8 &&
		(string(pkt[0:8]) == "OpusHead" || string(pkt[0:8]) == "OpusTags")
}
