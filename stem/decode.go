package stem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/worshipkit/stemdeck"
)

const resampleQuality = 4

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decode decodes a complete wav, mp3, flac or ogg vorbis file into a stereo
// buffer at sampleRate. The format is detected from the data; the extension
// of hint (a file name or URL) is used when detection fails.
func Decode(data []byte, hint string, sampleRate int) (stemdeck.AudioBuffer, error) {
	s, format, err := decodeStream(data, hint)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	var src beep.Streamer = s
	capacity := s.Len()
	if int(format.SampleRate) != sampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(sampleRate), s)
		capacity = int(int64(capacity) * int64(sampleRate) / int64(format.SampleRate))
	}
	ret := make(stemdeck.AudioBuffer, 0, capacity+1)
	tmp := make([][2]float64, 512)
	for {
		n, ok := src.Stream(tmp)
		for _, v := range tmp[:n] {
			ret = append(ret, [2]float32{float32(v[0]), float32(v[1])})
		}
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("decoding failed: %w", err)
	}
	return ret, nil
}

func decodeStream(data []byte, hint string) (beep.StreamSeekCloser, beep.Format, error) {
	r := bytes.NewReader(data)
	switch detectFormat(data, hint) {
	case "wav":
		return wav.Decode(r)
	case "mp3":
		return mp3.Decode(io.NopCloser(r))
	case "flac":
		return flac.Decode(r)
	case "ogg":
		return vorbis.Decode(io.NopCloser(r))
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, hint)
}

func detectFormat(data []byte, hint string) string {
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && string(data[8:12]) == "WAVE":
		return "wav"
	case bytes.HasPrefix(data, []byte("fLaC")):
		return "flac"
	case bytes.HasPrefix(data, []byte("OggS")):
		return "ogg"
	case bytes.HasPrefix(data, []byte("ID3")), len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "mp3"
	}
	switch extension(hint) {
	case ".wav", ".wave":
		return "wav"
	case ".flac":
		return "flac"
	case ".ogg", ".oga":
		return "ogg"
	case ".mp3":
		return "mp3"
	}
	return ""
}

func extension(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}
