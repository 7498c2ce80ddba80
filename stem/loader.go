package stem

import (
	"bytes"
	"context"
	"io"

	"github.com/worshipkit/stemdeck"
	"go.uber.org/zap"
)

// fetchShare is the part of the load progress that fetching accounts for,
// the rest is decoding.
const fetchShare = 90

// Loader fetches and decodes stems onto a bus. It implements stemdeck.Loader
// and stemdeck.BatchStarter.
type Loader struct {
	Bus     *Bus
	Fetcher *Fetcher
	Log     *zap.Logger
}

func (l *Loader) Load(ctx context.Context, desc stemdeck.TrackDescriptor, progress func(float64)) (stemdeck.Media, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	rc, size, err := l.Fetcher.Open(ctx, desc.Locator)
	if err != nil {
		return nil, &stemdeck.LoadError{Locator: desc.Locator, Err: err}
	}
	defer rc.Close()
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	pr := &progressReader{ctx: ctx, r: rc, size: size, progress: progress, share: fetchShare}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, &stemdeck.LoadError{Locator: desc.Locator, Err: err}
	}
	progress(fetchShare)
	log.Debug("fetched stem", zap.String("locator", desc.Locator), zap.Int("bytes", buf.Len()))
	data, err := Decode(buf.Bytes(), desc.Locator, l.Bus.SampleRate())
	if err != nil {
		return nil, &stemdeck.LoadError{Locator: desc.Locator, Err: err}
	}
	progress(100)
	return l.Bus.Add(desc.Name(), data), nil
}

func (l *Loader) StartAll(ctx context.Context, media []stemdeck.Media) error {
	return l.Bus.StartAll(ctx, media)
}
