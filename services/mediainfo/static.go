package mediainfo

import (
	"context"
	"sync"

	"github.com/ansel1/merry/v2"
)

// StaticProvider serves media info from an in-memory table. Used when the
// engine runs without a probing service and in tests.
type StaticProvider struct {
	lock  sync.Mutex
	infos map[string]MediaInfo
}

func NewStaticProvider(infos ...MediaInfo) *StaticProvider {
	p := &StaticProvider{
		infos: map[string]MediaInfo{},
	}
	for _, info := range infos {
		p.infos[info.MediaID] = info
	}
	return p
}

func (p *StaticProvider) Put(info MediaInfo) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.infos[info.MediaID] = info
}

func (p *StaticProvider) Lookup(_ context.Context, mediaID string) (MediaInfo, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	info, ok := p.infos[mediaID]
	if !ok {
		return MediaInfo{}, merry.Wrap(ErrMediaNotFound)
	}
	return info, nil
}
