package ebiten

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

const sampleRate = 44100

// AudioPlayer plays AudioSource files through ebiten's audio context. WAV
// files are decoded; anything else is treated as raw PCM in ebiten's format.
type AudioPlayer struct {
	AssetsDir string

	ctx     *audio.Context
	data    map[string][]byte
	players map[ecs.Entity]*audio.Player
}

func NewAudioPlayer(assetsDir string) *AudioPlayer {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	return &AudioPlayer{
		AssetsDir: assetsDir,
		ctx:       ctx,
		data:      make(map[string][]byte),
		players:   make(map[ecs.Entity]*audio.Player),
	}
}

func (p *AudioPlayer) load(path string) ([]byte, error) {
	if b, ok := p.data[path]; ok {
		return b, nil
	}
	full := path
	if !filepath.IsAbs(full) && p.AssetsDir != "" {
		full = filepath.Join(p.AssetsDir, path)
	}
	b, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	p.data[path] = b
	return b, nil
}

func (p *AudioPlayer) Play(e ecs.Entity, src *components.AudioSource) error {
	p.Stop(e)

	b, err := p.load(src.Path)
	if err != nil {
		return err
	}

	var player *audio.Player
	if strings.HasSuffix(strings.ToLower(src.Path), ".wav") {
		stream, err := wav.DecodeWithSampleRate(p.ctx.SampleRate(), bytes.NewReader(b))
		if err != nil {
			return fmt.Errorf("decode wav %q: %w", src.Path, err)
		}
		if src.Loop {
			player, err = p.ctx.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
		} else {
			player, err = p.ctx.NewPlayer(stream)
		}
		if err != nil {
			return err
		}
	} else {
		player = p.ctx.NewPlayerFromBytes(b)
	}

	player.SetVolume(src.Volume)
	player.Play()
	p.players[e] = player
	return nil
}

func (p *AudioPlayer) Stop(e ecs.Entity) {
	player, ok := p.players[e]
	if !ok {
		return
	}
	player.Pause()
	_ = player.Close()
	delete(p.players, e)
}
