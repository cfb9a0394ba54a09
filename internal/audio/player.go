package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// decoder decodes an audio stream of one container format.
type decoder func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// decoders maps lower-case file extensions to their decoder.
var decoders = map[string]decoder{
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".ogg": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
}

// SupportedFormat reports whether path has a playable extension.
func SupportedFormat(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Player decodes sound files once and plays them through the speaker.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Linear gain, 0.0 to 1.0
	volume float64

	initialized bool
	sampleRate  beep.SampleRate

	cacheMu sync.RWMutex
	cache   map[string]*beep.Buffer
}

// NewPlayer creates a new audio player.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger:     logger,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume, clamped to 0.0..1.0.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = math.Max(0, math.Min(1, volume))
	p.logger.Debug("volume set", "volume", p.volume)
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a sound file, decoding and caching it on first use.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}

	buffer, err := p.buffer(path)
	if err != nil {
		p.logger.Warn("failed to load sound", "path", path, "error", err)
		return err
	}
	return p.playBuffer(buffer)
}

// Preload decodes a sound file into the cache.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}
	if _, err := p.buffer(path); err != nil {
		return err
	}
	p.logger.Debug("preloaded sound", "path", path)
	return nil
}

// buffer returns the cached buffer for path, loading it if needed.
func (p *Player) buffer(path string) (*beep.Buffer, error) {
	p.cacheMu.RLock()
	cached, ok := p.cache[path]
	p.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	buffer, err := p.loadSound(path)
	if err != nil {
		return nil, err
	}

	p.cacheMu.Lock()
	p.cache[path] = buffer
	p.cacheMu.Unlock()
	return buffer, nil
}

// loadSound decodes a whole file into a buffer.
func (p *Player) loadSound(path string) (*beep.Buffer, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// ensureInitialized initializes the speaker once, at the first sound's rate.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

func (p *Player) playBuffer(buffer *beep.Buffer) error {
	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())

	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}

	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   gainExponent(volume),
			Silent:   volume == 0,
		}
	}

	speaker.Play(streamer)
	return nil
}

// InvalidateCache drops path from the cache so the next play re-reads it.
func (p *Player) InvalidateCache(path string) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	delete(p.cache, path)
}

// ClearCache drops every cached sound.
func (p *Player) ClearCache() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string]*beep.Buffer)
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	p.mu.Unlock()

	p.ClearCache()
	p.logger.Debug("audio player closed")
}

// gainExponent converts linear volume to the base-2 exponent used by
// effects.Volume, so that 0.5 halves the amplitude.
func gainExponent(volume float64) float64 {
	if volume <= 0 {
		return -10
	}
	return math.Log2(volume)
}
