//go:build libmpv

package playback

import (
	"errors"
	"fmt"
	"math"
	"sync"

	mpv "github.com/gen2brain/go-mpv"
)

const (
	mpvPauseProperty    = "pause"
	mpvPositionProperty = "time-pos"
	mpvDurationProperty = "duration"
	mpvVolumeProperty   = "volume"
)

type mpvBackend struct {
	mu           sync.Mutex
	client       *mpv.Mpv
	onEnded      func()
	onTimeUpdate func(position float64)
	onError      func(err error)
	closeOnce    sync.Once
	closed       chan struct{}
	eventLoopWG  sync.WaitGroup
}

// NewBackend creates the libmpv-backed AudioBackend.
func NewBackend() (AudioBackend, error) {
	client := mpv.New()
	if client == nil {
		return nil, errors.New("create libmpv instance")
	}

	setOptionString(client, "terminal", "no")
	setOptionString(client, "video", "no")
	setOptionString(client, "audio-display", "no")
	setOptionString(client, "keep-open", "no")

	if err := client.Initialize(); err != nil {
		client.TerminateDestroy()
		return nil, fmt.Errorf("initialize libmpv: %w", err)
	}

	backend := &mpvBackend{
		client: client,
		closed: make(chan struct{}),
	}

	_ = client.RequestEvent(mpv.EventEnd, true)
	_ = client.ObserveProperty(0, mpvPositionProperty, mpv.FormatDouble)
	_ = client.SetProperty(mpvVolumeProperty, mpv.FormatDouble, float64(DefaultVolume))

	backend.eventLoopWG.Add(1)
	go backend.eventLoop()

	return backend, nil
}

func (b *mpvBackend) Load(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.SetPropertyString(mpvPauseProperty, "yes"); err != nil {
		return fmt.Errorf("set pause before load: %w", err)
	}

	if err := b.client.Command([]string{"loadfile", path, "replace"}); err != nil {
		return fmt.Errorf("load file %q: %w", path, err)
	}

	return nil
}

func (b *mpvBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.SetPropertyString(mpvPauseProperty, "no"); err != nil {
		return fmt.Errorf("resume playback: %w", err)
	}

	return nil
}

func (b *mpvBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.SetPropertyString(mpvPauseProperty, "yes"); err != nil {
		return fmt.Errorf("pause playback: %w", err)
	}

	return nil
}

func (b *mpvBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.Command([]string{"stop"}); err != nil {
		return fmt.Errorf("stop playback: %w", err)
	}

	return nil
}

func (b *mpvBackend) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.SetProperty(mpvPositionProperty, mpv.FormatDouble, seconds); err != nil {
		return fmt.Errorf("seek playback: %w", err)
	}

	return nil
}

func (b *mpvBackend) SetVolume(level int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.SetProperty(mpvVolumeProperty, mpv.FormatDouble, float64(level)); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}

	return nil
}

func (b *mpvBackend) Position() (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seconds, ok, err := b.readSecondsPropertyLocked(mpvPositionProperty)
	if err != nil || !ok {
		return 0, err
	}

	return seconds, nil
}

func (b *mpvBackend) Duration() (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seconds, ok, err := b.readSecondsPropertyLocked(mpvDurationProperty)
	if err != nil || !ok {
		return 0, err
	}

	return seconds, nil
}

func (b *mpvBackend) SetOnEnded(callback func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onEnded = callback
}

func (b *mpvBackend) SetOnTimeUpdate(callback func(position float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTimeUpdate = callback
}

func (b *mpvBackend) SetOnError(callback func(err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = callback
}

func (b *mpvBackend) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		client := b.client
		b.mu.Unlock()

		if client != nil {
			client.Wakeup()
			client.TerminateDestroy()
		}

		b.eventLoopWG.Wait()
		close(b.closed)
	})

	<-b.closed
	return nil
}

func (b *mpvBackend) eventLoop() {
	defer b.eventLoopWG.Done()

	for {
		event := b.client.WaitEvent(0.5)
		if event == nil {
			continue
		}

		switch event.EventID {
		case mpv.EventShutdown:
			return
		case mpv.EventPropertyChange:
			property := event.Property()
			if property.Name != mpvPositionProperty {
				continue
			}
			seconds, ok := asFloat64(property.Data)
			if !ok || math.IsNaN(seconds) || seconds < 0 {
				continue
			}

			b.mu.Lock()
			onTimeUpdate := b.onTimeUpdate
			b.mu.Unlock()
			if onTimeUpdate != nil {
				onTimeUpdate(seconds)
			}
		case mpv.EventEnd:
			end := event.EndFile()
			switch end.Reason {
			case mpv.EndFileEOF:
				b.mu.Lock()
				onEnded := b.onEnded
				b.mu.Unlock()
				if onEnded != nil {
					onEnded()
				}
			case mpv.EndFileError:
				b.mu.Lock()
				onError := b.onError
				b.mu.Unlock()
				if onError != nil {
					onError(fmt.Errorf("playback aborted by backend (reason %d)", end.Reason))
				}
			}
		}
	}
}

func (b *mpvBackend) readSecondsPropertyLocked(property string) (float64, bool, error) {
	value, err := b.client.GetProperty(property, mpv.FormatDouble)
	if err != nil {
		if errors.Is(err, mpv.ErrPropertyUnavailable) || errors.Is(err, mpv.ErrPropertyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read %s: %w", property, err)
	}

	seconds, ok := asFloat64(value)
	if !ok || math.IsNaN(seconds) || seconds < 0 {
		return 0, false, nil
	}

	return seconds, true, nil
}

func asFloat64(value any) (float64, bool) {
	switch cast := value.(type) {
	case float64:
		return cast, true
	case float32:
		return float64(cast), true
	case int:
		return float64(cast), true
	case int64:
		return float64(cast), true
	default:
		return 0, false
	}
}

func setOptionString(client *mpv.Mpv, name string, value string) {
	_ = client.SetOptionString(name, value)
}
