// Package speaker provides the audio output device backed by oto.
//
// oto allows a single context per process, so the package creates it once and
// every Device shares it. A Device owns one player that continuously pulls
// from a beep.Mixer; voices started on the device are added to that mixer.
package speaker

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"
	zlog "github.com/rs/zerolog/log"
)

// Errors
var (
	ErrClosed = errors.New("audio device closed")
)

// Options holds device configuration.
type Options struct {
	SampleRate int           // Output sample rate in Hz
	BufferSize time.Duration // Device buffer length
}

// output is the process-wide audio context.
type output interface {
	Suspend() error
	Resume() error
	Err() error
	Play(r io.Reader) io.Closer
}

type otoOutput struct {
	ctx *oto.Context
}

func (o otoOutput) Suspend() error { return o.ctx.Suspend() }
func (o otoOutput) Resume() error  { return o.ctx.Resume() }
func (o otoOutput) Err() error     { return o.ctx.Err() }

func (o otoOutput) Play(r io.Reader) io.Closer {
	p := o.ctx.NewPlayer(r)
	p.Play()
	return p
}

// newOutput creates the platform context. Replaced in tests.
var newOutput = func(opts *oto.NewContextOptions) (output, <-chan struct{}, error) {
	c, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, nil, err
	}
	return otoOutput{ctx: c}, ready, nil
}

// shared is the one context of the process, created by the first Open.
var shared struct {
	mu        sync.Mutex
	out       output
	ready     <-chan struct{}
	rate      int
	suspended bool
}

// acquire returns the shared context, creating it on first use.
func acquire(opts Options) (output, <-chan struct{}, int, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.out == nil {
		out, ready, err := newOutput(&oto.NewContextOptions{
			SampleRate:   opts.SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   opts.BufferSize,
		})
		if err != nil {
			return nil, nil, 0, errors.Wrap(err, "failed to create audio context")
		}
		shared.out, shared.ready, shared.rate = out, ready, opts.SampleRate
	} else if opts.SampleRate != shared.rate {
		zlog.Warn().Msgf("speaker: context already open at %d Hz, ignoring %d Hz", shared.rate, opts.SampleRate)
	}
	return shared.out, shared.ready, shared.rate, nil
}

// Device is an open audio output.
type Device struct {
	mu     sync.Mutex
	out    output
	player io.Closer
	rate   beep.SampleRate
	closed bool

	mixMu sync.Mutex
	mixer beep.Mixer
}

// Open attaches a device to the process audio context and starts pulling
// silence from its mixer. It blocks until the platform reports the context
// ready or ctx is done. A later Open after a timeout waits on the same
// context instead of creating another.
func Open(ctx context.Context, opts Options) (*Device, error) {
	out, ready, rate, err := acquire(opts)
	if err != nil {
		return nil, err
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "audio device not ready")
	}

	d := &Device{
		out:  out,
		rate: beep.SampleRate(rate),
	}
	d.player = out.Play(&mixReader{d: d})

	zlog.Debug().Msgf("speaker: device open: rate=%d buffer=%v", rate, opts.BufferSize)
	return d, nil
}

// SampleRate returns the output sample rate.
func (d *Device) SampleRate() beep.SampleRate {
	return d.rate
}

// Suspended reports whether the shared context is suspended. It is after a
// previous device was closed.
func (d *Device) Suspended() bool {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	return shared.suspended
}

// Resume resumes a suspended context.
func (d *Device) Resume(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shared.mu.Lock()
	defer shared.mu.Unlock()
	if err := d.out.Resume(); err != nil {
		return errors.Wrap(err, "failed to resume audio context")
	}
	shared.suspended = false
	return nil
}

// Start mixes voice into the output.
func (d *Device) Start(voice beep.Streamer) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := d.out.Err(); err != nil {
		return errors.Wrap(err, "audio context failed")
	}

	d.mixMu.Lock()
	d.mixer.Add(voice)
	d.mixMu.Unlock()
	return nil
}

// Close stops the player and suspends the shared context until the next
// device resumes it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.player.Close()

	shared.mu.Lock()
	defer shared.mu.Unlock()
	if serr := d.out.Suspend(); serr != nil {
		zlog.Debug().Msgf("speaker: suspend on close failed: %v", serr)
	} else {
		shared.suspended = true
	}
	return err
}

// mixReader encodes the mixer output as interleaved little-endian float32.
type mixReader struct {
	d   *Device
	buf [][2]float64
}

const frameSize = 8 // 2 channels * 4 bytes

func (r *mixReader) Read(p []byte) (int, error) {
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	r.d.mixMu.Lock()
	n, _ := r.d.mixer.Stream(buf)
	r.d.mixMu.Unlock()
	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}

	encodeFloat32(p, buf)
	return frames * frameSize, nil
}

// encodeFloat32 writes samples into p, clipping to [-1, 1].
func encodeFloat32(p []byte, samples [][2]float64) {
	for i, s := range samples {
		for c := 0; c < 2; c++ {
			v := math.Max(-1, math.Min(1, s[c]))
			binary.LittleEndian.PutUint32(p[i*frameSize+c*4:], math.Float32bits(float32(v)))
		}
	}
}
