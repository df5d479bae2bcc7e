package profile

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		input   string
		want    Waveform
		wantErr bool
	}{
		{input: "square", want: WaveSquare},
		{input: "Sine", want: WaveSine},
		{input: "sawtooth", want: WaveSawtooth},
		{input: "saw", want: WaveSawtooth},
		{input: " triangle ", want: WaveTriangle},
		{input: "noise", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWaveform(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "unknown", got.String())
		})
	}
}

func TestFrequency_Resolve(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	fixed := Fixed(800)
	assert.False(t, fixed.Dynamic())
	assert.Equal(t, 800.0, fixed.Resolve(r))
	assert.Equal(t, 800.0, fixed.Resolve(nil))

	ranged := Between(2000, 2500)
	assert.True(t, ranged.Dynamic())
	for i := 0; i < 1000; i++ {
		hz := ranged.Resolve(r)
		assert.GreaterOrEqual(t, hz, 2000.0)
		assert.Less(t, hz, 2500.0)
	}

	// Without a random source a dynamic frequency falls back to its base
	assert.Equal(t, 2000.0, ranged.Resolve(nil))
}

func TestFrequency_ResolveIsSeeded(t *testing.T) {
	a := rand.New(rand.NewPCG(42, 42))
	b := rand.New(rand.NewPCG(42, 42))
	f := Between(100, 1100)

	for i := 0; i < 20; i++ {
		assert.Equal(t, f.Resolve(a), f.Resolve(b))
	}
}

func TestProfile_Apply(t *testing.T) {
	base := Profile{Name: Click, Waveform: WaveSquare, Frequency: Fixed(800), Duration: 100 * time.Millisecond, Volume: 0.1}

	sine := WaveSine
	vol := 0.0
	dur := 5 * time.Millisecond
	freq := Fixed(300)

	t.Run("empty patch keeps profile", func(t *testing.T) {
		assert.Equal(t, base, base.Apply(Patch{}))
	})

	t.Run("patch values win", func(t *testing.T) {
		got := base.Apply(Patch{Waveform: &sine, Volume: &vol, Duration: &dur, Frequency: &freq})
		assert.Equal(t, Click, got.Name)
		assert.Equal(t, WaveSine, got.Waveform)
		assert.Equal(t, 0.0, got.Volume)
		assert.Equal(t, dur, got.Duration)
		assert.Equal(t, 300.0, got.Frequency.Base)
	})

	t.Run("original is not mutated", func(t *testing.T) {
		_ = base.Apply(Patch{Waveform: &sine})
		assert.Equal(t, WaveSquare, base.Waveform)
	})
}

func TestProfile_Validate(t *testing.T) {
	valid := Profile{Name: "beep", Waveform: WaveSine, Frequency: Fixed(440), Duration: time.Second, Volume: 0.5}

	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Profile) {}},
		{name: "missing name", mutate: func(p *Profile) { p.Name = "" }, wantErr: true},
		{name: "bad waveform", mutate: func(p *Profile) { p.Waveform = Waveform(9) }, wantErr: true},
		{name: "zero frequency", mutate: func(p *Profile) { p.Frequency = Fixed(0) }, wantErr: true},
		{name: "zero duration", mutate: func(p *Profile) { p.Duration = 0 }, wantErr: true},
		{name: "volume too loud", mutate: func(p *Profile) { p.Volume = 1.5 }, wantErr: true},
		{name: "negative volume", mutate: func(p *Profile) { p.Volume = -0.1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	require.Len(t, defaults, 6)

	byName := make(map[string]Profile)
	for _, p := range defaults {
		require.NoError(t, p.Validate())
		byName[p.Name] = p
		assert.True(t, IsBuiltin(p.Name))
	}

	assert.Equal(t, WaveSquare, byName[Click].Waveform)
	assert.Equal(t, 800.0, byName[Click].Frequency.Base)
	assert.Equal(t, WaveSawtooth, byName[Scan].Waveform)
	assert.True(t, byName[Typing].Frequency.Dynamic())
	assert.True(t, byName[Glitch].Frequency.Dynamic())
	assert.False(t, byName[Notification].Frequency.Dynamic())
	assert.Equal(t, 200*time.Millisecond, byName[Notification].Duration)

	assert.False(t, IsBuiltin("laser"))
}
