package audio

import "time"

// SoundType represents different sound effects
type SoundType int

const (
	SoundEat   SoundType = iota // Food consumed
	SoundDeath                  // Wall or self collision
	soundTypeCount
)

// AudioConfig holds volume and format settings
type AudioConfig struct {
	MasterVolume  float64 // 0.0-1.0
	SampleRate    int
	EffectVolumes map[SoundType]float64
}

// DefaultAudioConfig returns the default mix
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		MasterVolume: 0.5,
		SampleRate:   44100,
		EffectVolumes: map[SoundType]float64{
			SoundEat:   0.6,
			SoundDeath: 0.8,
		},
	}
}

// Sound timing
const (
	EatSoundNote1Duration = 60 * time.Millisecond
	EatSoundNote2Duration = 90 * time.Millisecond
	EatSoundAttack        = 5 * time.Millisecond
	EatSoundNote1Release  = 20 * time.Millisecond
	EatSoundNote2Release  = 60 * time.Millisecond

	DeathSoundDuration = 400 * time.Millisecond
	DeathSoundAttack   = 10 * time.Millisecond
	DeathSoundRelease  = 250 * time.Millisecond
)

// speakerBuffer is the speaker latency budget
const speakerBuffer = 100 * time.Millisecond
