package study

import "time"

const (
	DefaultTimeoutSeconds    = 15
	DefaultWarnSeconds       = 5
	DefaultWrongDelaySeconds = 3

	MinTimeoutSeconds = 5
	MinWarnSeconds    = 1
)

// SpeechSettings controls which texts are handed to Feedback.Speak.
type SpeechSettings struct {
	Enabled  bool `json:"enabled"`
	Question bool `json:"question"`
	Answer   bool `json:"answer"`
}

// Config holds the timing and feedback settings of one session.
type Config struct {
	TimeoutSeconds    int            `json:"timeout_seconds"`
	WarnSeconds       int            `json:"warn_seconds"`
	WrongDelaySeconds int            `json:"wrong_delay_seconds"`
	SoundEnabled      bool           `json:"sound_enabled"`
	Speech            SpeechSettings `json:"speech"`
}

// DefaultConfig returns the stock timings with all feedback enabled.
func DefaultConfig() Config {
	return Config{
		TimeoutSeconds:    DefaultTimeoutSeconds,
		WarnSeconds:       DefaultWarnSeconds,
		WrongDelaySeconds: DefaultWrongDelaySeconds,
		SoundEnabled:      true,
		Speech:            SpeechSettings{Enabled: true, Question: true, Answer: true},
	}
}

// Normalize fills unset timings with defaults and enforces the bounds.
// A timeout below five seconds becomes five. The warning threshold is kept
// between one and one second under the timeout, so the first warning tick
// is also the one that plays the warning sound. A negative wrong delay
// becomes zero.
func (c Config) Normalize() Config {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	c.TimeoutSeconds = max(c.TimeoutSeconds, MinTimeoutSeconds)

	if c.WarnSeconds == 0 {
		c.WarnSeconds = DefaultWarnSeconds
	}
	c.WarnSeconds = min(max(c.WarnSeconds, MinWarnSeconds), c.TimeoutSeconds-1)

	if c.WrongDelaySeconds == 0 {
		c.WrongDelaySeconds = DefaultWrongDelaySeconds
	}
	c.WrongDelaySeconds = max(c.WrongDelaySeconds, 0)
	return c
}

// WrongDelay is how long a timed-out card's answer stays visible before the
// session advances.
func (c Config) WrongDelay() time.Duration {
	return time.Duration(c.WrongDelaySeconds) * time.Second
}

func (c Config) speakQuestions() bool { return c.Speech.Enabled && c.Speech.Question }
func (c Config) speakAnswers() bool   { return c.Speech.Enabled && c.Speech.Answer }
