package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Assistant AssistantConfig `yaml:"assistant"`
	Audio     AudioConfig     `yaml:"audio"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	TTS       TTSConfig       `yaml:"tts"`
	Bot       BotConfig       `yaml:"bot"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
}

type AssistantConfig struct {
	WakePhrases    []string `yaml:"wake_phrases"`
	DebounceWindow string   `yaml:"debounce_window"`
	SessionTimeout string   `yaml:"session_timeout"`
	SleepTimeout   string   `yaml:"sleep_timeout"`
	QueueCapacity  int      `yaml:"queue_capacity"`
}

type AudioConfig struct {
	Source          string  `yaml:"source"`
	HTTPAddr        string  `yaml:"http_addr"`
	AuthToken       string  `yaml:"auth_token"`
	FileDir         string  `yaml:"file_dir"`
	CaptureDir      string  `yaml:"capture_dir"` // empty disables archiving
	SampleRate      int     `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	FluxThreshold   float64 `yaml:"flux_threshold"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type TTSConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
	Voice     string `yaml:"voice"`
}

type BotConfig struct {
	URL string `yaml:"url"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if len(c.Assistant.WakePhrases) == 0 {
		c.Assistant.WakePhrases = []string{"hey jarvis", "okay jarvis", "jarvis"}
	}
	if c.Assistant.DebounceWindow == "" {
		c.Assistant.DebounceWindow = "1s"
	}
	if c.Assistant.SessionTimeout == "" {
		c.Assistant.SessionTimeout = "12s"
	}
	if c.Assistant.SleepTimeout == "" {
		c.Assistant.SleepTimeout = "120s"
	}
	if c.Assistant.QueueCapacity == 0 {
		c.Assistant.QueueCapacity = 8
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "microphone"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = 1024
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
