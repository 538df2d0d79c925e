package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"jarvis/config"
	"jarvis/internal/application"
	"jarvis/internal/domain"
	"jarvis/internal/infra/anthropic"
	"jarvis/internal/infra/audio"
	"jarvis/internal/infra/bot"
	"jarvis/internal/infra/openai"
	"jarvis/internal/infra/pushover"
	"jarvis/internal/infra/speech"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	gate := application.NewSpeechGate()

	var speaker application.SpeechOutput
	if cfg.TTS.URL != "" {
		tts := speech.NewTTSClient(cfg.TTS.URL, cfg.TTS.AuthToken, cfg.TTS.Voice)
		speaker = application.NewSpeaker(tts, speech.NewPlayer(logger), gate, logger)
	} else {
		logger.Warn("no tts url configured, spoken lines go to the log")
		speaker = application.NewLoggedSpeech(gate, logger)
	}

	var recognizer application.Recognizer
	if cfg.OpenAI.APIKey != "" {
		recognizer = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	} else {
		logger.Warn("no openai api key configured, audio recognition disabled")
		recognizer = &application.NoopRecognizer{}
	}

	var router application.CommandRouter
	switch {
	case cfg.Bot.URL != "":
		router = bot.NewClient(cfg.Bot.URL, speaker, logger)
	case cfg.Anthropic.APIKey != "":
		router = anthropic.NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, speaker)
	default:
		logger.Warn("no bot url or anthropic api key configured, commands will be discarded")
		router = &application.NoopRouter{}
	}

	var observer application.StateObserver
	if cfg.Pushover.Enabled {
		observer = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey, logger)
	} else {
		observer = &application.NoopObserver{}
	}

	queue := application.NewUtteranceQueue(cfg.Assistant.QueueCapacity, logger)
	source := createAudioSource(cfg.Audio, queue, gate, logger)

	wakeHint := cfg.Assistant.WakePhrases[0]
	session := application.NewSession(speaker, router, observer, wakeHint, logger)

	sessionTimeout := parseDuration(cfg.Assistant.SessionTimeout, 12*time.Second, logger)
	sleepTimeout := parseDuration(cfg.Assistant.SleepTimeout, 120*time.Second, logger)
	debounceWindow := parseDuration(cfg.Assistant.DebounceWindow, time.Second, logger)

	monitor := application.NewInactivityMonitor(session, sessionTimeout, sleepTimeout, logger)
	wake := application.NewWakeMatcher(cfg.Assistant.WakePhrases)
	debounce := application.NewWakeDebouncer(debounceWindow)

	assistant := application.NewAssistant(
		source,
		queue,
		recognizer,
		session,
		wake,
		debounce,
		gate,
		monitor,
		logger,
	)

	logger.Info("starting assistant",
		"audio_source", cfg.Audio.Source,
		"wake_phrases", cfg.Assistant.WakePhrases,
	)

	greeting := domain.Greeting(time.Now().Hour()) +
		fmt.Sprintf(" Say %q when you need me.", wakeHint)
	if err := speaker.Say(ctx, greeting); err != nil {
		logger.Debug("greeting failed", "error", err)
	}

	if err := assistant.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

func createAudioSource(cfg config.AudioConfig, queue *application.UtteranceQueue, gate *application.SpeechGate, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "http":
		src := audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
		src.SetStats(queue)
		return src
	case "file":
		return audio.NewFileSource(afero.NewOsFs(), cfg.FileDir, logger)
	case "microphone":
		return createMicrophone(cfg, gate, logger)
	default:
		logger.Warn("unknown audio source, using microphone", "source", cfg.Source)
		return createMicrophone(cfg, gate, logger)
	}
}

func createMicrophone(cfg config.AudioConfig, gate *application.SpeechGate, logger *slog.Logger) application.AudioSource {
	var archive *audio.Archive
	if cfg.CaptureDir != "" {
		archive = audio.NewArchive(afero.NewOsFs(), cfg.CaptureDir, cfg.SampleRate, logger)
	}

	mic := audio.NewMicrophoneSource(audio.MicrophoneConfig{
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
		FluxThreshold:   cfg.FluxThreshold,
		Archive:         archive,
	}, logger)
	gate.SetSensitivityControl(mic)
	return mic
}

func parseDuration(value string, fallback time.Duration, logger *slog.Logger) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn("invalid duration, using default", "value", value, "default", fallback)
		return fallback
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
