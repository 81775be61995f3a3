// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command worker runs the dispatcher/job-pool/workflow-engine core as a
// single long-running process (§6): it drains tasks from a durable queue,
// schedules their handlers onto the worker pool, and drives any
// registered workflows forward on a fixed interval, until it receives a
// termination signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caiwan/audioarchive/blob"
	"github.com/caiwan/audioarchive/dispatch"
	"github.com/caiwan/audioarchive/handler"
	"github.com/caiwan/audioarchive/job"
	"github.com/caiwan/audioarchive/task"
	"github.com/caiwan/audioarchive/workflow"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("worker: exiting")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log = log.Level(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	queue, err := newQueue(cfg, log)
	if err != nil {
		return fmt.Errorf("new queue: %w", err)
	}

	store, err := blob.NewFSStore(cfg.BlobDir)
	if err != nil {
		return fmt.Errorf("new blob store: %w", err)
	}

	jobs := job.NewManager(job.Options{Workers: cfg.Workers, IdleSleep: cfg.IdleSleep, Compact: cfg.Compact}, log)
	jobs.Start()

	d := dispatch.New(queue, jobs, log)

	converter := handler.NewAudioConverter(store, d, jobs, log, cfg.MaxFFmpegProcesses)
	converter.Register(d)

	wfMgr := workflow.NewManager(d, log, cfg.MaxConcurrentSteps)

	errCh := make(chan error, 2)
	go func() { errCh <- d.Run(ctx) }()
	go func() { errCh <- wfMgr.Run(ctx, cfg.PollInterval) }()

	log.Info().Int("workers", cfg.Workers).Str("queue", cfg.QueueBackend).Msg("worker: running")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("worker: component exited early")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	return jobs.Shutdown(shutdownCtx)
}

func newQueue(cfg config, log zerolog.Logger) (task.Queue, error) {
	switch cfg.QueueBackend {
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.RedisAddr},
		})
		return task.NewRedisQueue(client, cfg.RedisKey, cfg.RedisPopTimeout, log), nil
	case "local", "":
		return task.NewLocalQueue(), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}

type config struct {
	Workers            int
	IdleSleep          time.Duration
	MaxFFmpegProcesses int
	MaxConcurrentSteps int
	PollInterval       time.Duration
	ShutdownTimeout    time.Duration
	BlobDir            string
	QueueBackend       string
	RedisAddr          string
	RedisKey           string
	RedisPopTimeout    time.Duration
	LogLevel           zerolog.Level
	Compact            bool
}

func loadConfig() (config, error) {
	v := viper.New()
	v.SetEnvPrefix("AUDIOARCHIVE")
	v.AutomaticEnv()

	v.SetDefault("workers", 0)
	v.SetDefault("idle_sleep", "300ms")
	v.SetDefault("max_ffmpeg_processes", 16)
	v.SetDefault("max_concurrent_steps", 0)
	v.SetDefault("poll_interval", "500ms")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("blob_dir", "./data/blobs")
	v.SetDefault("queue_backend", "local")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_key", "audioarchive:tasks")
	v.SetDefault("redis_pop_timeout", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("compact_queue", false)

	configFile := os.Getenv("AUDIOARCHIVE_CONFIG")
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return config{}, fmt.Errorf("parse log_level: %w", err)
	}

	return config{
		Workers:            v.GetInt("workers"),
		IdleSleep:          v.GetDuration("idle_sleep"),
		MaxFFmpegProcesses: v.GetInt("max_ffmpeg_processes"),
		MaxConcurrentSteps: v.GetInt("max_concurrent_steps"),
		PollInterval:       v.GetDuration("poll_interval"),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
		BlobDir:            v.GetString("blob_dir"),
		QueueBackend:       v.GetString("queue_backend"),
		RedisAddr:          v.GetString("redis_addr"),
		RedisKey:           v.GetString("redis_key"),
		RedisPopTimeout:    v.GetDuration("redis_pop_timeout"),
		LogLevel:           level,
		Compact:            v.GetBool("compact_queue"),
	}, nil
}
