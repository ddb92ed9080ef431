package main

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"loan-origination/internal/config"
	"loan-origination/internal/infrastructure/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs int
}

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return nil
}

func TestStartServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
	}
	logger := logging.NewLogger(config.LoggerConfig{})

	srv, serverErrors, shutdownChan := startServer(cfg, http.NewServeMux(), logger)
	t.Cleanup(func() { _ = srv.Close() })

	assert.NotNil(t, srv)
	assert.NotNil(t, serverErrors)
	assert.NotNil(t, shutdownChan)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
}

func TestHandleShutdown(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cronScheduler := cron.New()
	cronScheduler.Start()
	srv := &http.Server{}
	shutdownChan := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)

	shutdownChan <- syscall.SIGTERM
	serverErrors <- nil

	done := make(chan struct{})
	go func() {
		handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}

func TestStartBatchJobs(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	t.Run("Schedules the reminder when enabled", func(t *testing.T) {
		cfg := &config.Config{Batch: config.BatchConfig{
			ReminderEnabled:  true,
			ReminderSchedule: "*/5 * * * *",
			ReminderTimeout:  time.Minute,
		}}
		c := startBatchJobs(cfg, logger, &countingJob{})
		defer c.Stop()

		assert.Len(t, c.Entries(), 1)
	})

	t.Run("Disabled reminder schedules nothing", func(t *testing.T) {
		cfg := &config.Config{Batch: config.BatchConfig{ReminderEnabled: false}}
		c := startBatchJobs(cfg, logger, &countingJob{})
		defer c.Stop()

		assert.Empty(t, c.Entries())
	})

	t.Run("Invalid schedule is logged, not fatal", func(t *testing.T) {
		cfg := &config.Config{Batch: config.BatchConfig{ReminderEnabled: true, ReminderSchedule: "every tuesday"}}
		c := startBatchJobs(cfg, logger, &countingJob{})
		defer c.Stop()

		assert.Empty(t, c.Entries())
	})

	t.Run("Scheduled job invokes Run", func(t *testing.T) {
		cfg := &config.Config{Batch: config.BatchConfig{ReminderEnabled: true, ReminderSchedule: "0 8 * * *"}}
		job := &countingJob{}
		c := startBatchJobs(cfg, logger, job)
		defer c.Stop()

		require.Len(t, c.Entries(), 1)
		c.Entries()[0].Job.Run()
		assert.Equal(t, 1, job.runs)
	})
}

func TestRabbitMQURI(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.RabbitMQConfig
		want    string
		wantErr bool
	}{
		{"with credentials", config.RabbitMQConfig{Host: "mq", Port: 5673, Username: "app", Password: "secret"}, "amqp://app:secret@mq:5673/", false},
		{"default port", config.RabbitMQConfig{Host: "mq"}, "amqp://mq:5672/", false},
		{"missing host", config.RabbitMQConfig{}, "", true},
		{"username without password", config.RabbitMQConfig{Host: "mq", Username: "app"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rabbitMQURI(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitializeRedisClient(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	t.Run("Disabled", func(t *testing.T) {
		cfg := &config.Config{Redis: config.RedisConfig{Enabled: false, Addr: "localhost:6379"}}
		assert.Nil(t, initializeRedisClient(cfg, logger))
	})

	t.Run("Connects", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Addr: mr.Addr()}}

		rdb := initializeRedisClient(cfg, logger)
		require.NotNil(t, rdb)
		closeRedisClient(rdb, logger)
	})

	t.Run("Unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Addr: addr}}

		assert.Nil(t, initializeRedisClient(cfg, logger))
	})
}

func TestInitializeRabbitMQ_Disabled(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cfg := &config.Config{RabbitMQ: config.RabbitMQConfig{Enabled: false, Host: "mq"}}

	assert.Nil(t, initializeRabbitMQ(cfg, logger))
}
