package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSweepSchedule = "@every 5m"

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule accepts a 5-field cron expression or a descriptor such as "@every 5m".
func ParseSchedule(expression string) (cron.Schedule, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		trimmed = DefaultSweepSchedule
	}
	schedule, err := scheduleParser.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", expression, err)
	}
	return schedule, nil
}

// StartSweeper evicts idle sessions on schedule until ctx is cancelled.
func StartSweeper(ctx context.Context, store *Store, expression string, ttl time.Duration) error {
	schedule, err := ParseSchedule(expression)
	if err != nil {
		return err
	}

	runner := cron.New(cron.WithParser(scheduleParser))
	runner.Schedule(schedule, cron.FuncJob(func() {
		if removed := store.Sweep(time.Now(), ttl); removed > 0 {
			log.Printf("session sweep removed %d idle sessions", removed)
		}
	}))
	runner.Start()
	log.Printf("session sweeper scheduled (%s, ttl %s)", strings.TrimSpace(expression), ttl)

	go func() {
		<-ctx.Done()
		<-runner.Stop().Done()
	}()
	return nil
}
