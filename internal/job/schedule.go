package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "schtocal/internal/log"
)

// cronLogger routes cron's own messages to the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	appLog.Error("cron: "+msg, err, kv...)
}

// Schedule runs fn on the standard five-field cron spec until ctx is done.
// A run that is still going when the next one fires makes that one skip.
func Schedule(ctx context.Context, spec string, fn func(context.Context)) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(spec, func() { fn(ctx) }); err != nil {
		return nil, fmt.Errorf("cron spec %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("sync schedule started", "spec", spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("sync schedule stopped")
	}()
	return c, nil
}
