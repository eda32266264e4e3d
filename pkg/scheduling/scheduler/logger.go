package scheduler

import "github.com/rs/zerolog"

// cronLogger routes the cron engine's key/value logging into zerolog.
// Its Info stream is per-tick chatter, so it goes out at debug level.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
