package logger

// Logger is the logging interface used by every package in this module.
// Plug in any implementation (slog, zap, logrus) or keep the default Noop.
//
// It is used for:
// - API request/response debugging
// - retry attempts and rate limiter waits
// - submissions that were skipped or failed to deliver
//
// Usage Example:
//
//	client := mailercloud_go.NewClient(apiKey, mailercloud_go.WithLogger(myLogger))
//
//	// Route everything through log/slog
//	client := mailercloud_go.NewClient(apiKey, mailercloud_go.WithLogger(logger.NewSlog(slog.Default())))
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Noop discards everything. It is the default for every component.
type Noop struct{}

var _ Logger = Noop{}

func (Noop) Debugf(string, ...any) {}
func (Noop) Infof(string, ...any)  {}
func (Noop) Warnf(string, ...any)  {}
func (Noop) Errorf(string, ...any) {}
