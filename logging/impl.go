package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	impl struct {
		name  string
		level AtomicLevel
		inUTC bool

		appenders []Appender
	}

	// LogEntry embeds a zapcore Entry and slice of Fields.
	LogEntry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

// callerSkip is the number of frames between a public logging method and runtime.Caller.
const callerSkip = 4

func (imp *impl) newEntry(level Level, msg string, fields []zapcore.Field) *LogEntry {
	ret := &LogEntry{fields: fields}
	ret.Time = time.Now()
	if imp.inUTC {
		ret.Time = ret.Time.UTC()
	}
	ret.LoggerName = imp.name
	ret.Level = level.AsZap()
	ret.Message = msg
	ret.Caller = getCaller(callerSkip)
	return ret
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Level() zapcore.Level {
	return imp.GetLevel().AsZap()
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}

	return multierr.Combine(errs...)
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.AsZap().Desugar()
}

func (imp *impl) Named(name string) *zap.SugaredLogger {
	return imp.AsZap().Named(name)
}

func (imp *impl) With(args ...interface{}) *zap.SugaredLogger {
	return imp.AsZap().With(args...)
}

func (imp *impl) WithOptions(opts ...zap.Option) *zap.SugaredLogger {
	return imp.AsZap().WithOptions(opts...)
}

// AsZap builds a zap logger writing to stdout, teed into every appender that is itself a zap core
// such as the observer of a test logger.
func (imp *impl) AsZap() *zap.SugaredLogger {
	config := NewZapLoggerConfig()
	config.Level = GlobalLogLevel
	ret := zap.Must(config.Build()).Sugar().Named(imp.name)
	for _, appender := range imp.appenders {
		core, ok := appender.(zapcore.Core)
		if !ok {
			continue
		}
		ret = ret.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}
	return ret
}

func (imp *impl) shouldLog(ctx context.Context, level Level) bool {
	if GlobalLogLevel.Level() == zapcore.DebugLevel {
		return true
	}
	if level == DEBUG && IsDebugMode(ctx) {
		return true
	}
	return level >= imp.level.Get()
}

func (imp *impl) write(entry *LogEntry) {
	for _, appender := range imp.appenders {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// keysAndValuesToFields pairs up the odd elements as keys with the element that follows each as
// its value. A trailing key without a value is logged with an error value.
func keysAndValuesToFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for keyIdx := 0; keyIdx < len(keysAndValues); keyIdx += 2 {
		var keyStr string
		if stringer, ok := keysAndValues[keyIdx].(fmt.Stringer); ok {
			keyStr = stringer.String()
		} else {
			keyStr = fmt.Sprintf("%v", keysAndValues[keyIdx])
		}

		if keyIdx+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(keyStr, keysAndValues[keyIdx+1]))
		} else {
			fields = append(fields, zap.Any(keyStr, errors.New("unpaired log key")))
		}
	}
	return fields
}

// The three helpers below are each called directly from a public method so the caller frame is the
// same distance away for all of them.

func (imp *impl) logArgs(ctx context.Context, level Level, args []interface{}) {
	if imp.shouldLog(ctx, level) {
		imp.write(imp.newEntry(level, fmt.Sprint(args...), nil))
	}
}

func (imp *impl) logTemplate(ctx context.Context, level Level, template string, args []interface{}) {
	if imp.shouldLog(ctx, level) {
		imp.write(imp.newEntry(level, fmt.Sprintf(template, args...), nil))
	}
}

func (imp *impl) logFields(ctx context.Context, level Level, msg string, keysAndValues []interface{}) {
	if imp.shouldLog(ctx, level) {
		imp.write(imp.newEntry(level, msg, keysAndValuesToFields(keysAndValues)))
	}
}

func (imp *impl) Debug(args ...interface{}) {
	imp.logArgs(context.Background(), DEBUG, args)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.logTemplate(context.Background(), DEBUG, template, args)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.logFields(context.Background(), DEBUG, msg, keysAndValues)
}

func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	imp.logArgs(ctx, DEBUG, args)
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.logTemplate(ctx, DEBUG, template, args)
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.logFields(ctx, DEBUG, msg, keysAndValues)
}

func (imp *impl) Info(args ...interface{}) {
	imp.logArgs(context.Background(), INFO, args)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.logTemplate(context.Background(), INFO, template, args)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.logFields(context.Background(), INFO, msg, keysAndValues)
}

func (imp *impl) Warn(args ...interface{}) {
	imp.logArgs(context.Background(), WARN, args)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.logTemplate(context.Background(), WARN, template, args)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.logFields(context.Background(), WARN, msg, keysAndValues)
}

func (imp *impl) Error(args ...interface{}) {
	imp.logArgs(context.Background(), ERROR, args)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.logTemplate(context.Background(), ERROR, template, args)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.logFields(context.Background(), ERROR, msg, keysAndValues)
}

// These Fatal* methods log as errors then exit the process.
func (imp *impl) Fatal(args ...interface{}) {
	imp.logArgs(context.Background(), ERROR, args)
	os.Exit(1)
}

func (imp *impl) Fatalf(template string, args ...interface{}) {
	imp.logTemplate(context.Background(), ERROR, template, args)
	os.Exit(1)
}

func (imp *impl) Fatalw(msg string, keysAndValues ...interface{}) {
	imp.logFields(context.Background(), ERROR, msg, keysAndValues)
	os.Exit(1)
}

// Return example: "logging/impl_test.go:36".
func getCaller(skip int) zapcore.EntryCaller {
	var ok bool
	var entryCaller zapcore.EntryCaller
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(skip)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true

	if runtimeFunc := runtime.FuncForPC(entryCaller.PC); runtimeFunc != nil {
		entryCaller.Function = runtimeFunc.Name()
	}
	return entryCaller
}
