package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel controls which events are emitted.
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{DEBUG: 0, INFO: 1, WARN: 2, ERROR: 3}

// Logger writes leveled, structured events as key=value text or JSON.
type Logger struct {
	level   LogLevel
	json    bool
	out     io.Writer
	context map[string]string
	mu      *sync.Mutex
}

var (
	global *Logger
	once   sync.Once
)

// Init configures the process-wide logger. A nil writer means stdout.
func Init(level LogLevel, jsonFormat bool, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	if _, ok := levelRank[level]; !ok {
		level = INFO
	}
	global = &Logger{
		level:   level,
		json:    jsonFormat,
		out:     w,
		context: map[string]string{},
		mu:      &sync.Mutex{},
	}
}

// GetLogger returns the process-wide logger, initializing a default one
// if Init was never called.
func GetLogger() *Logger {
	once.Do(func() {
		if global == nil {
			Init(INFO, false, os.Stdout)
		}
	})
	if global == nil {
		Init(INFO, false, os.Stdout)
	}
	return global
}

// WithContext returns a logger that stamps every event with the given
// key/value pair.
func (l *Logger) WithContext(key, value string) *Logger {
	ctx := make(map[string]string, len(l.context)+1)
	for k, v := range l.context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Logger{level: l.level, json: l.json, out: l.out, context: ctx, mu: l.mu}
}

func (l *Logger) Debug(event string, kv ...interface{}) { l.log(DEBUG, event, kv...) }
func (l *Logger) Info(event string, kv ...interface{})  { l.log(INFO, event, kv...) }
func (l *Logger) Warn(event string, kv ...interface{})  { l.log(WARN, event, kv...) }
func (l *Logger) Error(event string, kv ...interface{}) { l.log(ERROR, event, kv...) }

func (l *Logger) log(level LogLevel, event string, kv ...interface{}) {
	if levelRank[level] < levelRank[l.level] {
		return
	}

	fields := map[string]interface{}{}
	for k, v := range l.context {
		fields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		fields[key] = kv[i+1]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format(time.RFC3339)
	if l.json {
		fields["ts"] = ts
		fields["level"] = string(level)
		fields["event"] = event
		if data, err := json.Marshal(fields); err == nil {
			fmt.Fprintln(l.out, string(data))
		}
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %-5s %s", ts, level, event)
	for k, v := range fields {
		fmt.Fprintf(&sb, " %s=%v", k, v)
	}
	fmt.Fprintln(l.out, sb.String())
}

// Package-level helpers taking an explicit field map.

func Debug(msg string, fields map[string]interface{}) { GetLogger().log(DEBUG, msg, flatten(fields)...) }
func Info(msg string, fields map[string]interface{})  { GetLogger().log(INFO, msg, flatten(fields)...) }
func Warn(msg string, fields map[string]interface{})  { GetLogger().log(WARN, msg, flatten(fields)...) }
func Error(msg string, fields map[string]interface{}) { GetLogger().log(ERROR, msg, flatten(fields)...) }

func flatten(fields map[string]interface{}) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
