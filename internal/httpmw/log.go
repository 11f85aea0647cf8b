package httpmw

import (
	"encoding/json"
	"log"
	"time"
)

// Info writes one JSON log line at level info.
func Info(logger *log.Logger, msg string, fields map[string]any) {
	LogJSON(logger, "info", msg, fields)
}

func Warn(logger *log.Logger, msg string, fields map[string]any) {
	LogJSON(logger, "warn", msg, fields)
}

func Error(logger *log.Logger, msg string, fields map[string]any) {
	LogJSON(logger, "error", msg, fields)
}

// LogJSON writes {"ts","level","msg",...fields} as a single line.
// A nil logger falls back to log.Default().
func LogJSON(logger *log.Logger, level, msg string, fields map[string]any) {
	if logger == nil {
		logger = log.Default()
	}
	payload := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		payload[k] = v
	}
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload["level"] = level
	payload["msg"] = msg

	b, err := json.Marshal(payload)
	if err != nil {
		logger.Printf(`{"level":"error","msg":"log_marshal_failed","error":%q}`, err.Error())
		return
	}
	logger.Print(string(b))
}
