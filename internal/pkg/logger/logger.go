package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-Id"

	entryKey     = "logEntry"
	requestIDKey = "requestID"
)

// New builds the application logger.
// format "json" selects the JSON formatter, anything else the text formatter.
// Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// Middleware assigns a request id, stores a request-scoped entry in the gin context
// and writes one access log line per request.
func Middleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		entry := log.WithField("request_id", requestID)
		c.Set(entryKey, entry)

		c.Next()

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if uid, ok := c.Get("userID"); ok {
			fields["user_id"] = uid
		}

		e := entry.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			e.Error("request completed")
		case status >= 400:
			e.Warn("request completed")
		default:
			e.Info("request completed")
		}
	}
}

// FromContext returns the request-scoped entry, or a standard-logger entry
// when the middleware did not run (e.g. in handler unit tests).
func FromContext(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(entryKey); ok {
		if e, ok := v.(*logrus.Entry); ok {
			return e
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// RequestID returns the id assigned by Middleware, or empty string.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
