package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

type Logger struct {
	zap *zap.Logger
}

var globalLogger *Logger

func newCore(output io.Writer, level LogLevel, development bool) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.MessageKey = "action"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if development {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(output), parseLevel(level))
}

func parseLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a JSON logger writing to output at info level.
func New(output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{zap: zap.New(newCore(output, LevelInfo, false), zap.AddCaller(), zap.AddCallerSkip(2))}
}

func Init() {
	globalLogger = New(os.Stdout)
}

// Configure replaces the global logger. Development mode switches to the
// colored console encoder.
func Configure(level string, development bool) {
	core := newCore(os.Stdout, LogLevel(level), development)
	globalLogger = &Logger{zap: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}
}

// SetGlobal installs l as the package-level logger.
func SetGlobal(l *Logger) {
	globalLogger = l
}

func Sync() {
	if globalLogger != nil {
		_ = globalLogger.zap.Sync()
	}
}

func (l *Logger) log(level LogLevel, action string, userID *string, details map[string]interface{}, err error) {
	fields := make([]zap.Field, 0, 3)
	if userID != nil {
		fields = append(fields, zap.String("user_id", *userID))
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}
	if err != nil {
		fields = append(fields, zap.String("error", err.Error()))
	}

	switch level {
	case LevelDebug:
		l.zap.Debug(action, fields...)
	case LevelWarn:
		l.zap.Warn(action, fields...)
	case LevelError:
		l.zap.Error(action, fields...)
	default:
		l.zap.Info(action, fields...)
	}
}

func Debug(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelDebug, action, nil, details, nil)
	}
}

func Info(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelInfo, action, nil, details, nil)
	}
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelInfo, action, &userID, details, nil)
	}
}

func Warn(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelWarn, action, nil, details, nil)
	}
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelWarn, action, &userID, details, nil)
	}
}

func Error(action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelError, action, nil, details, err)
	}
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelError, action, &userID, details, err)
	}
}

func GetUserIDFromContext(c *fiber.Ctx) *string {
	if userID := c.Locals("userID"); userID != nil {
		if id, ok := userID.(string); ok {
			return &id
		}
	}
	return nil
}

var sensitiveFields = []string{"password", "oldPassword", "newPassword", "secret", "token", "shareToken", "accessToken"}

func redactSensitiveFields(jsonMap map[string]interface{}) {
	for _, field := range sensitiveFields {
		if _, exists := jsonMap[field]; exists {
			jsonMap[field] = "[REDACTED]"
		}
	}
}

func GetRequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return "empty"
	}

	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(body, &jsonMap); err == nil {
		redactSensitiveFields(jsonMap)
		if jsonBytes, err := json.Marshal(jsonMap); err == nil {
			if len(jsonBytes) > 200 {
				return string(jsonBytes[:200]) + "..."
			}
			return string(jsonBytes)
		}
	}

	return fmt.Sprintf("binary (%d bytes)", len(body))
}

func GetResponseSizeSummary(c *fiber.Ctx) string {
	body := c.Response().Body()
	if len(body) == 0 {
		return "empty"
	}

	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	return fmt.Sprintf("small (%d bytes)", len(body))
}

func GenerateRequestID() string {
	return uuid.New().String()
}
