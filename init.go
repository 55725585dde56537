package coinalert

import (
	"os"
	"strconv"
	"strings"

	"github.com/raykavin/coinalert/pkg/logger"
	"github.com/raykavin/coinalert/pkg/logger/logrus"
	"github.com/raykavin/coinalert/pkg/logger/zerolog"
)

const (
	// Default configuration values
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
	defaultLogBackend    = "zerolog"
)

// Environment variable names
const (
	envLogLevel      = "COINALERT_LOG_LEVEL"
	envLogTimeFormat = "COINALERT_LOG_TIME_FORMAT"
	envLogColor      = "COINALERT_LOG_COLOR"
	envLogJSON       = "COINALERT_LOG_JSON"
	envLogBackend    = "COINALERT_LOG_BACKEND"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

func init() {
	// Initialize the logger with configuration from environment variables
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// initLogger creates a new logger instance configured from environment variables
func initLogger() (logger.Logger, error) {
	logLevel := getEnvWithDefault(envLogLevel, defaultLogLevel)
	logTimeFormat := getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat)

	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(getEnvWithDefault(envLogBackend, defaultLogBackend), "logrus") {
		log, err := logrus.New(os.Stdout, logLevel, logTimeFormat, logJSON)
		if err != nil {
			return nil, err
		}
		return log, nil
	}

	log, err := zerolog.New(logLevel, logTimeFormat, logColored, logJSON)
	if err != nil {
		return nil, err
	}
	return zerolog.NewAdapter(log.Logger), nil
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
