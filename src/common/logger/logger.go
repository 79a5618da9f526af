package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/op/go-logging"
)

const (
	DEFAULT_LOG_LEVEL = "INFO"

	LOG_FORMAT = `%{time:2006-01-02 15:04:05.000} [%{color}%{level:.5s}%{color:reset}] %{module}: %{message}`
)

var (
	mutex       sync.Mutex
	initialized bool
)

// InitGlobalLogger installs the stderr backend shared by every module logger.
// Later calls are no-ops.
func InitGlobalLogger(logLevel string) error {
	return InitGlobalLoggerWithOutput(os.Stderr, logLevel)
}

// InitGlobalLoggerWithOutput is InitGlobalLogger writing to out.
func InitGlobalLoggerWithOutput(out io.Writer, logLevel string) error {
	mutex.Lock()
	defer mutex.Unlock()

	if initialized {
		return nil
	}

	if strings.TrimSpace(logLevel) == "" {
		logLevel = DEFAULT_LOG_LEVEL
	}
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}

	backend := logging.NewLogBackend(out, "", 0)
	// %{module} will be the prefix set in logging.MustGetLogger(prefix)
	backendFormatter := logging.NewBackendFormatter(backend, logging.MustStringFormatter(LOG_FORMAT))

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	backendLeveled.SetLevel(logLevelCode, "")
	logging.SetBackend(backendLeveled)

	initialized = true
	return nil
}

// GetLoggerWithPrefix returns a logger whose records carry prefix as module.
func GetLoggerWithPrefix(prefix string) *logging.Logger {
	return logging.MustGetLogger(prefix)
}
