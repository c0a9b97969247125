package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	m "gest.dev/pkg/gest/internal/model"
)

const (
	configBaseName   = "gest"
	configFolderPath = "."

	runConfigFileName = configBaseName + ".config.json"
	toolConfigName    = "." + configBaseName

	configFlagName      = "config"
	watchFlagName       = "watch"
	coverageFlagName    = "coverage"
	interactiveFlagName = "interactive"
	outputFlagName      = "output"
	verboseFlagName     = "verbose"

	testMatchKey   = "testMatch"
	basePathKey    = "basePath"
	coverageKey    = "coverage"
	testTimeoutKey = "testTimeout"
	outputKey      = "output"

	defaultReportsDir = ".gest-reports"
	defaultBasePath   = "."
	defaultTestMatch  = "**/*.test.js"

	envPrefix = "GEST"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".gest.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// errMissingTestMatch is returned when a run configuration selects no test files.
var errMissingTestMatch = errors.New("configuration must define a non-empty " + testMatchKey)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(toolConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(outputFlagName, defaultReportsDir)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// runConfigFile is the on-disk shape of gest.config.json.
type runConfigFile struct {
	TestMatch   []string `json:"testMatch" mapstructure:"testMatch"`
	BasePath    string   `json:"basePath" mapstructure:"basePath"`
	Coverage    bool     `json:"coverage" mapstructure:"coverage"`
	TestTimeout int64    `json:"testTimeout" mapstructure:"testTimeout"`
	Output      string   `json:"output,omitempty" mapstructure:"output"`
}

func defaultRunConfigFile() runConfigFile {
	return runConfigFile{
		TestMatch: []string{defaultTestMatch},
		BasePath:  defaultBasePath,
		Output:    defaultReportsDir,
	}
}

// loadRunConfig reads the JSON run configuration at path through a dedicated
// viper instance. The reports directory falls back to the tool setting.
func loadRunConfig(path string) (m.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(basePathKey, defaultBasePath)
	v.SetDefault(coverageKey, false)
	v.SetDefault(testTimeoutKey, 0)
	v.SetDefault(outputKey, viper.GetString(outputFlagName))

	if err := v.ReadInConfig(); err != nil {
		return m.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var file runConfigFile
	if err := v.Unmarshal(&file); err != nil {
		return m.Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if len(file.TestMatch) == 0 {
		return m.Config{}, fmt.Errorf("%s: %w", path, errMissingTestMatch)
	}

	if file.TestTimeout < 0 {
		return m.Config{}, fmt.Errorf("%s: %s must not be negative", path, testTimeoutKey)
	}

	slog.Debug("Loaded run configuration", "path", path, "testMatch", file.TestMatch, "coverage", file.Coverage)

	return m.Config{
		TestMatch:   file.TestMatch,
		BasePath:    m.Path(file.BasePath),
		Coverage:    file.Coverage,
		TestTimeout: time.Duration(file.TestTimeout) * time.Millisecond,
		Reports:     m.Path(file.Output),
	}, nil
}

// writeDefaultRunConfig creates path with the default run configuration and
// refuses to overwrite an existing file.
func writeDefaultRunConfig(path string) error {
	data, err := json.MarshalIndent(defaultRunConfigFile(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	_, err = f.Write(append(data, '\n'))

	return err
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug", "trace":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
