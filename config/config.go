package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/pagesnap/pagesnap/compact"
	"github.com/pagesnap/pagesnap/rasterize"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Config contains the rendering and compaction settings
type Config struct {
	// Rasterization
	TargetWidth int
	MaxHeight   int
	DPI         float64
	AutoRotate  bool
	Grayscale   bool

	// Compaction
	ResizeMode   string
	StepSize     float64
	MinDimension int
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// Setup loads configuration and returns Config and Logger
func Setup() (Config, *slog.Logger) {
	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	cfg := Config{
		TargetWidth:  getEnvInt("RASTER_TARGET_WIDTH", rasterize.DefaultTargetWidth),
		MaxHeight:    getEnvInt("RASTER_MAX_HEIGHT", rasterize.DefaultMaxHeight),
		DPI:          getEnvFloat("RASTER_DPI", 0),
		AutoRotate:   getEnvBool("RASTER_AUTO_ROTATE", true),
		Grayscale:    getEnvBool("RASTER_GRAYSCALE", false),
		ResizeMode:   getEnv("COMPACT_RESIZE_MODE", "thumbnail"),
		StepSize:     getEnvFloat("COMPACT_STEP_SIZE", compact.DefaultStepSize),
		MinDimension: getEnvInt("COMPACT_MIN_DIMENSION", compact.DefaultMinDimension),
	}

	logger.Info("Raster configuration loaded",
		"targetWidth", cfg.TargetWidth,
		"maxHeight", cfg.MaxHeight,
		"resizeMode", cfg.ResizeMode,
		"stepSize", cfg.StepSize)

	return cfg, logger
}

// RasterizeOptions converts the loaded settings into rasterizer options
func (cfg Config) RasterizeOptions() rasterize.Options {
	return rasterize.Options{
		RenderOptions: rasterize.RenderOptions{
			TargetWidth: cfg.TargetWidth,
			MaxHeight:   cfg.MaxHeight,
			DPI:         cfg.DPI,
		},
		AutoRotate: cfg.AutoRotate,
		Grayscale:  cfg.Grayscale,
	}
}

// CompactOptions converts the loaded settings into compaction options.
// The resize mode string is validated here, at the configuration boundary.
func (cfg Config) CompactOptions() (compact.Options, error) {
	mode, err := compact.ParseMode(cfg.ResizeMode)
	if err != nil {
		return compact.Options{}, fmt.Errorf("COMPACT_RESIZE_MODE: %w", err)
	}
	return compact.Options{
		Mode:         mode,
		StepSize:     cfg.StepSize,
		MinDimension: cfg.MinDimension,
		Logger:       Logger,
	}, nil
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "stderr")
	var logWriter io.Writer

	switch logOutput {
	case "stdout":
		logWriter = os.Stdout
	case "stderr":
		logWriter = os.Stderr
	default:
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "pagesnap.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stderr
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stderr
			} else {
				logWriter = logFile
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
