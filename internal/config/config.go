package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

const (
	defaultServerPort        = "8000"
	defaultServerTimeout     = 15 * time.Second
	defaultWeatherstackURL   = "http://api.weatherstack.com/current"
	defaultWeatherstackUnits = "m"
	defaultProviderTimeout   = 10 * time.Second
	defaultCacheExpiration   = 10 * time.Minute
)

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		viper.SetDefault("server.port", defaultServerPort)
		viper.SetDefault("weatherstack.api_url", defaultWeatherstackURL)
		viper.SetDefault("weatherstack.units", defaultWeatherstackUnits)
		viper.SetDefault("weatherstack.timeout", defaultProviderTimeout.String())
		viper.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
		viper.SetDefault("redis.addr", "localhost:6379")
		viper.SetDefault("cache.enabled", false)
		viper.SetDefault("cache.expiration", defaultCacheExpiration.String())

		_ = viper.BindEnv("server.port", "PORT")
		_ = viper.BindEnv("redis.addr", "REDIS_ADDR")

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Warnw("Project root not found, using defaults", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// getDuration parses a duration value, falling back to def when unset or invalid.
func getDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil || dur <= 0 {
		GetLogger().Warnw("Invalid duration in config, using default", "key", key, "value", durStr, "default", def)
		return def
	}
	return dur
}

func GetWeatherstackApiUrl() string {
	initConfig()
	return viper.GetString("weatherstack.api_url")
}

// GetWeatherstackAPIKey reads the access key from the environment, loading .env first if present.
func GetWeatherstackAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("WEATHERSTACK_API_KEY")
}

func GetWeatherstackUnits() string {
	initConfig()
	return viper.GetString("weatherstack.units")
}

// GetWeatherstackTimeout bounds a single provider call. Defaults to 10s.
func GetWeatherstackTimeout() time.Duration {
	return getDuration("weatherstack.timeout", defaultProviderTimeout)
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	return viper.GetString("server.port")
}

// GetServerTimeout returns one of the server.* timeouts. Defaults to 15s.
func GetServerTimeout(key string) time.Duration {
	return getDuration("server."+key, defaultServerTimeout)
}

func GetAllowedOrigins() []string {
	initConfig()
	return viper.GetStringSlice("cors.allowed_origins")
}

func IsCacheEnabled() bool {
	initConfig()
	return viper.GetBool("cache.enabled")
}

func GetCacheExpiration() time.Duration {
	return getDuration("cache.expiration", defaultCacheExpiration)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}
