package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	ServerPort  int

	// Prize split as percentages of the pool for places 1..3.
	PrizeFirstPct  float64
	PrizeSecondPct float64
	PrizeThirdPct  float64

	// How often the scheduler checks for tournaments due to start.
	SchedulerInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	first, err := floatEnv("PRIZE_FIRST_PCT", 60)
	if err != nil {
		return nil, err
	}
	second, err := floatEnv("PRIZE_SECOND_PCT", 25)
	if err != nil {
		return nil, err
	}
	third, err := floatEnv("PRIZE_THIRD_PCT", 15)
	if err != nil {
		return nil, err
	}
	if first+second+third > 100 {
		return nil, fmt.Errorf("prize split percentages exceed 100 (%.2f)", first+second+third)
	}

	interval, err := durationEnv("SCHEDULER_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		PrizeFirstPct:     first,
		PrizeSecondPct:    second,
		PrizeThirdPct:     third,
		SchedulerInterval: interval,
	}

	return cfg, nil
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", name, v)
	}
	return v, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return v, nil
}
