package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/spf13/viper"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode

		Database          DatabaseConfig
		RabbitMQ          RabbitMQConfig
		WebSocket         WebSocketConfig
		ExternalAPIConfig ExternalAPIConfig
		Services          ServicesConfig
		Auth              Auth
		Matching          Matching
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"ridehail_user"`
		Password string `env:"DATABASE_PASSWORD" default:"ridehail_pass"`
		Database string `env:"DATABASE_DATABASE" default:"ridehail_db"`

		MaxOpenConns int32  `env:"DATABASE_MAXOPENCONN" default:"25"`
		MaxIdleTime  string `env:"DATABASE_MAXIDLETIME" default:"15m"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`         // максимум открытых соединений
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`          // минимум соединений в пуле
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"` // макс. "время жизни" соединения
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`  // макс. "время простоя" соединения
	}

	ExternalAPIConfig struct {
		LocationIQapiKey string `env:"LOCATIONIQ_API_KEY"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	WebSocketConfig struct {
		Port string `env:"WEBSOCKET_PORT" default:"8080"`
	}

	ServicesConfig struct {
		RideService           string `env:"SERVICES_RIDE_SERVICE" default:"3000"`
		DriverLocationService string `env:"SERVICES_DRIVER_LOCATION_SERVICE" default:"3001"`
		AdminService          string `env:"SERVICES_ADMIN_SERVICE" default:"3004"`
		AuthService           string `env:"SERVICES_AUTH_SERVICE" default:"3005"`
		MatchingService       string `env:"SERVICES_MATCHING_SERVICE" default:"3006"`
	}

	Auth struct {
		AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"15m"`
		RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" default:"168h"`
		JWTSecret       string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	// Matching holds the tunables for the driver-matching core: the
	// two timeout tiers, default ordering mode, the administrator alert
	// destination, and the geohash precision used for zone inference.
	Matching struct {
		PerDriverTimeoutSeconds  int    `env:"MATCHING_PER_DRIVER_TIMEOUT_SECONDS" default:"30"`
		PerBookingTimeoutSeconds int    `env:"MATCHING_PER_BOOKING_TIMEOUT_SECONDS" default:"300"`
		DefaultPriorityMode      string `env:"MATCHING_DEFAULT_PRIORITY_MODE" default:"RECENT_ACTIVITY"`
		AdminChannel             string `env:"MATCHING_ADMIN_CHANNEL" default:"log"`
		ZoneGeohashPrecision     int    `env:"MATCHING_ZONE_GEOHASH_PRECISION" default:"5"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// NewConfig loads configuration from filepath (a YAML file, optional — a
// missing file falls back to defaults + environment) and overlays
// environment variables named after each field's `env` tag, then applies
// the -mode flag on top.
func NewConfig(filepath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if filepath != "" {
		v.SetConfigFile(filepath)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnv(v)

	if filepath != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	return cfg, nil
}

// setDefaults seeds viper with every `default:` struct tag declared above,
// so an absent config file and absent environment variables still produce
// a runnable configuration.
func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"database.host":             "localhost",
		"database.port":             "5432",
		"database.user":             "ridehail_user",
		"database.password":         "ridehail_pass",
		"database.database":        "ridehail_db",
		"database.maxopenconns":     25,
		"database.maxidletime":      "15m",
		"database.maxconns":         20,
		"database.minconns":         2,
		"database.maxconnlifetime":  "30m",
		"database.maxconnidletime":  "5m",
		"rabbitmq.host":             "localhost",
		"rabbitmq.port":             "5672",
		"rabbitmq.user":             "guest",
		"rabbitmq.password":         "guest",
		"websocket.port":            "8080",
		"services.rideservice":           "3000",
		"services.driverlocationservice": "3001",
		"services.adminservice":          "3004",
		"services.authservice":           "3005",
		"services.matchingservice":       "3006",
		"auth.accesstokenttl":       "15m",
		"auth.refreshtokenttl":      "168h",
		"auth.jwtsecret":            "supersecretkey",
		"matching.perdrivertimeoutseconds":  30,
		"matching.perbookingtimeoutseconds": 300,
		"matching.defaultprioritymode":       "RECENT_ACTIVITY",
		"matching.adminchannel":              "log",
		"matching.zonegeohashprecision":      5,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// bindEnv wires each field to the SCREAMING_SNAKE_CASE environment variable
// named by its `env` tag, so existing deployment configs keep working
// unchanged after the configparser -> viper swap.
func bindEnv(v *viper.Viper) {
	binds := map[string]string{
		"database.host":                      "DATABASE_HOST",
		"database.port":                      "DATABASE_PORT",
		"database.user":                      "DATABASE_USER",
		"database.password":                  "DATABASE_PASSWORD",
		"database.database":                  "DATABASE_DATABASE",
		"database.maxopenconns":              "DATABASE_MAXOPENCONN",
		"database.maxidletime":               "DATABASE_MAXIDLETIME",
		"database.maxconns":                  "DATABASE_MAXCONNS",
		"database.minconns":                  "DATABASE_MINCONNS",
		"database.maxconnlifetime":           "DATABASE_MAXCONNLIFETIME",
		"database.maxconnidletime":           "DATABASE_MAXCONNIDLETIME",
		"rabbitmq.host":                      "RABBITMQ_HOST",
		"rabbitmq.port":                      "RABBITMQ_PORT",
		"rabbitmq.user":                      "RABBITMQ_USER",
		"rabbitmq.password":                  "RABBITMQ_PASSWORD",
		"websocket.port":                     "WEBSOCKET_PORT",
		"externalapiconfig.locationiqapikey": "LOCATIONIQ_API_KEY",
		"services.rideservice":               "SERVICES_RIDE_SERVICE",
		"services.driverlocationservice":     "SERVICES_DRIVER_LOCATION_SERVICE",
		"services.adminservice":              "SERVICES_ADMIN_SERVICE",
		"services.authservice":               "SERVICES_AUTH_SERVICE",
		"services.matchingservice":           "SERVICES_MATCHING_SERVICE",
		"auth.accesstokenttl":                "AUTH_ACCESS_TOKEN_TTL",
		"auth.refreshtokenttl":               "AUTH_REFRESH_TOKEN_TTL",
		"auth.jwtsecret":                     "AUTH_JWT_SECRET",
		"matching.perdrivertimeoutseconds":   "MATCHING_PER_DRIVER_TIMEOUT_SECONDS",
		"matching.perbookingtimeoutseconds":  "MATCHING_PER_BOOKING_TIMEOUT_SECONDS",
		"matching.defaultprioritymode":       "MATCHING_DEFAULT_PRIORITY_MODE",
		"matching.adminchannel":              "MATCHING_ADMIN_CHANNEL",
		"matching.zonegeohashprecision":      "MATCHING_ZONE_GEOHASH_PRECISION",
	}
	for key, env := range binds {
		_ = v.BindEnv(key, env)
	}
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}
