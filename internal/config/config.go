package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters for DataService.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns int32 `yaml:"max_conns"` // default: max(4, NumCPU)
	MinConns int32 `yaml:"min_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// StoreConfig holds connection parameters for the shared Redis-style store.
type StoreConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Security holds the token signing secret and password work factor shared by
// all three gateway services. LoginService mints tokens, AccountService and
// WorldService only verify them, but all three need the same secret.
type Security struct {
	TokenSecret        string `yaml:"token_secret"`
	TokenIssuer        string `yaml:"token_issuer"`         // default "flyagain-login"
	TokenTTLSeconds    int    `yaml:"token_ttl_seconds"`    // default 86400
	PasswordWorkFactor int    `yaml:"password_work_factor"` // bcrypt cost, default 12
}

// ConnectionLimits bounds the shared connection limiter / idle watchdog
// every gateway pipeline stage 1/2 applies.
type ConnectionLimits struct {
	MaxTotalConnections int `yaml:"max_total_connections"`
	MaxPerAddress       int `yaml:"max_per_address"`
	IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds"` // default 60
}

func defaultConnectionLimits() ConnectionLimits {
	return ConnectionLimits{
		MaxTotalConnections: 5000,
		MaxPerAddress:       10,
		IdleTimeoutSeconds:  60,
	}
}

func defaultSecurity() Security {
	return Security{
		TokenSecret:        "change-me-in-production",
		TokenIssuer:        "flyagain-login",
		TokenTTLSeconds:    86400,
		PasswordWorkFactor: 12,
	}
}

func defaultStore() StoreConfig {
	return StoreConfig{
		Addr: "127.0.0.1:6379",
		DB:   0,
	}
}

// RateLimit is a fixed-window rate-limit threshold.
type RateLimit struct {
	Threshold     int `yaml:"threshold"`
	WindowSeconds int `yaml:"window_seconds"`
}

// DataService holds configuration for the DataService RPC process.
type DataService struct {
	BindAddress string         `yaml:"bind_address"`
	Port        int            `yaml:"port"`
	LogLevel    string         `yaml:"log_level"`
	Database    DatabaseConfig `yaml:"database"`
	Store       StoreConfig    `yaml:"store"`

	// WritebackIntervalSeconds is how often the shared store is swept for
	// dirty markers and flushed to the relational store.
	WritebackIntervalSeconds int `yaml:"writeback_interval_seconds"`
}

// DefaultDataService returns DataService config with sensible defaults.
func DefaultDataService() DataService {
	return DataService{
		BindAddress: "0.0.0.0",
		Port:        9090,
		LogLevel:    "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "flyagain",
			Password: "flyagain",
			DBName:   "flyagain",
			SSLMode:  "disable",
		},
		Store:                    defaultStore(),
		WritebackIntervalSeconds: 300,
	}
}

// LoginService holds configuration for the LoginService TCP process.
type LoginService struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`

	DataServiceAddr string           `yaml:"data_service_addr"`
	Store           StoreConfig      `yaml:"store"`
	Security        Security         `yaml:"security"`
	Connections     ConnectionLimits `yaml:"connections"`

	// AccountServiceAddr is handed back to clients in LoginResponse.
	AccountServiceAddr string `yaml:"account_service_addr"`

	RegisterRateLimit RateLimit `yaml:"register_rate_limit"`
	LoginRateLimit    RateLimit `yaml:"login_rate_limit"`
}

// DefaultLoginService returns LoginService config with sensible defaults.
func DefaultLoginService() LoginService {
	return LoginService{
		BindAddress:        "0.0.0.0",
		Port:               7777,
		LogLevel:           "info",
		DataServiceAddr:    "127.0.0.1:9090",
		Store:              defaultStore(),
		Security:           defaultSecurity(),
		Connections:        defaultConnectionLimits(),
		AccountServiceAddr: "127.0.0.1:7779",
		RegisterRateLimit:  RateLimit{Threshold: 3, WindowSeconds: 3600},
		LoginRateLimit:     RateLimit{Threshold: 5, WindowSeconds: 60},
	}
}

// AccountService holds configuration for the AccountService TCP process.
type AccountService struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`

	DataServiceAddr string           `yaml:"data_service_addr"`
	Store           StoreConfig      `yaml:"store"`
	Security        Security         `yaml:"security"`
	Connections     ConnectionLimits `yaml:"connections"`

	WorldServiceTCPAddr string `yaml:"world_service_tcp_addr"`
	WorldServiceUDPAddr string `yaml:"world_service_udp_addr"`

	// CharacterCacheTTLSeconds is the TTL of the char:{id} snapshot primed on
	// character select.
	CharacterCacheTTLSeconds int `yaml:"character_cache_ttl_seconds"`
}

// DefaultAccountService returns AccountService config with sensible defaults.
func DefaultAccountService() AccountService {
	return AccountService{
		BindAddress:              "0.0.0.0",
		Port:                     7779,
		LogLevel:                 "info",
		DataServiceAddr:          "127.0.0.1:9090",
		Store:                    defaultStore(),
		Security:                 defaultSecurity(),
		Connections:              defaultConnectionLimits(),
		WorldServiceTCPAddr:      "127.0.0.1:7780",
		WorldServiceUDPAddr:      "127.0.0.1:7781",
		CharacterCacheTTLSeconds: 300,
	}
}

// WorldService holds configuration for the WorldService TCP+UDP process.
type WorldService struct {
	BindAddress string `yaml:"bind_address"`
	TCPPort     int    `yaml:"tcp_port"`
	UDPPort     int    `yaml:"udp_port"`
	LogLevel    string `yaml:"log_level"`

	DataServiceAddr string           `yaml:"data_service_addr"`
	Store           StoreConfig      `yaml:"store"`
	Security        Security         `yaml:"security"`
	Connections     ConnectionLimits `yaml:"connections"`

	TickRateHz             int `yaml:"tick_rate_hz"`             // default 20
	InputQueueCapacity     int `yaml:"input_queue_capacity"`     // default 50000
	MaxPlayersPerChannel   int `yaml:"max_players_per_channel"`  // default 1000
	PersistIntervalSeconds int `yaml:"persist_interval_seconds"` // default 60
	ShutdownBudgetSeconds  int `yaml:"shutdown_budget_seconds"`  // default 30

	// UDPPacketsPerSecond bounds per-sender-address UDP flood protection.
	UDPPacketsPerSecond int `yaml:"udp_packets_per_second"` // default 100
}

// DefaultWorldService returns WorldService config with sensible defaults.
func DefaultWorldService() WorldService {
	return WorldService{
		BindAddress:            "0.0.0.0",
		TCPPort:                7780,
		UDPPort:                7781,
		LogLevel:               "info",
		DataServiceAddr:        "127.0.0.1:9090",
		Store:                  defaultStore(),
		Security:               defaultSecurity(),
		Connections:            defaultConnectionLimits(),
		TickRateHz:             20,
		InputQueueCapacity:     50000,
		MaxPlayersPerChannel:   1000,
		PersistIntervalSeconds: 60,
		ShutdownBudgetSeconds:  30,
		UDPPacketsPerSecond:    100,
	}
}

// load reads a YAML file into cfg, returning cfg unchanged if the file does
// not exist (matches teacher's LoadLoginServer behavior).
func load(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadDataService loads DataService config from a YAML file, defaults otherwise.
func LoadDataService(path string) (DataService, error) {
	cfg := DefaultDataService()
	err := load(path, &cfg)
	return cfg, err
}

// LoadLoginService loads LoginService config from a YAML file, defaults otherwise.
func LoadLoginService(path string) (LoginService, error) {
	cfg := DefaultLoginService()
	err := load(path, &cfg)
	return cfg, err
}

// LoadAccountService loads AccountService config from a YAML file, defaults otherwise.
func LoadAccountService(path string) (AccountService, error) {
	cfg := DefaultAccountService()
	err := load(path, &cfg)
	return cfg, err
}

// LoadWorldService loads WorldService config from a YAML file, defaults otherwise.
func LoadWorldService(path string) (WorldService, error) {
	cfg := DefaultWorldService()
	err := load(path, &cfg)
	return cfg, err
}
