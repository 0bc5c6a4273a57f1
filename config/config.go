package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Game     GameConfig     `mapstructure:"game"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
	// AdminIPs restricts /api/admin to these addresses or CIDR ranges.
	// Empty means any address holding the admin key.
	AdminIPs []string `mapstructure:"admin_ips"`
}

type DatabaseConfig struct {
	Mode        string        `mapstructure:"mode"` // sqlite | memory | mysql | postgres
	SQLitePath  string        `mapstructure:"sqlite_path"`
	MySQLDSN    string        `mapstructure:"mysql_dsn"`
	PostgresDSN string        `mapstructure:"postgres_dsn"`
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLife     time.Duration `mapstructure:"max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	JWTSecret      string         `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration  `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64        `mapstructure:"rate_limit_rps"`
	RateLimitBurst int            `mapstructure:"rate_limit_burst"`
	BcryptCost     int            `mapstructure:"bcrypt_cost"`
	Password       PasswordPolicy `mapstructure:"password"`
}

// PasswordPolicy configures the checks run on new passwords.
type PasswordPolicy struct {
	MinLength     int  `mapstructure:"min_length"`
	RequireLetter bool `mapstructure:"require_letter"`
	RequireDigit  bool `mapstructure:"require_digit"`
	RequireUpper  bool `mapstructure:"require_upper"`
	RequireSymbol bool `mapstructure:"require_symbol"`
	RejectNumeric bool `mapstructure:"reject_numeric"`
	RejectCommon  bool `mapstructure:"reject_common"`
	RejectSimilar bool `mapstructure:"reject_similar"`
}

type GameConfig struct {
	MaxActiveCharacters int           `mapstructure:"max_active_characters"`
	ExpPerLevel         int64         `mapstructure:"exp_per_level"`
	HealthPerLevel      int           `mapstructure:"health_per_level"`
	ManaPerLevel        int           `mapstructure:"mana_per_level"`
	BaseMana            int           `mapstructure:"base_mana"`
	StartingGold        int           `mapstructure:"starting_gold"`
	StartingLocation    string        `mapstructure:"starting_location"`
	LeaderboardSize     int           `mapstructure:"leaderboard_size"`
	LeaderboardMax      int           `mapstructure:"leaderboard_max"`
	LeaderboardRefresh  time.Duration `mapstructure:"leaderboard_refresh"`
}

type AuditConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// DefaultGame returns the stock game rules.
func DefaultGame() GameConfig {
	return GameConfig{
		MaxActiveCharacters: 5,
		ExpPerLevel:         1000,
		HealthPerLevel:      10,
		ManaPerLevel:        5,
		BaseMana:            10,
		StartingGold:        100,
		StartingLocation:    "Shire",
		LeaderboardSize:     20,
		LeaderboardMax:      100,
		LeaderboardRefresh:  5 * time.Minute,
	}
}

// DefaultPasswordPolicy mirrors the stock web framework validators:
// minimum length, not entirely numeric, not common, not close to the
// username or email.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     8,
		RejectNumeric: true,
		RejectCommon:  true,
		RejectSimilar: true,
	}
}

// WithDefaults fills zero fields with the stock values.
func (g GameConfig) WithDefaults() GameConfig {
	d := DefaultGame()
	if g.MaxActiveCharacters <= 0 {
		g.MaxActiveCharacters = d.MaxActiveCharacters
	}
	if g.ExpPerLevel <= 0 {
		g.ExpPerLevel = d.ExpPerLevel
	}
	if g.HealthPerLevel <= 0 {
		g.HealthPerLevel = d.HealthPerLevel
	}
	if g.ManaPerLevel <= 0 {
		g.ManaPerLevel = d.ManaPerLevel
	}
	if g.BaseMana <= 0 {
		g.BaseMana = d.BaseMana
	}
	if g.StartingGold <= 0 {
		g.StartingGold = d.StartingGold
	}
	if g.StartingLocation == "" {
		g.StartingLocation = d.StartingLocation
	}
	if g.LeaderboardSize <= 0 {
		g.LeaderboardSize = d.LeaderboardSize
	}
	if g.LeaderboardMax <= 0 {
		g.LeaderboardMax = d.LeaderboardMax
	}
	if g.LeaderboardRefresh <= 0 {
		g.LeaderboardRefresh = d.LeaderboardRefresh
	}
	return g
}

// Load reads config from the given YAML file path. An empty path skips the
// file and uses defaults plus RPG_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("server.admin_ips", []string{})
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/middleearth.db")
	v.SetDefault("database.mysql_dsn", "")
	v.SetDefault("database.postgres_dsn", "")
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.password.min_length", 8)
	v.SetDefault("security.password.require_letter", false)
	v.SetDefault("security.password.require_digit", false)
	v.SetDefault("security.password.require_upper", false)
	v.SetDefault("security.password.require_symbol", false)
	v.SetDefault("security.password.reject_numeric", true)
	v.SetDefault("security.password.reject_common", true)
	v.SetDefault("security.password.reject_similar", true)
	v.SetDefault("game.max_active_characters", 5)
	v.SetDefault("game.exp_per_level", 1000)
	v.SetDefault("game.health_per_level", 10)
	v.SetDefault("game.mana_per_level", 5)
	v.SetDefault("game.base_mana", 10)
	v.SetDefault("game.starting_gold", 100)
	v.SetDefault("game.starting_location", "Shire")
	v.SetDefault("game.leaderboard_size", 20)
	v.SetDefault("game.leaderboard_max", 100)
	v.SetDefault("game.leaderboard_refresh", "5m")
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.batch_size", 100)
	v.SetDefault("audit.flush_interval", "2s")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
