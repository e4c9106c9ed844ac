package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env             string
		Debug           bool
		TestMode        bool
		AppName         string
		Build           string
		SecretKey       string
		RollbarToken    string
		DefaultPassword string // given to accounts created without one
		Server          ServerConfig
		Database        DatabaseConfig
		Bootstrap       BootstrapConfig
	}

	ServerConfig struct {
		Address         string
		DebugAddress    string
		Host            string
		ShutdownTimeout time.Duration
		JWTExpiration   time.Duration
	}

	DatabaseConfig struct {
		Engine     string // postgres | sqlite
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
		Path       string // sqlite only; ":memory:" is allowed
	}

	BootstrapConfig struct {
		AdminUsername string
		AdminPassword string
	}
)

func (dbConf DatabaseConfig) Address() string {
	return net.JoinHostPort(dbConf.Host, dbConf.Port)
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file
// and environment variables prefixed with the environment name (eg. DEV_SECRETKEY).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "MadaMaths")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "m4d4-m@ths$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("defaultPassword", "MadaMaths2026!")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpiration", 24*time.Hour)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "madamaths")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "madamaths")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "madamaths.db")
	v.SetDefault("bootstrap.adminUsername", "admin")
	v.SetDefault("bootstrap.adminPassword", "admin123")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.Getwd(): %v", err)
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	hostname, _ := os.Hostname()
	return &Config{
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		SecretKey:       v.GetString("secretKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		DefaultPassword: v.GetString("defaultPassword"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			Host:            hostname,
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			JWTExpiration:   v.GetDuration("server.jwtExpiration"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
			Path:       v.GetString("database.path"),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: v.GetString("bootstrap.adminUsername"),
			AdminPassword: v.GetString("bootstrap.adminPassword"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: in-memory sqlite, fixed secret.
func NewTestConfig() *Config {
	return &Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "MadaMaths",
		Build:           "test",
		SecretKey:       "secret",
		DefaultPassword: "MadaMaths2026!",
		Server: ServerConfig{
			ShutdownTimeout: time.Second,
			JWTExpiration:   time.Hour,
		},
		Database: DatabaseConfig{
			Engine: "sqlite",
			Path:   ":memory:",
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: "admin",
			AdminPassword: "admin123",
		},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (env=%s, build=%s, db=%s)", c.AppName, c.Env, c.Build, c.Database.Engine)
}
