package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env     string
	Debug   bool
	AppName string
	Build   string

	Server struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	SchoolAPI struct {
		BaseURL     string
		SendCookies bool
	}

	CORSOrigins  []string
	RollbarToken string
}

// NewConfig loads the configuration from defaults, an optional per-environment
// .env file and environment variables (in increasing order of precedence).
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Secretaria")
	v.SetDefault("build", "dev")
	v.SetDefault("serverHost", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("schoolApiBaseUrl", "https://api-estudo-educacao-1.onrender.com")
	v.SetDefault("schoolApiSendCookies", false)
	v.SetDefault("corsOrigins", []string{"http://localhost:3000"})
	v.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		CORSOrigins:  v.GetStringSlice("corsOrigins"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.SchoolAPI.BaseURL = strings.TrimRight(v.GetString("schoolApiBaseUrl"), "/")
	conf.SchoolAPI.SendCookies = v.GetBool("schoolApiSendCookies")
	return conf
}

func (c *Config) IsTestMode() bool {
	return c.Env == "TEST"
}
