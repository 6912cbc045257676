package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type (
	ServerConfig struct {
		Addr            string
		Host            string
		DebugHost       string
		AllowedOrigin   string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	SessionConfig struct {
		CookieName string
		Lifetime   time.Duration
		Backend    string // memory | redis
		RedisURL   string
	}

	SeedConfig struct {
		Enabled      bool
		DemoPassword string
	}

	Config struct {
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		AppName                   string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		FrontendBaseURL           string
		SendgridApiKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration
		ContactRecipients         []mail.Address
		Server                    ServerConfig
		Session                   SessionConfig
		Seed                      SeedConfig

		defaultFromEmail mail.Address
	}
)

func (conf *Config) DefaultFromEmail() mail.Address {
	return conf.defaultFromEmail
}

// IsProd reports whether cookies must be sent over HTTPS only.
func (conf *Config) IsProd() bool {
	return conf.Env == "PROD"
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Treasure Home School")
	v.SetDefault("secretKey", "x9#f1-k2$ths!r@m8u)q=e7wz&3bpn^vc0l(s4yd6g+ah5j*t")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "Treasure Home School <noreply@treasurehomeschool.edu.ng>")
	v.SetDefault("contactRecipients", "admin@treasurehomeschool.edu.ng")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeoutDelta", 24*time.Hour)
	v.SetDefault("serverAddr", ":5000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverDebugHost", "localhost:5001")
	v.SetDefault("allowedOrigin", "http://localhost:5173")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("disableReqLogs", false)
	v.SetDefault("sessionCookieName", "ths.sid")
	v.SetDefault("sessionLifetime", 7*24*time.Hour)
	v.SetDefault("sessionBackend", SessionBackendMemory)
	v.SetDefault("redisURL", "redis://localhost:6379/0")
	v.SetDefault("seedDemoData", true)
	v.SetDefault("demoPassword", "Treasure@2024")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("seedDemoData", false)
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
		Env:                       env,
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("appName"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		Server: ServerConfig{
			Addr:            v.GetString("serverAddr"),
			Host:            v.GetString("serverHost"),
			DebugHost:       v.GetString("serverDebugHost"),
			AllowedOrigin:   v.GetString("allowedOrigin"),
			ShutdownTimeout: v.GetDuration("shutdownTimeout"),
			DisableReqLogs:  v.GetBool("disableReqLogs"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("sessionCookieName"),
			Lifetime:   v.GetDuration("sessionLifetime"),
			Backend:    strings.ToLower(v.GetString("sessionBackend")),
			RedisURL:   v.GetString("redisURL"),
		},
		Seed: SeedConfig{
			Enabled:      v.GetBool("seedDemoData"),
			DemoPassword: v.GetString("demoPassword"),
		},
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	conf.defaultFromEmail = *from

	recipients, err := mail.ParseAddressList(v.GetString("contactRecipients"))
	if err != nil {
		log.Fatalf("config.contactRecipients: %v", err)
	}
	for _, r := range recipients {
		conf.ContactRecipients = append(conf.ContactRecipients, *r)
	}
	return conf
}

// NewTestConfig returns a Config with deterministic values, independent of the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		AppName:                   "THS",
		TestMode:                  true,
		SecretKey:                 "test-secret-key",
		FrontendBaseURL:           "http://localhost:5173",
		PasswordResetTimeoutDelta: 24 * time.Hour,
		ContactRecipients:         []mail.Address{{Name: "Office", Address: "office@test.ng"}},
		Server: ServerConfig{
			AllowedOrigin:   "http://localhost:5173",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Session: SessionConfig{
			CookieName: "ths.sid",
			Lifetime:   7 * 24 * time.Hour,
			Backend:    SessionBackendMemory,
		},
		Seed:             SeedConfig{DemoPassword: "Treasure@2024"},
		defaultFromEmail: mail.Address{Name: "THS", Address: "noreply@test.ng"},
	}
}
