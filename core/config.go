package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config holds all runtime configuration. It is loaded once at startup
	// from defaults, an optional config/.env.<env> file and environment
	// variables prefixed with the uppercased env name.
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string

		SecretKey        string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string
		WorkDir          string

		Server    ServerConfig
		Database  DatabaseConfig
		FileStore FileStoreConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	FileStoreConfig struct {
		Root string // disk backend

		// Aliyun OSS backend
		OSSEndpoint        string
		OSSBucket          string
		OSSAccessKeyID     string
		OSSAccessKeySecret string
	}
)

func (dc DatabaseConfig) Address() string {
	return dc.Host + ":" + dc.Port
}

// FromEmail returns the default sender address.
func (c *Config) FromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// NewConfig loads the application configuration.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Shule")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "q2d$7y#8gmt&0+9#ez)ai^7o3e&8%$j0+p+x&9bh1&1b05=ooq")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":4000")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "shule")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("fileStoreRoot", filepath.Join(os.TempDir(), "shule-uploads"))

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config: %v", err)
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

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		WorkDir:          wd,
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Addr:                      v.GetString("serverAddr"),
			DebugAddr:                 v.GetString("serverDebugAddr"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		FileStore: FileStoreConfig{
			Root:               v.GetString("fileStoreRoot"),
			OSSEndpoint:        v.GetString("ossEndpoint"),
			OSSBucket:          v.GetString("ossBucket"),
			OSSAccessKeyID:     v.GetString("ossAccessKeyId"),
			OSSAccessKeySecret: v.GetString("ossAccessKeySecret"),
		},
	}
	if conf.Env == "PROD" && conf.SecretKey == "" {
		log.Fatal(fmt.Errorf("config: %s_SECRETKEY must be set in PROD", env))
	}
	return conf
}
