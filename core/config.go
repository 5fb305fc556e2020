package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type (
	dbConfig struct {
		Engine     string // sqlite | postgres
		Path       string // sqlite file, ":memory:" for tests
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	serverConfig struct {
		Addr               string
		DebugAddr          string // expvar & pprof; empty disables it
		Host               string
		ShutdownTimeout    time.Duration
		CORSAllowOrigins   []string
		JWTExpirationDelta time.Duration
	}

	pdfConfig struct {
		FontPath     string
		BoldFontPath string
		CompanyName  string
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string
		DefaultVATRate   decimal.Decimal

		Database dbConfig
		Server   serverConfig
		PDF      pdfConfig
	}
)

func (c dbConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c dbConfig) IsSQLite() bool {
	return c.Engine == "" || c.Engine == "sqlite"
}

// NewConfig reads the configuration from defaults, the optional config/.env.<env> file and the environment.
// Environment variables are prefixed with the env name: DEV_DATABASE_ENGINE=postgres.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "SignQuick")
	v.SetDefault("secretKey", "n7#q2w-signquick-)z8k$4p0d!m@5y^r&x=e1c")
	v.SetDefault("defaultFromEmail", "SignQuick <noreply@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultVatRate", "0.1")

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.path", "data/signquick.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "signquick")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "signquick")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.debugAddr", ":4001")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.corsAllowOrigins", []string{"*"})
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("pdf.fontPath", "")
	v.SetDefault("pdf.boldFontPath", "")
	v.SetDefault("pdf.companyName", "SignQuick")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	vatRate, err := decimal.NewFromString(v.GetString("defaultVatRate"))
	if err != nil {
		log.Fatalf("config.defaultVatRate: %v", err)
	}

	return &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: *from,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultVATRate:   vatRate,
		Database: dbConfig{
			Engine:     strings.ToLower(v.GetString("database.engine")),
			Path:       v.GetString("database.path"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Server: serverConfig{
			Addr:               v.GetString("server.addr"),
			DebugAddr:          v.GetString("server.debugAddr"),
			Host:               v.GetString("server.host"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			CORSAllowOrigins:   v.GetStringSlice("server.corsAllowOrigins"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		PDF: pdfConfig{
			FontPath:     v.GetString("pdf.fontPath"),
			BoldFontPath: v.GetString("pdf.boldFontPath"),
			CompanyName:  v.GetString("pdf.companyName"),
		},
	}
}
