package core

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "SCOLARITE"

type Config struct {
	Env          string
	Build        string
	AppName      string
	Debug        bool
	TestMode     bool
	SecretKey    string
	RollbarToken string

	Server struct {
		Host            string
		Port            int
		DebugHost       string
		ShutdownTimeout time.Duration
		SessionMaxAge   time.Duration
		DisableCSRF     bool // forms then only need their own fields; see README
		DisableReqLogs  bool
	}

	Database struct {
		Engine string // sqlite3 | postgres | memory
		Path   string // sqlite3 only; absolute
		DSN    string // postgres only
	}

	// Admin is the identity seeded at bootstrap.
	Admin struct {
		Matricule string
		Name      string
		Password  string
	}
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func newViper() *viper.Viper {
	v := viper.New()

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Scolarité")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debugHost", "")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.sessionMaxAge", 24*time.Hour)
	v.SetDefault("server.disableCSRF", false)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("database.engine", "sqlite3")
	v.SetDefault("database.path", "ecole.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("admin.matricule", "ADM01")
	v.SetDefault("admin.name", "Direction")
	v.SetDefault("admin.password", "admin123")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// hosting platforms hand the port over as a bare PORT
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	return v
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and the environment.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err = os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := newViper()
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("server.host")
	conf.Server.Port = v.GetInt("server.port")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.SessionMaxAge = v.GetDuration("server.sessionMaxAge")
	conf.Server.DisableCSRF = v.GetBool("server.disableCSRF")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")
	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.DSN = v.GetString("database.dsn")
	conf.Admin.Matricule = v.GetString("admin.matricule")
	conf.Admin.Name = v.GetString("admin.name")
	conf.Admin.Password = v.GetString("admin.password")

	dbPath := v.GetString("database.path")
	if dbPath != ":memory:" && !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(wd, dbPath)
	}
	conf.Database.Path = dbPath

	if conf.Server.Port <= 0 {
		return nil, errors.Errorf("invalid server port %d", conf.Server.Port)
	}
	return conf, nil
}
