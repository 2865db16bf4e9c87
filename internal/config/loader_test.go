package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/readiness/internal/adapters/repository"
	"github.com/okian/readiness/internal/config"
	"github.com/okian/readiness/internal/domain/catalog"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, repository.DriverMemory)
				convey.So(cfg.StoreTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.AuthMode, convey.ShouldEqual, "accounts")
				convey.So(cfg.OwnerColumn(), convey.ShouldEqual, repository.OwnerUserID)

				cat, err := cfg.Catalog()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cat.Len(), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("READINESS_ADDR", ":8080")
			_ = os.Setenv("READINESS_STORE_DRIVER", "sqlite")
			_ = os.Setenv("READINESS_STORE_DSN", "/tmp/history.db")
			_ = os.Setenv("READINESS_STORE_TIMEOUT_MS", "250")
			_ = os.Setenv("READINESS_OWNER_MODE", "company")
			_ = os.Setenv("READINESS_AUTH_MODE", "shared_secret")
			_ = os.Setenv("READINESS_SHARED_SECRETS", "acme:s1, globex:s2,broken")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.StoreDSN, convey.ShouldEqual, "/tmp/history.db")
				convey.So(cfg.StoreTimeout().Milliseconds(), convey.ShouldEqual, 250)
				convey.So(cfg.OwnerColumn(), convey.ShouldEqual, repository.OwnerCompanyID)
				convey.So(cfg.SharedSecrets, convey.ShouldResemble, map[string]string{"acme": "s1", "globex": "s2"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
log_format: json
store_driver: none
dedupe_size: 10
dimensions:
  - name: Ops
    questions: ["Do you have runbooks?", "Is on-call staffed?"]
  - name: People
    questions: ["Are roles clear?"]
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("READINESS_CONFIG", tmpFile)
			_ = os.Setenv("READINESS_DEDUPE_SIZE", "20")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, repository.DriverNone)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 20)

				cat, err := cfg.Catalog()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cat.Names(), convey.ShouldResemble, []string{"Ops", "People"})
			})
		})

		convey.Convey("When loading a dotenv file", func() {
			envFile := filepath.Join(t.TempDir(), ".env")
			convey.So(os.WriteFile(envFile, []byte("READINESS_ADDR=:7070\nREADINESS_LOG_LEVEL=debug\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("READINESS_ENV_FILE", envFile)
			_ = os.Setenv("READINESS_LOG_LEVEL", "warn")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When a shared secret is left blank in env", func() {
			_ = os.Setenv("READINESS_AUTH_MODE", "shared_secret")
			_ = os.Setenv("READINESS_SHARED_SECRETS", "acme:,globex:s2")

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails instead of opening the owner key", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(t, "addr: [unterminated")
			_ = os.Setenv("READINESS_CONFIG", tmpFile)

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("READINESS_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		convey.So(config.New().Validate(), convey.ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero timeout", func(c *config.Config) { c.StoreTimeoutMS = 0 }},
			{"unknown driver", func(c *config.Config) { c.StoreDriver = "mongo" }},
			{"sqlite without dsn", func(c *config.Config) { c.StoreDriver = repository.DriverSQLite }},
			{"unknown owner mode", func(c *config.Config) { c.OwnerMode = "team" }},
			{"unknown auth mode", func(c *config.Config) { c.AuthMode = "ldap" }},
			{"secrets missing", func(c *config.Config) { c.AuthMode = "shared_secret" }},
			{"blank shared secret", func(c *config.Config) {
				c.AuthMode = "shared_secret"
				c.SharedSecrets = map[string]string{"acme": "", "globex": "s2"}
			}},
			{"blank owner key", func(c *config.Config) {
				c.AuthMode = "shared_secret"
				c.SharedSecrets = map[string]string{" ": "s1"}
			}},
			{"zero idle", func(c *config.Config) { c.SessionIdleMinutes = 0 }},
			{"negative dedupe", func(c *config.Config) { c.DedupeSize = -1 }},
			{"dimension without questions", func(c *config.Config) {
				c.Dimensions = []catalog.Dimension{{Name: "Ops"}}
			}},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				c := config.New()
				tc.mutate(c)
				convey.So(errors.Is(c.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"READINESS_CONFIG",
		"READINESS_ENV_FILE",
		"READINESS_ADDR",
		"READINESS_LOG_LEVEL",
		"READINESS_STORE_DRIVER",
		"READINESS_STORE_DSN",
		"READINESS_STORE_TIMEOUT_MS",
		"READINESS_OWNER_MODE",
		"READINESS_AUTH_MODE",
		"READINESS_SHARED_SECRETS",
		"READINESS_DEDUPE_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "readiness-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}
