package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/podium/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New()

		Convey("Then sensible defaults are set", func() {
			So(cfg.Addr, ShouldNotBeEmpty)
			So(cfg.PageSize, ShouldEqual, 250)
			So(cfg.RetryCount, ShouldEqual, 4)
			So(cfg.CacheTTL, ShouldEqual, time.Hour)
			So(cfg.RebuildDelay, ShouldEqual, 10*time.Second)
			So(cfg.ProgramCodes, ShouldResemble, []string{"V5RC", "VURC"})
			So(cfg.UpcomingLimit, ShouldEqual, 10)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		for _, key := range []string{"PODIUM_CONFIG", "PODIUM_ADDR", "PODIUM_PAGE_SIZE", "PODIUM_UPSTREAM_TOKEN"} {
			So(os.Unsetenv(key), ShouldBeNil)
		}

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
		})

		Convey("When env vars override defaults", func() {
			t.Setenv("PODIUM_ADDR", ":7000")
			t.Setenv("PODIUM_UPSTREAM_TOKEN", "secret")
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7000")
			So(cfg.UpstreamToken, ShouldEqual, "secret")
			So(cfg.PageSize, ShouldEqual, 250)
		})

		Convey("When a YAML file provides values and env overrides them", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "podium.yaml")
			body := "addr: \":7100\"\npage_size: 50\n"
			So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
			t.Setenv("PODIUM_CONFIG", path)
			t.Setenv("PODIUM_ADDR", ":7200")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7200")
			So(cfg.PageSize, ShouldEqual, 50)
		})

		Convey("When validation fails", func() {
			t.Setenv("PODIUM_PAGE_SIZE", "0")
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the config file is missing", func() {
			t.Setenv("PODIUM_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
