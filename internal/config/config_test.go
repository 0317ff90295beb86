package config_test

import (
	"runtime"
	"testing"

	"github.com/mvidal/destino/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StorageDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.CatalogSource, convey.ShouldEqual, "local")
			convey.So(cfg.CatalogIDField, convey.ShouldEqual, "Vacante")
			convey.So(cfg.SeasonCacheTTLSeconds, convey.ShouldEqual, 900)
			convey.So(cfg.RateLimitSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.FullBackupCap, convey.ShouldEqual, 40)
			convey.So(cfg.UserBackupCap, convey.ShouldEqual, 50)
			convey.So(cfg.MaxCompetitionDepth, convey.ShouldEqual, 20)
		})
	})
}
