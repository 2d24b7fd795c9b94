package main

import (
	"context"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"car-catalog/pkg/common/config"
	"car-catalog/pkg/common/logging"
	"car-catalog/pkg/core/blob"
	carmodel "car-catalog/pkg/core/car/model"
	carimpl "car-catalog/pkg/core/car/repository/dao/impl"
	carservice "car-catalog/pkg/core/car/service"
	"car-catalog/pkg/core/event"
	usermodel "car-catalog/pkg/core/user/model"
	userimpl "car-catalog/pkg/core/user/repository/dao/impl"
	userservice "car-catalog/pkg/core/user/service"
	"car-catalog/pkg/web/handler"
	"car-catalog/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		hlog.Fatalf("failed to initialize database: %v", err)
	}
	if err := usermodel.AutoMigrate(db); err != nil {
		hlog.Fatalf("migrate users: %v", err)
	}
	if err := carmodel.AutoMigrate(db); err != nil {
		hlog.Fatalf("migrate cars: %v", err)
	}

	ctx := context.Background()
	blobs, err := blob.NewStore(ctx, cfg.Blob)
	if err != nil {
		hlog.Fatalf("failed to initialize blob store: %v", err)
	}

	var publisher event.Publisher = event.NopPublisher{}
	if cfg.Events.Enabled {
		publisher = event.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		hlog.Infof("publishing car events to %v topic=%s", cfg.Events.Brokers, cfg.Events.Topic)
	}

	// 注入到服务层
	timeout := cfg.Store.CallTimeout
	svc := router.Services{
		Users: userservice.NewUserService(
			userimpl.NewGormUserRepository(db),
			userservice.WithCallTimeout(timeout),
		),
		Cars: carservice.NewCarService(
			carimpl.NewGormCarRepository(db),
			blobs,
			carservice.WithCallTimeout(timeout),
			carservice.WithPublisher(publisher),
		),
		Uploader: blob.NewUploader(blobs, timeout),
		Probes: []handler.Probe{
			{Name: "database", IsCore: true, Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "blob", IsCore: true, Check: blobs.Ping},
		},
	}

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)

	// 注册路由
	if err := router.RegisterAPIs(h, cfg, svc); err != nil {
		hlog.Fatalf("register routes: %v", err)
	}

	h.OnShutdown = append(h.OnShutdown, func(context.Context) {
		if err := publisher.Close(); err != nil {
			hlog.Warnf("close event publisher: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	// 启动服务
	h.Spin()
}
