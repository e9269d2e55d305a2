package main

import (
	"context"
	"time"

	"go.uber.org/fx"

	fxzerolog "github.com/efectn/fx-zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/yearn/ySync/internal/application"
	"github.com/yearn/ySync/internal/bootstrap"
	"github.com/yearn/ySync/internal/database"
	"github.com/yearn/ySync/internal/module/scheduler"
	"github.com/yearn/ySync/internal/module/shared"
	syncmodule "github.com/yearn/ySync/internal/module/sync"
	"github.com/yearn/ySync/internal/router"
)

func main() {
	fx.New(
		/* provide patterns */
		// basic
		shared.NewSharedModule,
		scheduler.NewSchedulerModule,
		// application
		fx.Provide(application.NewApplication),
		// database
		fx.Provide(database.NewDatabase),
		// router
		fx.Provide(router.NewRouter),
		/* provide modules */
		syncmodule.NewSyncModule,
		// start aplication
		fx.Invoke(bootstrap.Start),
		// define logger
		fx.WithLogger(fxzerolog.Init()),
		// invoke scheduler tasks once redis and database are connected
		fx.Invoke(func(lc fx.Lifecycle, s *scheduler.Scheduler) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go s.StartRefreshLoop()
					go s.StartProcessSlackNotifications()
					go s.StartProcessDeleteOldData()
					return nil
				},
			})
		}),
	).Run()

	fx.StartTimeout(10 * time.Minute)
}
