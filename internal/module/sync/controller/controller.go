package controller

import (
	"github.com/rs/zerolog"
	"github.com/yearn/ySync/internal/module/sync/service"
)

type Controller struct {
	Sync SyncController
}

func NewController(
	syncService service.SyncService,
	logger zerolog.Logger) *Controller {
	return &Controller{
		Sync: NewSyncController(syncService, logger),
	}
}
