package router

import (
	"github.com/yearn/ySync/internal/module/sync"
)

type Router struct {
	SyncRouter *sync.SyncRouter
}

func NewRouter(
	syncRouter *sync.SyncRouter,

) *Router {
	return &Router{
		SyncRouter: syncRouter,
	}
}

// Register routes
func (r *Router) Register() {
	// Register routes of modules
	r.SyncRouter.RegisterSyncRoutes()
}
