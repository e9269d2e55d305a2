package controller

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/yearn/ySync/internal/module/sync/service"
)

type SyncController interface {
	GetSnapshot(ctx *fasthttp.RequestCtx)
	GetVaults(ctx *fasthttp.RequestCtx)
	GetTokens(ctx *fasthttp.RequestCtx)
	GetProtocols(ctx *fasthttp.RequestCtx)
	GetStrategies(ctx *fasthttp.RequestCtx)
	GetPartners(ctx *fasthttp.RequestCtx)
	TriggerRefresh(ctx *fasthttp.RequestCtx)
	MarkIcon(ctx *fasthttp.RequestCtx)
	MarkTokenIcon(ctx *fasthttp.RequestCtx)
	CheckHealthz(ctx *fasthttp.RequestCtx)
}

type syncController struct {
	syncService service.SyncService
	logger      zerolog.Logger
}

func NewSyncController(syncService service.SyncService, logger zerolog.Logger) SyncController {
	return &syncController{
		syncService: syncService,
		logger:      logger,
	}
}

func (c *syncController) respond(ctx *fasthttp.RequestCtx, code int, data interface{}, message string) {
	response := map[string]interface{}{
		"code":    code,
		"data":    data,
		"message": message,
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		ctx.Error("Failed to serialize response ", fasthttp.StatusInternalServerError)
		return
	}

	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetBody(responseBody)
	ctx.Response.SetStatusCode(fasthttp.StatusOK)
}

func (c *syncController) chainID(ctx *fasthttp.RequestCtx) (int, bool) {
	raw, _ := ctx.UserValue("chainId").(string)
	chainID, err := strconv.Atoi(raw)
	if err != nil {
		c.respond(ctx, 400, nil, "Invalid chain id")
		return 0, false
	}
	return chainID, true
}

func (c *syncController) snapshot(ctx *fasthttp.RequestCtx) (*service.Snapshot, uint64, bool) {
	chainID, ok := c.chainID(ctx)
	if !ok {
		return nil, 0, false
	}
	snapshot, revision, ok := c.syncService.Store().Snapshot(chainID)
	if !ok {
		c.respond(ctx, 404, nil, "No snapshot for chain yet")
		return nil, 0, false
	}
	return snapshot, revision, true
}

func (c *syncController) GetSnapshot(ctx *fasthttp.RequestCtx) {
	snapshot, revision, ok := c.snapshot(ctx)
	if !ok {
		return
	}
	data := map[string]interface{}{
		"chainId":    snapshot.ChainID,
		"revision":   revision,
		"updatedAt":  snapshot.UpdatedAt,
		"lastError":  c.syncService.Store().LastError(snapshot.ChainID),
		"vaults":     snapshot.Vaults,
		"tokens":     snapshot.Tokens,
		"protocols":  snapshot.Protocols,
		"strategies": snapshot.Strategies,
		"partners":   snapshot.Partners,
	}
	latest, lastSuccess := c.syncService.LastRuns(snapshot.ChainID)
	if latest != nil {
		data["lastRun"] = map[string]interface{}{
			"at":      latest.CreatedAt,
			"success": latest.Success,
			"error":   latest.Error,
		}
	}
	if lastSuccess != nil {
		data["lastSuccessAt"] = lastSuccess.CreatedAt
		data["lastSuccessRevision"] = lastSuccess.Revision
	}
	c.respond(ctx, 200, data, "Snapshot retrieved successfully")
}

func (c *syncController) GetVaults(ctx *fasthttp.RequestCtx) {
	snapshot, _, ok := c.snapshot(ctx)
	if !ok {
		return
	}
	c.respond(ctx, 200, snapshot.Vaults, "Vaults retrieved successfully")
}

func (c *syncController) GetTokens(ctx *fasthttp.RequestCtx) {
	snapshot, _, ok := c.snapshot(ctx)
	if !ok {
		return
	}
	c.respond(ctx, 200, snapshot.Tokens, "Tokens retrieved successfully")
}

func (c *syncController) GetProtocols(ctx *fasthttp.RequestCtx) {
	snapshot, _, ok := c.snapshot(ctx)
	if !ok {
		return
	}
	c.respond(ctx, 200, snapshot.Protocols, "Protocols retrieved successfully")
}

func (c *syncController) GetStrategies(ctx *fasthttp.RequestCtx) {
	snapshot, _, ok := c.snapshot(ctx)
	if !ok {
		return
	}
	c.respond(ctx, 200, snapshot.Strategies, "Strategies retrieved successfully")
}

func (c *syncController) GetPartners(ctx *fasthttp.RequestCtx) {
	snapshot, _, ok := c.snapshot(ctx)
	if !ok {
		return
	}
	c.respond(ctx, 200, snapshot.Partners, "Partners retrieved successfully")
}

// TriggerRefresh kicks off a forced refresh in the background; the caller
// polls the snapshot revision to see it land.
func (c *syncController) TriggerRefresh(ctx *fasthttp.RequestCtx) {
	chainID, ok := c.chainID(ctx)
	if !ok {
		return
	}

	go func() {
		if err := c.syncService.ForceRefresh(context.Background(), chainID); err != nil {
			c.logger.Error().Err(err).Msgf("Manual refresh failed for chain %d", chainID)
		}
	}()

	c.respond(ctx, 202, nil, "Refresh started")
}

func (c *syncController) MarkIcon(ctx *fasthttp.RequestCtx) {
	chainID, ok := c.chainID(ctx)
	if !ok {
		return
	}

	var requestData struct {
		Address string `json:"address"`
		Valid   bool   `json:"valid"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &requestData); err != nil {
		c.respond(ctx, 400, nil, "Failed to parse request body")
		return
	}
	address, err := service.NormalizeAddress(requestData.Address)
	if err != nil {
		c.respond(ctx, 400, nil, "Invalid address")
		return
	}

	if !c.syncService.Store().MarkIconInvalid(chainID, address, requestData.Valid) {
		c.respond(ctx, 404, nil, "Vault not found")
		return
	}

	c.respond(ctx, 200, nil, "Icon flag updated successfully")
}

func (c *syncController) MarkTokenIcon(ctx *fasthttp.RequestCtx) {
	chainID, ok := c.chainID(ctx)
	if !ok {
		return
	}

	var requestData struct {
		Address     string `json:"address"`
		Valid       bool   `json:"valid"`
		IsPureToken bool   `json:"isPureToken"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &requestData); err != nil {
		c.respond(ctx, 400, nil, "Failed to parse request body")
		return
	}
	address, err := service.NormalizeAddress(requestData.Address)
	if err != nil {
		c.respond(ctx, 400, nil, "Invalid address")
		return
	}

	if !c.syncService.Store().MarkTokenIconInvalid(chainID, address, requestData.Valid, requestData.IsPureToken) {
		c.respond(ctx, 404, nil, "Record not found")
		return
	}

	c.respond(ctx, 200, nil, "Token icon flag updated successfully")
}

func (c *syncController) CheckHealthz(ctx *fasthttp.RequestCtx) {
	c.respond(ctx, 0, nil, "Successfully checked service status")
}
