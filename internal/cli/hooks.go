package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/observability"
)

// logHooks forwards pipeline and cache events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
)

// InstallHooks registers hooks that log every pipeline stage and cache
// event. They only produce output at debug level.
func (c *CLI) InstallHooks() {
	h := logHooks{logger: c.Logger.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnStageStart(_ context.Context, stage, collection string) {
	h.logger.Debug("stage started", "stage", stage, "collection", collection)
}

func (h logHooks) OnStageComplete(_ context.Context, stage, collection string, documents int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage aborted", "stage", stage, "collection", collection, "code", errors.GetCode(err), "duration", d)
		return
	}
	h.logger.Debug("stage completed", "stage", stage, "collection", collection, "documents", documents, "duration", d)
}

func (h logHooks) OnDocumentFailed(_ context.Context, stage, collection, document string, err error) {
	h.logger.Debug("document failed", "stage", stage, "collection", collection, "document", document, "code", errors.GetCode(err))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
