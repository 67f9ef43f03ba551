package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged as warnings. It implements all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, rows, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("load done", "source", source, "rows", rows, "skipped", skipped, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnLayoutStart(_ context.Context, records int) {
	h.logger.Debug("layout start", "records", records)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, positions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "err", err)
		return
	}
	h.logger.Debug("layout done", "positions", positions, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnRenderStart(_ context.Context, chart string, formats []string) {
	h.logger.Debug("render start", "chart", chart, "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, chart string, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "chart", chart, "err", err)
		return
	}
	h.logger.Debug("render done", "chart", chart, "formats", formats, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}
