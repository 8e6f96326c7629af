package sidebar

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/service/assets"
	"github.com/chemassist/assistant/backend/pkg/utils"
)

// Handler 侧边栏与静态资源的HTTP处理器
type Handler struct {
	resolver *assets.Resolver
	logger   *zap.Logger
}

// New 创建侧边栏处理器
func New(resolver *assets.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logging.OrNop(logger),
	}
}

// RegisterRoutes 注册侧边栏相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sidebar", h.handleSidebar)
	r.Get("/assets/{name}", h.handleAsset)
}

// handleSidebar 返回侧边栏内容，缺失的资源只体现在 errors 字段中
func (h *Handler) handleSidebar(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.resolver.Sidebar())
}

// handleAsset 返回单个资源文件，简历以附件形式下载
func (h *Handler) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	asset, f, err := h.resolver.Open(name)
	if err != nil {
		if errors.Is(err, assets.ErrUnknownAsset) || errors.Is(err, assets.ErrAssetMissing) {
			h.logger.Debug("asset not served", zap.String("asset", name), zap.Error(err))
			utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("%s not found", name))
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to open asset")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read asset")
		return
	}

	w.Header().Set("Content-Type", asset.ContentType)
	if asset.DownloadAs != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.DownloadAs))
	}
	http.ServeContent(w, r, asset.Name, info.ModTime(), f)
}
