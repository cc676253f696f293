package router

import (
	"context"
	"errors"
	"strconv"

	"resume-ranker/internal/api/handler"
	"resume-ranker/internal/config"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/processor"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, candidateHandler *handler.CandidateHandler) {
	api := h.Group("/api/v1")

	// 配置了API Key时启用keyauth
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	// 单份简历上传评分
	api.POST("/candidates/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		jobDescription := ctx.PostForm("job_description")

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := candidateHandler.HandleUpload(c, file, fileHeader.Size, fileHeader.Filename, jobDescription)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 文件夹批量导入
	api.POST("/candidates/folder", func(c context.Context, ctx *app.RequestContext) {
		folderPath := ctx.PostForm("folder_path")
		jobDescription := ctx.PostForm("job_description")

		resp, err := candidateHandler.HandleFolder(c, folderPath, jobDescription)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 按分数降序的候选人列表
	api.GET("/candidates", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, candidateHandler.HandleList())
	})

	// 候选人详情
	api.GET("/candidates/:id", func(c context.Context, ctx *app.RequestContext) {
		id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "无效的候选人ID"})
			return
		}

		resp, err := candidateHandler.HandleDetail(id)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// writeError 按错误分类映射状态码
// 校验类错误返回具体信息；内部错误只返回笼统提示，不泄漏细节
func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, processor.ErrValidation):
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
	case errors.Is(err, processor.ErrResourceLimit):
		ctx.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": err.Error()})
	case errors.Is(err, processor.ErrNotFound):
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "候选人不存在"})
	default:
		logger.Error().Err(err).Msg("请求处理失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "处理请求时发生错误"})
	}
}
