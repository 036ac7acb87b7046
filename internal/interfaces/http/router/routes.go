package router

import (
	"github.com/gin-gonic/gin"

	"portfolio-chat-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
// debugAuth 为 nil 时不注册调试接口
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	chatHandler *handler.ChatHandler,
	retrievalHandler *handler.RetrievalHandler,
	rateLimit gin.HandlerFunc,
	debugAuth gin.HandlerFunc,
) {
	// 对话
	chat := v1.Group("/chat")
	{
		chat.POST("", rateLimit, chatHandler.Chat)
		chat.GET("", chatHandler.Status)
	}

	// 检索调试
	if debugAuth != nil {
		debug := v1.Group("/debug", debugAuth)
		{
			debug.POST("/retrieval", retrievalHandler.DebugRetrieval)
		}
	}
}
