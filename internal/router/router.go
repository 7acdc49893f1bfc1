package router

import (
	"html/template"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sadhanacard/internal/db"
	"github.com/sadhanacard/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret, templateGlob, siteBaseURL string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("sadhana_session", store))

	// 加载模板并添加自定义函数；测试场景下模板可能不存在
	r.SetFuncMap(template.FuncMap{
		"eq": func(a, b interface{}) bool {
			return a == b
		},
	})
	if pages, _ := filepath.Glob(templateGlob); len(pages) > 0 {
		r.LoadHTMLGlob(templateGlob)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := handler.NewAPI(db.DB, siteBaseURL)

	// 公开的分享页
	r.GET("/s/:token", api.ShowShareSnapshot)

	// 后台路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", handler.ShowLoginPage)
		admin.POST("/login", handler.Login)
		admin.GET("/logout", handler.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/card", api.ShowCard)

			// API路由
			authAPI := auth.Group("/api")
			{
				authAPI.GET("/records/:date", api.GetRecord)
				authAPI.PUT("/records/:date", api.ReplaceRecord)
				authAPI.PATCH("/records/:date", api.PatchRecord)
				authAPI.POST("/records/:date/save", api.SaveRecordNow)
				authAPI.GET("/records/:date/status", api.GetRecordStatus)
				authAPI.GET("/records/:date/report", api.GetRecordReport)
				authAPI.POST("/records/:date/share", api.CreateShareSnapshot)
				authAPI.GET("/records/:date/notes/preview", api.PreviewNotes)
			}
		}
	}

	return r
}
