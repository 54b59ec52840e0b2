package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/rbyers87/offduty7/config"
	"github.com/rbyers87/offduty7/internal/handler"
	"github.com/rbyers87/offduty7/internal/middleware"
)

func Setup(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	templateHandler *handler.TemplateHandler,
	fieldHandler *handler.FieldHandler,
	editorHandler *handler.EditorHandler,
	reportHandler *handler.ReportHandler,
	formGenHandler *handler.FormGenHandler,
	storageHandler *handler.StorageHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/login", authHandler.Login)
	}

	// 对象下载：公开地址与签名地址
	st := r.Group("/storage")
	{
		st.GET("/"+cfg.Storage.Bucket+"/:object", storageHandler.ServePublic)
		st.GET("/sign/"+cfg.Storage.Bucket+"/:object", storageHandler.ServeSigned)
	}

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.GET("", profileHandler.List)
			users.POST("", profileHandler.Create)
			users.GET("/:id", profileHandler.Get)
			users.PUT("/:id", profileHandler.Update)
			users.DELETE("/:id", profileHandler.Delete)
		}

		templates := api.Group("/templates")
		{
			templates.POST("", templateHandler.Upload)
			templates.GET("", templateHandler.List)
			templates.GET("/:id", templateHandler.Get)
			templates.DELETE("/:id", templateHandler.Delete)

			templates.GET("/:id/fields", fieldHandler.List)
			templates.PUT("/:id/fields", fieldHandler.Replace)

			// 字段叠加编辑器会话
			editor := templates.Group("/:id/editor")
			{
				editor.POST("/open", editorHandler.Open)
				editor.POST("/reload", editorHandler.Reload)
				editor.POST("/close", editorHandler.Close)
				editor.GET("", editorHandler.State)
				editor.POST("/fields", editorHandler.PlaceField)
				editor.POST("/fields/:fieldId/select", editorHandler.SelectField)
				editor.PUT("/fields/:fieldId/name", editorHandler.RenameField)
				editor.PUT("/fields/:fieldId/kind", editorHandler.RetypeField)
				editor.DELETE("/fields/:fieldId", editorHandler.DeleteField)
				editor.POST("/page", editorHandler.ChangePage)
				editor.POST("/save", editorHandler.Save)
			}
		}

		reports := api.Group("/reports")
		{
			reports.POST("/off-duty", reportHandler.Generate)
		}

		forms := api.Group("/form-generator")
		{
			forms.GET("/questions", formGenHandler.ListQuestions)
			forms.POST("/generate", formGenHandler.Generate)

			// 问题配置仅管理员可改
			admin := forms.Group("/questions", middleware.RequireAdmin())
			{
				admin.POST("", formGenHandler.AddQuestion)
				admin.PUT("/:id", formGenHandler.UpdateQuestion)
				admin.DELETE("/:id", formGenHandler.DeleteQuestion)
			}
		}
	}

	return r
}
