package main

import (
	"context"
	"flag"
	"log"
	"os"

	"k8s.io/klog/v2"

	"github.com/rbyers87/offduty7/config"
	"github.com/rbyers87/offduty7/internal/handler"
	"github.com/rbyers87/offduty7/internal/pkg/database"
	"github.com/rbyers87/offduty7/internal/pkg/storage"
	"github.com/rbyers87/offduty7/internal/repository"
	"github.com/rbyers87/offduty7/internal/router"
	"github.com/rbyers87/offduty7/internal/service"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Storage.Dir, 0755); err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化对象存储
	store, err := storage.NewStore(cfg.Storage.Dir, cfg.Storage.Bucket, cfg.Storage.BaseURL, cfg.Storage.URLSecret, cfg.Storage.SignedExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// 初始化 Repository
	profileRepo := repository.NewProfileRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	fieldRepo := repository.NewFieldRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(profileRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	profileService := service.NewProfileService(profileRepo)
	templateService := service.NewTemplateService(templateRepo, fieldRepo, store, cfg.Storage.MaxUploadSize)
	fieldService := service.NewFieldService(templateRepo, fieldRepo)
	editorService := service.NewEditorService(fieldService, templateRepo)
	reportService := service.NewReportService(templateService, cfg.Report.FillablePDF)
	formGenService := service.NewFormGenService(questionRepo, templateService)

	// 预置表单生成器默认问题
	if err := formGenService.EnsureDefaults(context.Background()); err != nil {
		klog.V(6).Infof("预置默认问题失败: %v", err)
	}

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService, authService)
	templateHandler := handler.NewTemplateHandler(templateService)
	fieldHandler := handler.NewFieldHandler(fieldService)
	editorHandler := handler.NewEditorHandler(editorService)
	reportHandler := handler.NewReportHandler(reportService)
	formGenHandler := handler.NewFormGenHandler(formGenService)
	storageHandler := handler.NewStorageHandler(store)

	// 设置路由
	r := router.Setup(cfg, authHandler, profileHandler, templateHandler, fieldHandler, editorHandler, reportHandler, formGenHandler, storageHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
