package wire

import (
	"BrainScript/internal/api"
	"BrainScript/internal/api/config"
	"BrainScript/internal/api/handler"
	"BrainScript/internal/job"
	"BrainScript/internal/pkg/cron"
	"BrainScript/internal/pkg/es"
	"BrainScript/internal/pkg/kafka"
	"BrainScript/internal/pkg/mongo"
	"BrainScript/internal/repository"
	"BrainScript/internal/service"

	"github.com/gin-gonic/gin"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
	AdminService service.AdminService
}

func BuildApplication(db *gorm.DB, mongoDB *mongoDriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	// repository
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepository(db)
	engagementRepo := repository.NewEngagementRepo(db)
	presenceRepo := repository.NewPresenceRepo(db)
	postMetricRepo := repository.NewPostMetricRepository(db)
	notificationRepo := mongo.NewNotificationRepo(mongoDB)
	searchRepo := es.NewSearchRepo(es.Client)

	// service
	notificationService := service.NewNotificationService(notificationRepo, userRepo, postRepo)
	postService := service.NewPostService(postRepo, userRepo, notificationService)
	engagementService := service.NewEngagementService(engagementRepo, postRepo, userRepo, notificationService)
	rankingService := service.NewRankingService(postRepo, userRepo, cfg.Engagement)
	presenceService := service.NewPresenceService(presenceRepo, postRepo, userRepo, cfg.Engagement)
	userService := service.NewUserService(userRepo, cfg.Auth)
	adminService := service.NewAdminService(userRepo, cfg.Auth)
	searchService := service.NewSearchService(searchRepo)
	postMetricService := service.NewPostMetricService(postMetricRepo, postRepo)

	handlers := &api.HandlersGroup{
		PostHandler:         handler.NewPostHandler(postService, rankingService, engagementService, presenceService),
		EngagementHandler:   handler.NewEngagementHandler(engagementService),
		PresenceHandler:     handler.NewPresenceHandler(presenceService),
		WSHandler:           handler.NewWsHandler(presenceService, postService),
		UserHandler:         handler.NewUserHandler(userService, rankingService),
		AdminHandler:        handler.NewAdminHandler(adminService, rankingService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		SearchHandler:       handler.NewSearchHandler(searchService),
		PostMetricHandler:   handler.NewPostMetricHandler(postMetricService),
		WebhookHandler:      handler.NewWebhookHandler(userService),
	}

	router := api.SetupRouter(handlers)

	// 定时任务
	cronMgr := cron.NewCronManager(
		job.NewTrendingJob(rankingService),
		job.NewPostMetricsJob(postMetricService),
	)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, searchRepo)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
		AdminService: adminService,
	}, nil
}
