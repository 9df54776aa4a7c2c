// 手动导入测验数据脚本
//
// 从 YAML 文件读取测验与题目并写入数据库，标题已存在的测验会被跳过。
// 创建者为配置中的管理员账号（未配置时为空，任何管理员都可删除）。
//
// 用法: go run scripts/seed_quizzes.go -file configs/quizzes.example.yaml

package main

import (
	"context"
	"flag"
	"log"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/seed"
	"quiz_backend/internal/service"
	"quiz_backend/pkg/database"
	"quiz_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	file := flag.String("file", "configs/quizzes.example.yaml", "测验数据文件")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	doc, err := seed.LoadFile(*file)
	if err != nil {
		log.Fatalf("读取测验数据失败: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)

	creatorID := ""
	if cfg.Admin.Username != "" {
		admin, err := userRepo.FindByLogin(ctx, model.NormalizeIdentity(cfg.Admin.Username), "")
		if err == nil && admin.IsAdmin() {
			creatorID = admin.ID
		}
	}

	importer := seed.NewImporter(
		service.NewQuizService(quizRepo, questionRepo, attemptRepo, nil),
		service.NewQuestionService(quizRepo, questionRepo, nil),
	)

	res, err := importer.Import(ctx, creatorID, doc)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}

	logger.Log.Info("seed finished",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("questions", res.Questions),
	)
}
