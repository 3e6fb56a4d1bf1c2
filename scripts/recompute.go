// 手动触发一次所有用户的重算
//
// 服务运行时后台任务会按 engine.recompute_interval_minutes 定期执行同样的重算。
// 此脚本用于首次部署或批量导入历史事件之后立即刷新最近7天的汇总和本周徽章。
// 修改时区时旧的每日汇总已随设置一起删除，更早的日期在下次读取时按新时区重新聚合。
//
// 用法: go run scripts/recompute.go [-config configs]

package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"screen_balance_backend/internal/app"
	"screen_balance_backend/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	job, cleanup, err := app.NewRecomputeJob(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("手动触发重算任务...")
	report, err := job.RunOnce(ctx)
	if err != nil {
		log.Fatalf("重算失败: %v", err)
	}
	log.Printf("完成！用户数 %d，失败 %d", report.Users, report.Failed)
}
