package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meliofog/iam-stock/config"
	applogger "github.com/meliofog/iam-stock/pkg/logger"
)

// globals 所有子命令共享的配置与日志
type globals struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func main() {
	g := &globals{}

	root := &cobra.Command{
		Use:               "iam-stock",
		Short:             "维修档案与设备台账服务",
		SilenceUsage:      true,
		PersistentPreRunE: g.init,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")

	root.AddCommand(
		newServeCmd(g),
		newMigrateCmd(g),
		newImportCmd(g),
		newExportCmd(g),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// init 加载 .env → 配置 → 日志
func (g *globals) init(_ *cobra.Command, _ []string) error {
	// .env 不存在时直接使用进程环境变量
	_ = godotenv.Load()

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	g.cfg = cfg
	g.logger = logger
	return nil
}
