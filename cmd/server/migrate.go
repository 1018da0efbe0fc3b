package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meliofog/iam-stock/pkg/database"
)

func newMigrateCmd(g *globals) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（--down N 回滚 N 步）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.NewDB(&g.cfg.Database, g.cfg.Log.Level, g.logger)
			if err != nil {
				return fmt.Errorf("数据库连接失败: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}
			defer sqlDB.Close()

			if down > 0 {
				return database.RollbackMigrations(sqlDB, down, g.logger)
			}
			return database.RunMigrations(sqlDB, g.logger)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "回滚的迁移步数")
	return cmd
}
