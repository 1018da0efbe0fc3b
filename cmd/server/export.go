package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCmd(g *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <record-id>",
		Short: "导出档案设备清单为 xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.close()

			buf, filename, err := a.svc.Export.ExportRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入文件失败: %w", err)
			}

			g.logger.Info("导出完成", zap.String("record_id", args[0]), zap.String("file", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件路径（默认 <档案名>_data.xlsx）")
	return cmd
}
