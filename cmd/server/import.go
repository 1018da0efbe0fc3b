package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meliofog/iam-stock/internal/service"
)

func newImportCmd(g *globals) *cobra.Command {
	var recordName string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "从表格导入档案与设备，结果以 JSON 输出",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("打开文件失败: %w", err)
			}
			defer f.Close()

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.svc.Import.Import(cmd.Context(), f, service.ImportOptions{RecordName: recordName})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if result.HasErrors() {
				return fmt.Errorf("%d 行未通过校验", result.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&recordName, "record", "", "表格缺少 Dossier 列时使用的档案名")
	return cmd
}
