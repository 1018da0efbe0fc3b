package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Export.ColumnWidth != 20 {
		t.Errorf("期望默认列宽 20，实际=%v", cfg.Export.ColumnWidth)
	}
	if cfg.Import.LockTTL.Minutes() != 2 {
		t.Errorf("期望导入锁 TTL 2m，实际=%v", cfg.Import.LockTTL)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis 默认应关闭")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("IAM_SERVER_PORT", "9090")
	t.Setenv("IAM_EXPORT_SHEET_NAME", "Equipment")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口 9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Export.SheetName != "Equipment" {
		t.Errorf("期望 SheetName=Equipment，实际=%s", cfg.Export.SheetName)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080, MaxUploadMB: 10},
			Export: ExportConfig{SheetName: "Sheet1", ColumnWidth: 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"端口为 0", func(c *Config) { c.Server.Port = 0 }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"上传上限为 0", func(c *Config) { c.Server.MaxUploadMB = 0 }, true},
		{"列宽为负", func(c *Config) { c.Export.ColumnWidth = -1 }, true},
		{"空 Sheet 名", func(c *Config) { c.Export.SheetName = "  " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
