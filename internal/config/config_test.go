package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	isolate(t)

	home, _ := os.UserHomeDir()
	globalDir := filepath.Join(home, ".plancraft")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "provider": {"model": "global-model"},
  "generator": {"steps_min": 5}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  "provider": {"model": "project-model"},
  "generator": {"temperature": 0}
}`
	if err := os.WriteFile("planner.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "project-model" {
		t.Fatalf("model=%q", cfg.Provider.Model)
	}
	if cfg.Generator.StepsMin != 5 {
		t.Fatalf("steps_min=%d, want 5 from global", cfg.Generator.StepsMin)
	}
	// 显式 0 通过指针覆盖生效，normalize 不得回填默认值
	// an explicit 0 lands through the pointer overlay; normalize must not
	// backfill the default
	if cfg.Generator.Temperature != 0 {
		t.Fatalf("temperature=%v, want explicit 0", cfg.Generator.Temperature)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("PLANNER_MODEL", "env-model")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "env-model" {
		t.Fatalf("model=%q", cfg.Provider.Model)
	}
}

func TestEnvAPIKeyFallbackOrder(t *testing.T) {
	isolate(t)
	t.Setenv("PLANNER_API_KEY", "")
	t.Setenv("DASHSCOPE_API_KEY", "dash-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.APIKey != "dash-key" {
		t.Fatalf("api key=%q, want dashscope before openai", cfg.Provider.APIKey)
	}
}

func TestProviderModelsNormalization(t *testing.T) {
	isolate(t)

	projectCfg := `{
  "provider": {
    "model": "m2",
    "models": ["m1", "m2", "m1", "  ", "m3"]
  }
}`
	if err := os.WriteFile("planner.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Provider.Models) != 3 {
		t.Fatalf("unexpected models: %#v", cfg.Provider.Models)
	}
	if cfg.Provider.Models[0] != "m1" || cfg.Provider.Models[1] != "m2" || cfg.Provider.Models[2] != "m3" {
		t.Fatalf("unexpected models order: %#v", cfg.Provider.Models)
	}
}

func TestGeneratorBoundsNormalization(t *testing.T) {
	isolate(t)

	projectCfg := `{
  "generator": {"steps_min": 6, "steps_max": 3, "refine_timeout_ms": -1}
}`
	if err := os.WriteFile("planner.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator.StepsMin != 6 {
		t.Fatalf("steps_min=%d", cfg.Generator.StepsMin)
	}
	if cfg.Generator.StepsMax != 10 {
		t.Fatalf("steps_max=%d, want min+4", cfg.Generator.StepsMax)
	}
	if cfg.Generator.RefineTimeoutMS != 60000 {
		t.Fatalf("refine_timeout_ms=%d, want default", cfg.Generator.RefineTimeoutMS)
	}
}

func TestDefaultsWhenNoFiles(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator.StepsMin != 8 || cfg.Generator.StepsMax != 12 {
		t.Fatalf("step bounds=%d..%d", cfg.Generator.StepsMin, cfg.Generator.StepsMax)
	}
	if cfg.UI.Theme != "dark" {
		t.Fatalf("theme=%q", cfg.UI.Theme)
	}
	if !filepath.IsAbs(cfg.Storage.BaseDir) {
		t.Fatalf("storage dir not absolute: %q", cfg.Storage.BaseDir)
	}
}

func TestThemeNormalization(t *testing.T) {
	isolate(t)

	projectCfg := `{"ui": {"theme": "NEON"}}`
	if err := os.WriteFile("planner.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "dark" {
		t.Fatalf("theme=%q, want fallback dark", cfg.UI.Theme)
	}
}

func TestInitProjectConfigScaffold(t *testing.T) {
	isolate(t)

	if err := InitProjectConfigScaffold(); err != nil {
		t.Fatalf("InitProjectConfigScaffold: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(".plancraft", "config.json"))
	if err != nil {
		t.Fatalf("read scaffold: %v", err)
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatal(err)
	}
	if _, ok := root["provider"]; !ok {
		t.Fatal("provider section missing")
	}

	// 已存在的配置不被覆盖 / an existing config is never overwritten
	seed := `{"provider": {"model": "keep-me"}}`
	if err := os.WriteFile(filepath.Join(".plancraft", "config.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitProjectConfigScaffold(); err != nil {
		t.Fatalf("second scaffold: %v", err)
	}
	data, err = os.ReadFile(filepath.Join(".plancraft", "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != seed {
		t.Fatalf("existing config overwritten: %s", data)
	}
}

func TestWriteProviderModel(t *testing.T) {
	dir := t.TempDir()

	seed := `{"provider": {"base_url": "https://example.test/v1"}, "ui": {"locale": "en"}}`
	if err := os.MkdirAll(filepath.Join(dir, ".plancraft"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ".plancraft", "config.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteProviderModel(dir, "qwen-max"); err != nil {
		t.Fatalf("WriteProviderModel: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatal(err)
	}
	provider := root["provider"].(map[string]any)
	if provider["model"] != "qwen-max" {
		t.Fatalf("model=%v", provider["model"])
	}
	// 其它键必须保留 / other keys must survive
	if provider["base_url"] != "https://example.test/v1" {
		t.Fatalf("base_url lost: %v", provider["base_url"])
	}
	if _, ok := root["ui"]; !ok {
		t.Fatal("ui section lost")
	}
}

func TestWriteProviderModel_ToleratesComments(t *testing.T) {
	dir := t.TempDir()

	seed := "{\n  // pinned for offline runs\n  \"provider\": {\"base_url\": \"https://example.test/v1\"}\n}"
	if err := os.MkdirAll(filepath.Join(dir, ".plancraft"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ".plancraft", "config.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteProviderModel(dir, "qwen-plus"); err != nil {
		t.Fatalf("WriteProviderModel: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatal(err)
	}
	provider := root["provider"].(map[string]any)
	if provider["model"] != "qwen-plus" {
		t.Fatalf("model=%v", provider["model"])
	}
	if provider["base_url"] != "https://example.test/v1" {
		t.Fatalf("base_url lost behind the comment: %v", provider["base_url"])
	}
}
