package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type ProviderConfig struct {
	BaseURL    string   `json:"base_url"`
	Model      string   `json:"model"`
	Models     []string `json:"models"`
	APIKey     string   `json:"api_key"`
	TimeoutMS  int      `json:"timeout_ms"`
	MaxRetries int      `json:"max_retries"`
}

type GeneratorConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
	StepsMin        int     `json:"steps_min"`
	StepsMax        int     `json:"steps_max"`
	RefineTimeoutMS int     `json:"refine_timeout_ms"`
}

type ProjectConfig struct {
	ContextTokenLimit int      `json:"context_token_limit"`
	IncludeFiles      []string `json:"include_files"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type UIConfig struct {
	Locale string `json:"locale"`
	Theme  string `json:"theme"`
}

type Config struct {
	Provider  ProviderConfig  `json:"provider"`
	Generator GeneratorConfig `json:"generator"`
	Project   ProjectConfig   `json:"project"`
	Storage   StorageConfig   `json:"storage"`
	UI        UIConfig        `json:"ui"`
}

// fileGeneratorConfig 用指针区分“未设置”与显式零值（如 temperature: 0）
// fileGeneratorConfig uses pointers to tell "unset" from explicit zero
// values (e.g. temperature: 0)
type fileGeneratorConfig struct {
	Temperature     *float64 `json:"temperature"`
	MaxTokens       *int     `json:"max_tokens"`
	StepsMin        *int     `json:"steps_min"`
	StepsMax        *int     `json:"steps_max"`
	RefineTimeoutMS *int     `json:"refine_timeout_ms"`
}

type fileConfig struct {
	Provider  *ProviderConfig      `json:"provider"`
	Generator *fileGeneratorConfig `json:"generator"`
	Project   *ProjectConfig       `json:"project"`
	Storage   *StorageConfig       `json:"storage"`
	UI        *UIConfig            `json:"ui"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL:    "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:      "qwen3-coder-30b-a3b-instruct",
			Models:     []string{"qwen3-coder-30b-a3b-instruct"},
			TimeoutMS:  120000,
			MaxRetries: 3,
		},
		Generator: GeneratorConfig{
			Temperature:     0.7,
			MaxTokens:       2048,
			StepsMin:        8,
			StepsMax:        12,
			RefineTimeoutMS: 60000,
		},
		Project: ProjectConfig{
			ContextTokenLimit: 2000,
		},
		Storage: StorageConfig{
			BaseDir: "~/.plancraft",
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// Load 按 默认值 -> 全局配置 -> 项目配置 -> 环境变量 的顺序装配配置
// Load assembles config in the order defaults -> global file -> project
// file -> environment variables
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("PLANNER_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".plancraft", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"planner.config.json",
		".plancraft/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Generator != nil {
		if fc.Generator.Temperature != nil {
			cfg.Generator.Temperature = *fc.Generator.Temperature
		}
		if fc.Generator.MaxTokens != nil {
			cfg.Generator.MaxTokens = *fc.Generator.MaxTokens
		}
		if fc.Generator.StepsMin != nil {
			cfg.Generator.StepsMin = *fc.Generator.StepsMin
		}
		if fc.Generator.StepsMax != nil {
			cfg.Generator.StepsMax = *fc.Generator.StepsMax
		}
		if fc.Generator.RefineTimeoutMS != nil {
			cfg.Generator.RefineTimeoutMS = *fc.Generator.RefineTimeoutMS
		}
	}
	if fc.Project != nil {
		cfg.Project = mergeProject(cfg.Project, *fc.Project)
	}
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.UI != nil {
		cfg.UI = mergeUI(cfg.UI, *fc.UI)
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if len(override.Models) > 0 {
		base.Models = append([]string(nil), override.Models...)
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxRetries > 0 {
		base.MaxRetries = override.MaxRetries
	}
	return base
}

func mergeProject(base ProjectConfig, override ProjectConfig) ProjectConfig {
	if override.ContextTokenLimit > 0 {
		base.ContextTokenLimit = override.ContextTokenLimit
	}
	if len(override.IncludeFiles) > 0 {
		base.IncludeFiles = append([]string(nil), override.IncludeFiles...)
	}
	return base
}

func mergeStorage(base StorageConfig, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.BaseDir) != "" {
		base.BaseDir = override.BaseDir
	}
	return base
}

func mergeUI(base UIConfig, override UIConfig) UIConfig {
	if strings.TrimSpace(override.Locale) != "" {
		base.Locale = override.Locale
	}
	if strings.TrimSpace(override.Theme) != "" {
		base.Theme = override.Theme
	}
	return base
}

func normalize(cfg *Config) error {
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = Default().Provider.BaseURL
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = Default().Provider.Model
	}
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = Default().Provider.TimeoutMS
	}
	if cfg.Provider.MaxRetries <= 0 {
		cfg.Provider.MaxRetries = Default().Provider.MaxRetries
	}
	cfg.Provider.Models = normalizeModelList(cfg.Provider.Models)
	if len(cfg.Provider.Models) == 0 {
		cfg.Provider.Models = append(cfg.Provider.Models, cfg.Provider.Model)
	}
	if !containsString(cfg.Provider.Models, cfg.Provider.Model) {
		cfg.Provider.Models = append([]string{cfg.Provider.Model}, cfg.Provider.Models...)
		cfg.Provider.Models = normalizeModelList(cfg.Provider.Models)
	}

	if cfg.Generator.Temperature < 0 || cfg.Generator.Temperature > 2 {
		cfg.Generator.Temperature = Default().Generator.Temperature
	}
	if cfg.Generator.MaxTokens <= 0 {
		cfg.Generator.MaxTokens = Default().Generator.MaxTokens
	}
	if cfg.Generator.StepsMin <= 0 {
		cfg.Generator.StepsMin = Default().Generator.StepsMin
	}
	if cfg.Generator.StepsMax < cfg.Generator.StepsMin {
		cfg.Generator.StepsMax = cfg.Generator.StepsMin + 4
	}
	if cfg.Generator.RefineTimeoutMS <= 0 {
		cfg.Generator.RefineTimeoutMS = Default().Generator.RefineTimeoutMS
	}

	if cfg.Project.ContextTokenLimit <= 0 {
		cfg.Project.ContextTokenLimit = Default().Project.ContextTokenLimit
	}
	cfg.Project.IncludeFiles = normalizeStringList(cfg.Project.IncludeFiles)

	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if storageDir == "" {
		storageDir, err = expandPath(Default().Storage.BaseDir)
		if err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = storageDir

	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	switch strings.ToLower(strings.TrimSpace(cfg.UI.Theme)) {
	case "dark", "light":
		cfg.UI.Theme = strings.ToLower(strings.TrimSpace(cfg.UI.Theme))
	default:
		cfg.UI.Theme = "dark"
	}

	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("PLANNER_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	} else if v := strings.TrimSpace(os.Getenv("DASHSCOPE_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	} else if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_STORAGE_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_CONTEXT_TOKEN_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid PLANNER_CONTEXT_TOKEN_LIMIT: %q", v)
		}
		cfg.Project.ContextTokenLimit = n
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_LANG")); v != "" {
		cfg.UI.Locale = v
	}

	return cfg, normalize(&cfg)
}

func normalizeStringList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, s := range items {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func normalizeModelList(models []string) []string {
	out := make([]string, 0, len(models))
	seen := map[string]struct{}{}
	for _, m := range models {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func containsString(items []string, needle string) bool {
	for _, item := range items {
		if item == needle {
			return true
		}
	}
	return false
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
