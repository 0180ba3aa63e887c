package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"

	"plancraft/internal/config"
	"plancraft/internal/generator"
	"plancraft/internal/host"
	"plancraft/internal/i18n"
	"plancraft/internal/project"
	"plancraft/internal/provider"
	"plancraft/internal/storage"
	"plancraft/internal/tui"
)

// minTaskRunes 任务描述的最小长度（TrimSpace 后按 rune 计）
// minTaskRunes is the minimum task description length (runes, after trimming)
const minTaskRunes = 10

const recentTaskLimit = 3

func main() {
	var (
		configPath string
		taskFlag   string
		workspace  string
		modelFlag  string
		initCfg    bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	flag.StringVar(&taskFlag, "task", "", "Task description (prompted interactively when omitted)")
	flag.StringVar(&workspace, "cwd", "", "Workspace root override")
	flag.StringVar(&modelFlag, "model", "", "Model override, persisted to the project config")
	flag.BoolVar(&initCfg, "init", false, "Write a project config scaffold (./.plancraft/config.json) and exit")
	flag.Parse()

	if initCfg {
		if err := config.InitProjectConfigScaffold(); err != nil {
			fmt.Fprintf(os.Stderr, "init project config failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("project config written to .plancraft/config.json")
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	i18n.Init(cfg.UI.Locale)

	root, err := resolveWorkspaceRoot(workspace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve workspace failed: %v\n", err)
		os.Exit(1)
	}

	// -model 覆盖运行时配置并写回项目配置，下次启动沿用
	// -model overrides the runtime config and is written back to the project
	// config so later runs keep it
	if m := strings.TrimSpace(modelFlag); m != "" {
		cfg.Provider.Model = m
		if err := config.WriteProviderModel(root, m); err != nil {
			fmt.Fprintf(os.Stderr, "persist model failed: %v\n", err)
		} else {
			fmt.Println(i18n.T("model.switched", m))
		}
	}

	store, err := storage.NewSQLiteStore(filepath.Join(cfg.Storage.BaseDir, "planner.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, i18n.T("error.storage", err))
		os.Exit(1)
	}
	defer store.Close()

	h, err := host.New(cfg.Storage.BaseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init host failed: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	task := strings.TrimSpace(taskFlag)
	if !taskLongEnough(task) {
		if task != "" {
			fmt.Println(i18n.T("prompt.too_short", minTaskRunes))
		}
		task, err = promptTask(store, cfg.Storage.BaseDir)
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintln(os.Stderr, "exit")
				return
			}
			fmt.Fprintf(os.Stderr, "read task failed: %v\n", err)
			os.Exit(1)
		}
	}

	tally := &tui.UsageTally{}
	gen := generator.New(
		provider.NewOpenAI(provider.Config{
			BaseURL:    cfg.Provider.BaseURL,
			APIKey:     cfg.Provider.APIKey,
			Model:      cfg.Provider.Model,
			TimeoutMS:  cfg.Provider.TimeoutMS,
			MaxRetries: cfg.Provider.MaxRetries,
		}),
		generator.Config{
			Temperature:     cfg.Generator.Temperature,
			MaxTokens:       cfg.Generator.MaxTokens,
			StepsMin:        cfg.Generator.StepsMin,
			StepsMax:        cfg.Generator.StepsMax,
			RefineTimeoutMS: cfg.Generator.RefineTimeoutMS,
		},
		func(u generator.Usage) {
			tally.Add(u)
			_ = store.LogUsage(storage.UsageEntry{
				Kind:             u.Kind,
				Model:            u.Model,
				PromptTokens:     u.PromptTokens,
				CompletionTokens: u.CompletionTokens,
				TotalTokens:      u.TotalTokens,
				DurationMS:       u.Duration.Milliseconds(),
			})
		},
	)

	collector := project.NewCollector(root, cfg.Project.ContextTokenLimit, cfg.Project.IncludeFiles, project.NewTokenizerForModel(cfg.Provider.Model))

	if err := tui.Run(tui.Options{
		Config:    cfg,
		Generator: gen,
		Store:     store,
		Host:      h,
		Collector: collector,
		Usage:     tally,
		Task:      task,
		Workspace: root,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "tui failed: %v\n", err)
		os.Exit(1)
	}
}

func resolveWorkspaceRoot(override string) (string, error) {
	root := strings.TrimSpace(override)
	if root == "" {
		return os.Getwd()
	}
	return filepath.Abs(root)
}

func taskLongEnough(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= minTaskRunes
}

// promptTask 打开行编辑器交互式读取任务描述。编辑器在 TUI 接管终端前
// 关闭。
// promptTask reads the task description interactively through the line
// editor. The editor is closed before the TUI takes over the terminal.
func promptTask(store storage.Store, baseDir string) (string, error) {
	input, inputErr := newLineInput(filepath.Join(baseDir, "task.history"))
	if inputErr != nil {
		fmt.Fprintf(os.Stderr, "line editor unavailable, fallback to basic input: %v\n", inputErr)
	}
	defer input.Close()

	recent, _ := store.RecentTasks(recentTaskLimit)
	return readTask(input, recent, os.Stdout)
}

// readTask 循环读取直到任务描述通过长度校验；空行跳过，过短的输入
// 给出提示后重试
// readTask loops until the task description passes the length check; blank
// lines are skipped and too-short input prompts a retry
func readTask(input lineInput, recent []storage.TaskEntry, out io.Writer) (string, error) {
	if len(recent) > 0 {
		fmt.Fprintln(out, i18n.T("prompt.recent"))
		for i, entry := range recent {
			fmt.Fprintf(out, "  %d. %s\n", i+1, entry.Description)
		}
	}
	fmt.Fprintln(out, i18n.T("prompt.task"))

	for {
		line, err := input.ReadLine("task> ")
		if err != nil {
			return "", err
		}
		task := strings.TrimSpace(line)
		if task == "" {
			continue
		}
		if !taskLongEnough(task) {
			fmt.Fprintln(out, i18n.T("prompt.too_short", minTaskRunes))
			continue
		}
		return task, nil
	}
}
