package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 步骤状态
	"status.pending":  "待定",
	"status.accepted": "已接受",
	"status.rejected": "已拒绝",
	"status.edited":   "已修改",
	"status.refining": "重新生成中",

	// 计划卡片
	"card.step":       "步骤 %d",
	"card.refine_err": "无法生成替代方案：%s",
	"card.empty":      "没有剩余步骤，按 o 新增一个。",

	// 侧边栏
	"sidebar.task":     "任务",
	"sidebar.progress": "进度",
	"sidebar.steps":    "步骤",
	"sidebar.model":    "模型",
	"sidebar.usage":    "Token",
	"sidebar.session":  "本次会话 +%d",
	"sidebar.export":   "最近导出",

	// 状态栏
	"statusbar.ready":         "就绪",
	"statusbar.refining":      "正在重新生成步骤 %d...",
	"statusbar.saved":         "计划已导出到 %s",
	"statusbar.save_failed":   "导出失败：%s",
	"statusbar.clipboard_ok":  "步骤已复制到剪贴板",
	"statusbar.clipboard_err": "剪贴板写入失败：%s",
	"statusbar.deleted":       "步骤已删除",
	"statusbar.reordered":     "步骤已移动",

	// 生成阶段
	"gen.collecting": "正在收集项目上下文...",
	"gen.generating": "正在使用 %s 生成计划...",
	"gen.failed":     "计划生成失败：%s",
	"gen.empty":      "模型没有返回可用步骤，请尝试换一种描述。",
	"gen.done":       "计划已就绪：共 %d 步",

	// 编辑 / 插入模式
	"edit.title":  "编辑步骤 %d",
	"edit.hint":   "ctrl+s 保存 · esc 取消",
	"add.title":   "在步骤 %d 之后新增",
	"add.title_0": "在顶部新增步骤",
	"move.hint":   "↑/↓ 移动 · enter 放下 · esc 取消",

	// 快捷键
	"keys.accept":        "接受",
	"keys.reject":        "拒绝并重新生成",
	"keys.edit":          "编辑",
	"keys.add":           "插入",
	"keys.delete":        "删除",
	"keys.move":          "移动",
	"keys.save":          "导出",
	"keys.clipboard":     "复制步骤",
	"keys.clipboard_all": "复制整份文档",
	"keys.help":          "帮助",
	"keys.quit":          "退出",

	// 帮助浮层
	"help.title": "计划编辑快捷键",

	// 任务输入
	"prompt.task":      "请描述要规划的任务",
	"prompt.too_short": "任务描述至少需要 %d 个字符",
	"prompt.recent":    "最近的任务：",

	// 导出文档
	"export.title":    "实施计划",
	"export.task":     "任务",
	"export.progress": "%d / %d 步已接受（%d%%）",

	// 错误
	"error.provider": "模型服务错误：%s",
	"error.storage":  "存储错误：%s",

	// 模型
	"model.switched": "模型已切换为：%s",
}
