package ai

import (
	"fmt"
	"strings"

	"github.com/bilgisen/weeklyissue/internal/models"
)

// PromptTemplates contains the prompt templates for issue generation
var PromptTemplates = struct {
	Combined   string
	PerSection string
	ItemSchema string
}{
	ItemSchema: `{
  "title": "标题",
  "content": "一句话摘要（60字以内）",
  "source": "信息来源机构或媒体",
  "date": "MM.DD",
  "image": "图片URL，没有则为空字符串",
  "url": "原文链接，没有则为 #",
  "fullContent": "详细正文，可使用 <p> 与 <strong> 标签",
  "analysis": "对设计与艺术类学生的简短点评",
  "tags": ["标签1", "标签2"],
  "relevant_majors": ["相关专业"],
  "key_points": ["要点1", "要点2"]
}`,

	Combined: `你是一名服务于设计与艺术留学生的资深编辑。请检索并整理 %s（%s，%s）这一周的真实新闻。

请严格输出 JSON，不要输出任何解释文字。JSON 顶层是一个对象，包含以下 6 个键，每个键对应恰好 %d 条新闻的数组：
%s

每条新闻的结构如下：
%s

要求：
1. 新闻必须真实，优先使用本周发布的信息，并给出可访问的原文链接。
2. 全部使用简体中文，专有名词可保留英文。
3. 不要重复收录同一事件。`,

	PerSection: `你是一名服务于设计与艺术留学生的资深编辑。请检索并整理 %s（%s，%s）这一周「%s / %s」栏目的真实新闻。

请严格输出 JSON 数组，不要输出任何解释文字。数组恰好包含 %d 条新闻，每条结构如下：
%s

要求：
1. 新闻必须真实，优先使用本周发布的信息，并给出可访问的原文链接。
2. 全部使用简体中文，专有名词可保留英文。`,
}

// BuildCombinedPrompt creates one prompt asking for every section at once
func BuildCombinedPrompt(week models.WeekInfo) string {
	var keys strings.Builder
	for _, meta := range models.SectionCatalog {
		keys.WriteString(fmt.Sprintf("- \"%s\": %s（%s）\n", meta.ID, meta.Title, meta.Subtitle))
	}

	return fmt.Sprintf(PromptTemplates.Combined,
		week.Vol, week.Week, week.Range,
		models.ItemsPerSection,
		strings.TrimRight(keys.String(), "\n"),
		PromptTemplates.ItemSchema)
}

// BuildSectionPrompt creates a prompt for a single section
func BuildSectionPrompt(week models.WeekInfo, meta models.SectionMeta) string {
	return fmt.Sprintf(PromptTemplates.PerSection,
		week.Vol, week.Week, week.Range,
		meta.Title, meta.Subtitle,
		models.ItemsPerSection,
		PromptTemplates.ItemSchema)
}
