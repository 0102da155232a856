package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// BuildMarkdown は物語、クイズ、要約を読みやすい Markdown にまとめます。
// quiz と summary は nil なら省略するのだ。
func BuildMarkdown(story *domain.Story, quiz *domain.Quiz, summary *domain.Summary) string {
	var sb strings.Builder
	if story == nil {
		return ""
	}

	// 1. タイトルと導入
	sb.WriteString(fmt.Sprintf("# %s\n\n", story.Plot.Title))
	if story.GeneratedImages != nil && story.GeneratedImages.Cover != "" {
		sb.WriteString(fmt.Sprintf("![cover](%s)\n\n", story.GeneratedImages.Cover))
	}
	if story.Plot.Setup != "" {
		sb.WriteString(story.Plot.Setup + "\n\n")
	}

	// 2. シーンごとのセリフ。背景が切り替わったときだけ見出しを出す
	scenes := ProjectScenes(story)
	var current domain.BackgroundType
	for _, sc := range scenes.DialogueScenes {
		if sc.BackgroundType != current {
			current = sc.BackgroundType
			sb.WriteString(fmt.Sprintf("## Scene: %s\n", locationOf(story.Plot.Locations, current)))
			if sc.BackgroundImage != nil {
				sb.WriteString(fmt.Sprintf("![%s](%s)\n", current, *sc.BackgroundImage))
			}
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("**%s**: %s\n", sc.Dialogue.Character, strings.TrimSpace(sc.Dialogue.Text)))
		if sc.Dialogue.Hint != "" {
			sb.WriteString(fmt.Sprintf("> 💡 %s\n", sc.Dialogue.Hint))
		}
		sb.WriteString("\n")
	}

	// 3. クイズ
	if quiz != nil && len(quiz.Questions) > 0 {
		sb.WriteString(fmt.Sprintf("## Quiz: %s (%s, ages %s)\n\n", quiz.Topic, quiz.Difficulty, quiz.AgeGroup))
		for i, q := range quiz.Questions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Question))
			for j, o := range q.Options {
				label := fmt.Sprint(j + 1)
				if j < len(optionLabels) {
					label = optionLabels[j]
				}
				mark := " "
				if o.IsCorrect {
					mark = "x"
				}
				sb.WriteString(fmt.Sprintf("   - [%s] %s. %s\n", mark, label, o.Text))
			}
			if q.Explanation != "" {
				sb.WriteString(fmt.Sprintf("   - _%s_\n", q.Explanation))
			}
		}
		sb.WriteString("\n")
	}

	// 4. 要約
	if summary != nil {
		sb.WriteString(fmt.Sprintf("## Summary: %s\n\n", summary.Topic))
		writeList(&sb, "Key points", summary.LearningSummary.KeyPoints)
		writeList(&sb, "Benefits", summary.LearningSummary.Benefits)
		if ex := summary.LearningSummary.RealWorldExample; ex != "" {
			sb.WriteString(fmt.Sprintf("**Real-world example**: %s\n", ex))
		}
	}
	return sb.String()
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("**%s**\n\n", heading))
	for _, it := range items {
		sb.WriteString("- " + it + "\n")
	}
	sb.WriteString("\n")
}

func locationOf(l domain.Locations, t domain.BackgroundType) string {
	switch t {
	case domain.BackgroundPrimary:
		return l.Primary
	case domain.BackgroundSecondary:
		return l.Secondary
	default:
		return l.Tertiary
	}
}
