package prompts

import (
	_ "embed"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

const (
	ModeStory      = "story"
	ModeQuiz       = "quiz"
	ModeSummary    = "summary"
	ModeCharacter  = "character"
	ModeBackground = "background"
	ModeCover      = "cover"
	ModeTutor      = "tutor"
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
// モードごとに使うフィールドは異なり、未使用のものはゼロ値のままで構いません。
type TemplateData struct {
	// 物語生成
	Topic       string
	Subtopic    string
	Difficulty  string
	MinDialogue int

	Interest    domain.SelectedInterest
	HasInterest bool

	// クイズ・要約
	Story         *domain.Story
	StoryJSON     string
	AgeGroup      string
	QuestionCount int
	OptionCount   int

	// 画像生成
	Name              string
	Description       string
	BackgroundType    string
	FinancialElements string

	// チューター
	History  string
	Question string
}

var (
	//go:embed story.md
	StoryPrompt string
	//go:embed quiz.md
	QuizPrompt string
	//go:embed summary.md
	SummaryPrompt string
	//go:embed character.md
	CharacterPrompt string
	//go:embed background.md
	BackgroundPrompt string
	//go:embed cover.md
	CoverPrompt string
	//go:embed tutor.md
	TutorPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeStory:      StoryPrompt,
	ModeQuiz:       QuizPrompt,
	ModeSummary:    SummaryPrompt,
	ModeCharacter:  CharacterPrompt,
	ModeBackground: BackgroundPrompt,
	ModeCover:      CoverPrompt,
	ModeTutor:      TutorPrompt,
}

// BackgroundFinancialElements は背景種別ごとに描き込む金融要素です。
var BackgroundFinancialElements = map[domain.BackgroundType]string{
	domain.BackgroundPrimary:   "savings tracking boards, financial planning tools",
	domain.BackgroundSecondary: "shopping areas, spending temptations",
	domain.BackgroundTertiary:  "achievement celebration setting with financial growth indicators",
}
