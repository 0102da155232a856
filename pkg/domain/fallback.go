package domain

const (
	// ErrorStoryTitle はサービスエラー等で生成できなかったときのタイトルです。
	ErrorStoryTitle = "Error Generating Story"
	// ParsingErrorStoryTitle はレスポンスを解釈できなかったときのタイトルです。
	ParsingErrorStoryTitle = "Parsing Error"

	DefaultQuizTopic    = "Financial Literacy"
	DefaultSummaryTopic = "Financial Literacy"
)

// NewErrorStory は失敗が一目で分かるプレースホルダーのストーリーを返すのだ。
// dialogue と visuals は空だが nil ではない。
func NewErrorStory(title, setup string) *Story {
	return &Story{
		Plot: Plot{
			Title: title,
			Setup: setup,
			Locations: Locations{
				Primary:   "Error",
				Secondary: "Error",
				Tertiary:  "Error",
			},
		},
		Dialogue: []Dialogue{},
		Visuals: Visuals{
			Characters:  []CharacterVisual{},
			Backgrounds: []BackgroundVisual{},
		},
	}
}

// GenerationErrorStory はモデル呼び出し失敗時のプレースホルダーです。
func GenerationErrorStory() *Story {
	return NewErrorStory(ErrorStoryTitle, "There was an error generating the story. Please try again.")
}

// ParsingErrorStory はパース失敗時のプレースホルダーです。
func ParsingErrorStory() *Story {
	return NewErrorStory(ParsingErrorStoryTitle, "Error parsing story response from API")
}

// IsPlaceholder はフォールバックで作られたストーリーかどうかを判定するのだ。
func (s *Story) IsPlaceholder() bool {
	if s == nil {
		return true
	}
	return s.Plot.Title == ErrorStoryTitle || s.Plot.Title == ParsingErrorStoryTitle
}

// DefaultQuiz は生成に失敗した場合に返す1問だけの固定クイズなのだ。
func DefaultQuiz() Quiz {
	return Quiz{
		Topic:      DefaultQuizTopic,
		Difficulty: DifficultyBeginner,
		AgeGroup:   AgeGroupFor(DifficultyBeginner),
		Questions: []QuizQuestion{
			{
				Question: "What is a budget?",
				Options: []QuizOption{
					{Text: "A plan for spending and saving money", IsCorrect: true},
					{Text: "A type of bank account", IsCorrect: false},
					{Text: "A kind of credit card", IsCorrect: false},
					{Text: "A government tax", IsCorrect: false},
				},
				Explanation: "A budget is a plan that helps you track and manage your money.",
			},
		},
	}
}

// FallbackSummary は要約を作れなかったときの固定サマリーです。topic が空ならデフォルトを使います。
func FallbackSummary(topic string) Summary {
	if topic == "" {
		topic = DefaultSummaryTopic
	}
	return Summary{
		Topic: topic,
		LearningSummary: LearningSummary{
			KeyPoints:        []string{"Key financial concept explained"},
			Benefits:         []string{"Main advantage of this approach"},
			RealWorldExample: "Basic example from the story",
		},
	}
}
