package domain

// 興味カテゴリ。ユーザー設定からこの3つのいずれかが選ばれるのだ。
const (
	CategoryMusicArtists = "Music Artists"
	CategoryMoviesSeries = "Movies/Series"
	CategoryComicsAnime  = "Comics & Anime"
)

// InterestCategories は選択対象となるカテゴリの一覧です。
var InterestCategories = []string{CategoryMusicArtists, CategoryMoviesSeries, CategoryComicsAnime}

// SelectedInterest はプロンプトをパーソナライズするための興味対象です。
type SelectedInterest struct {
	Category string `json:"category"`
	Interest string `json:"interest"`
}

// DefaultInterest は設定が読めなかったときに使う興味対象なのだ。
func DefaultInterest() SelectedInterest {
	return SelectedInterest{Category: CategoryComicsAnime, Interest: "Spider-Man"}
}

// IsZero は未選択かどうかを返します。
func (si SelectedInterest) IsZero() bool {
	return si.Category == "" && si.Interest == ""
}

// OrDefault は未選択ならデフォルトを返すのだ。
func (si SelectedInterest) OrDefault() SelectedInterest {
	if si.IsZero() {
		return DefaultInterest()
	}
	return si
}

// Concept は学習テーマ（トピックとサブトピック）です。
type Concept struct {
	Topic    string `json:"topic"`
	Subtopic string `json:"subtopic"`
}

// DefaultConcept は最初に扱う学習テーマなのだ。
func DefaultConcept() Concept {
	return Concept{Topic: "Budgeting", Subtopic: "What is a Budget and Why It Matters"}
}

// Message はチューターとの会話履歴の1件です。
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}
