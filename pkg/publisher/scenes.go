package publisher

import "github.com/shouni/go-fin-novel-kit/pkg/domain"

// Scene はフロントエンドで1コマとして描画する単位なのだ。
// 画像が無い場合の URL は null として出力されます。
type Scene struct {
	Dialogue        domain.Dialogue       `json:"dialogue"`
	BackgroundType  domain.BackgroundType `json:"background_type"`
	BackgroundImage *string               `json:"background_image"`
	CharacterImage  *string               `json:"character_image"`
}

// Scenes はフロントエンド向けに整形した物語です。
type Scenes struct {
	Plot           domain.Plot `json:"plot"`
	DialogueScenes []Scene     `json:"dialogue_scenes"`
}

// BackgroundFor は n ターン中 i 番目のセリフに対応する背景種別を返します。
// 前3分の1が primary、次の3分の1が secondary、残りが tertiary なのだ。
func BackgroundFor(i, n int) domain.BackgroundType {
	switch {
	case i < n/3:
		return domain.BackgroundPrimary
	case i < (n*2)/3:
		return domain.BackgroundSecondary
	default:
		return domain.BackgroundTertiary
	}
}

// ProjectScenes はセリフごとに背景とキャラクター画像を割り当てます。
func ProjectScenes(story *domain.Story) Scenes {
	out := Scenes{DialogueScenes: []Scene{}}
	if story == nil {
		return out
	}
	out.Plot = story.Plot

	var images domain.GeneratedImages
	if story.GeneratedImages != nil {
		images = *story.GeneratedImages
	}

	n := len(story.Dialogue)
	for i, d := range story.Dialogue {
		bt := BackgroundFor(i, n)
		out.DialogueScenes = append(out.DialogueScenes, Scene{
			Dialogue:        d,
			BackgroundType:  bt,
			BackgroundImage: lookup(images.Backgrounds, bt),
			CharacterImage:  lookup(images.Characters, d.Character),
		})
	}
	return out
}

func lookup[K comparable](m map[K]string, k K) *string {
	if v, ok := m[k]; ok && v != "" {
		return &v
	}
	return nil
}
