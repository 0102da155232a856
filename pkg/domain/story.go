package domain

import (
	"errors"
	"fmt"
)

// BackgroundType は背景の種類（物語の進行段階）を表します。
type BackgroundType string

const (
	BackgroundPrimary   BackgroundType = "primary"
	BackgroundSecondary BackgroundType = "secondary"
	BackgroundTertiary  BackgroundType = "tertiary"
)

// BackgroundTypes は物語の進行順に並べた背景種別なのだ。
var BackgroundTypes = []BackgroundType{BackgroundPrimary, BackgroundSecondary, BackgroundTertiary}

// Valid は既知の背景種別かどうかを返します。
func (t BackgroundType) Valid() bool {
	switch t {
	case BackgroundPrimary, BackgroundSecondary, BackgroundTertiary:
		return true
	}
	return false
}

// MinDialogueTurns はプロンプトで要求するセリフ数の下限です。受信後には強制しません。
const MinDialogueTurns = 5

// Story は生成された金融リテラシー物語の1セグメントなのだ。
type Story struct {
	Plot            Plot             `json:"plot"`
	Dialogue        []Dialogue       `json:"dialogue"`
	Visuals         Visuals          `json:"visuals"`
	Hooks           Hooks            `json:"hooks"`
	GeneratedImages *GeneratedImages `json:"generated_images,omitempty"`
}

// Plot は物語のタイトル、導入、舞台を保持します。
type Plot struct {
	Title     string    `json:"title"`
	Setup     string    `json:"setup"`
	Locations Locations `json:"locations"`
}

// Locations は3段階の舞台設定です。
type Locations struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

// Dialogue は1ターン分のセリフなのだ。Hint は任意。
type Dialogue struct {
	Character string `json:"character"`
	Text      string `json:"text"`
	Hint      string `json:"hint,omitempty"`
}

type Visuals struct {
	Characters        []CharacterVisual  `json:"characters"`
	Backgrounds       []BackgroundVisual `json:"backgrounds"`
	FinancialElements string             `json:"financial_elements"`
}

type CharacterVisual struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type BackgroundVisual struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        BackgroundType `json:"type"`
}

type Hooks struct {
	PopCulture string `json:"pop_culture"`
	Music      string `json:"music"`
}

// GeneratedImages は画像エンリッチ後に付与されるアセットURLの集合です。
// Backgrounds のキーは BackgroundTypes の部分集合、Characters のキーは visuals.characters の名前の部分集合なのだ。
type GeneratedImages struct {
	Cover       string                    `json:"cover,omitempty"`
	Characters  map[string]string         `json:"characters"`
	Backgrounds map[BackgroundType]string `json:"backgrounds"`
}

// NewGeneratedImages は空のマップを持つ GeneratedImages を返します。
func NewGeneratedImages() *GeneratedImages {
	return &GeneratedImages{
		Characters:  make(map[string]string),
		Backgrounds: make(map[BackgroundType]string),
	}
}

// Conforms は画像マップのキーが visuals の内容と矛盾しないかを検証するのだ。
func (g *GeneratedImages) Conforms(v Visuals) error {
	if g == nil {
		return nil
	}
	names := make(map[string]struct{}, len(v.Characters))
	for _, c := range v.Characters {
		names[c.Name] = struct{}{}
	}
	for name := range g.Characters {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("キャラクター画像 '%s' が visuals.characters に存在しません", name)
		}
	}
	for t := range g.Backgrounds {
		if !t.Valid() {
			return fmt.Errorf("不明な背景種別 '%s' です", t)
		}
	}
	return nil
}

// Validate はモデル出力を受け入れる前の構造チェックです。
// 必須文字列が空でないこと、背景種別が既知であることを確認します。
func (s *Story) Validate() error {
	if s == nil {
		return errors.New("story が nil です")
	}
	var errs []error
	if s.Plot.Title == "" {
		errs = append(errs, errors.New("plot.title は必須です"))
	}
	if s.Plot.Setup == "" {
		errs = append(errs, errors.New("plot.setup は必須です"))
	}
	if s.Dialogue == nil {
		errs = append(errs, errors.New("dialogue は必須です"))
	}
	for i, d := range s.Dialogue {
		if d.Character == "" || d.Text == "" {
			errs = append(errs, fmt.Errorf("dialogue[%d] に character と text が必要です", i))
		}
	}
	for i, c := range s.Visuals.Characters {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("visuals.characters[%d].name は必須です", i))
		}
	}
	for i, b := range s.Visuals.Backgrounds {
		if !b.Type.Valid() {
			errs = append(errs, fmt.Errorf("visuals.backgrounds[%d].type '%s' は不正です", i, b.Type))
		}
	}
	return errors.Join(errs...)
}

// IsZero はストーリーが実質的に空かどうかを返します。
func (s *Story) IsZero() bool {
	return s == nil || (s.Plot == Plot{} && len(s.Dialogue) == 0 && s.Visuals.IsZero() && s.Hooks == Hooks{})
}

// IsZero は visuals が一切の情報を持たないときに true を返すのだ。
func (v Visuals) IsZero() bool {
	return len(v.Characters) == 0 && len(v.Backgrounds) == 0 && v.FinancialElements == ""
}

// Speakers は登場順に重複を除いた話者名を返します。
func (s *Story) Speakers() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range s.Dialogue {
		if _, ok := seen[d.Character]; ok {
			continue
		}
		seen[d.Character] = struct{}{}
		out = append(out, d.Character)
	}
	return out
}

// DialogueTexts はセリフ本文のみを順番に返すのだ。
func (s *Story) DialogueTexts() []string {
	out := make([]string, 0, len(s.Dialogue))
	for _, d := range s.Dialogue {
		out = append(out, d.Text)
	}
	return out
}
