package preference

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

// ErrNoInterests はドキュメントに有効な興味リストが無いときに返されます。
var ErrNoInterests = errors.New("興味リストが見つかりません")

// Profile は読み込んだユーザードキュメントと、そこから抜き出した興味リストです。
type Profile struct {
	// UserData はドキュメント全体をそのまま保持するのだ。
	UserData  json.RawMessage
	Interests map[string][]string
}

type document struct {
	Data struct {
		User struct {
			Preferences struct {
				Interests map[string]json.RawMessage `json:"interests"`
			} `json:"preferences"`
		} `json:"user"`
	} `json:"data"`
}

// Load は path のJSONを読み、data.user.preferences.interests を取り出します。
// 文字列リストとして読めないカテゴリは無視します。
func Load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("ユーザーデータの読み込みに失敗しました: %w", err)
	}
	return Parse(raw)
}

// Parse はユーザードキュメントのバイト列を解釈するのだ。
func Parse(raw []byte) (Profile, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Profile{}, fmt.Errorf("ユーザーデータのJSONが不正です: %w", err)
	}

	p := Profile{UserData: json.RawMessage(raw), Interests: make(map[string][]string)}
	for category, v := range doc.Data.User.Preferences.Interests {
		var list []string
		if err := json.Unmarshal(v, &list); err != nil {
			continue
		}
		p.Interests[category] = list
	}
	if len(p.Interests) == 0 {
		return p, ErrNoInterests
	}
	return p, nil
}

// Select はメディア系カテゴリの中からランダムに1つ選び、そのリストから興味対象を1つ選びます。
// 候補が無いときはデフォルトを返すのだ。r が nil ならグローバルな乱数源を使います。
func Select(interests map[string][]string, r *rand.Rand) domain.SelectedInterest {
	var available []string
	for _, c := range domain.InterestCategories {
		if len(interests[c]) > 0 {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return domain.DefaultInterest()
	}

	intn := rand.IntN
	if r != nil {
		intn = r.IntN
	}
	category := available[intn(len(available))]
	list := interests[category]
	return domain.SelectedInterest{Category: category, Interest: list[intn(len(list))]}
}

// Resolve は Load と Select をまとめたものです。
// どんな失敗でもデフォルトの興味対象に落とし、警告を記録するだけなのだ。
func Resolve(path string, r *rand.Rand) (domain.SelectedInterest, Profile) {
	p, err := Load(path)
	if err != nil {
		slog.Warn("ユーザーデータを利用できないためデフォルトの興味対象を使います", "path", path, "error", err)
		return domain.DefaultInterest(), p
	}
	selected := Select(p.Interests, r)
	slog.Info("ユーザーの興味対象を読み込みました", "category", selected.Category, "interest", selected.Interest)
	return selected, p
}

// Categories は利用可能なカテゴリを定義順で返します。
func (p Profile) Categories() []string {
	var out []string
	for _, c := range domain.InterestCategories {
		if len(p.Interests[c]) > 0 {
			out = append(out, c)
		}
	}
	return slices.Clip(out)
}
