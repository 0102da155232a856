package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-utils/urlpath"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

const (
	jsonContentType     = "application/json; charset=utf-8"
	markdownContentType = "text/markdown; charset=utf-8"
)

// Artifact は書き出す成果物一式です。
type Artifact struct {
	ID      string          `json:"story_id"`
	Story   *domain.Story   `json:"story"`
	Quiz    *domain.Quiz    `json:"quiz,omitempty"`
	Summary *domain.Summary `json:"summary,omitempty"`
	Scenes  Scenes          `json:"frontend_format"`
}

// NewArtifact はフロントエンド向けのシーンを含めた成果物を組み立てます。
func NewArtifact(id string, story *domain.Story, quiz *domain.Quiz, summary *domain.Summary) Artifact {
	return Artifact{ID: id, Story: story, Quiz: quiz, Summary: summary, Scenes: ProjectScenes(story)}
}

// Render は成果物を JSON、または markdown が真なら Markdown のバイト列にします。
func Render(a Artifact, markdown bool) ([]byte, error) {
	if markdown {
		return []byte(BuildMarkdown(a.Story, a.Quiz, a.Summary)), nil
	}
	body, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("成果物のシリアライズに失敗しました: %w", err)
	}
	return body, nil
}

// IsMarkdownPath は拡張子が .md かどうかを返すのだ。
func IsMarkdownPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// PublishResult は書き出したファイルのパスを保持します。
type PublishResult struct {
	JSONPath     string
	MarkdownPath string
}

// StoryPublisher は成果物を JSON と Markdown で保存するのだ。
type StoryPublisher struct {
	writer remoteio.OutputWriter
}

// NewStoryPublisher は StoryPublisher を生成します。
// writer はローカルパスと gs:// の両方を扱えるものを渡すのだ。
func NewStoryPublisher(writer remoteio.OutputWriter) *StoryPublisher {
	return &StoryPublisher{writer: writer}
}

// Publish は outputDir 配下に <id>.json と <id>.md を書き出します。
// outputDir は gs:// から始まるURIでも構いません。
func (p *StoryPublisher) Publish(ctx context.Context, outputDir string, story *domain.Story, quiz *domain.Quiz, summary *domain.Summary, id string) (PublishResult, error) {
	var result PublishResult
	if story == nil {
		return result, fmt.Errorf("書き出す物語がありません")
	}
	if id == "" {
		return result, fmt.Errorf("成果物のIDが空です")
	}

	// 1. JSON
	jsonPath, err := urlpath.ResolveOutputPath(outputDir, id+".json")
	if err != nil {
		return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	body, err := Render(NewArtifact(id, story, quiz, summary), false)
	if err != nil {
		return result, err
	}
	if err := p.writer.Write(ctx, jsonPath, bytes.NewReader(body), jsonContentType); err != nil {
		return result, fmt.Errorf("JSONファイルの書き込みに失敗しました: %w", err)
	}
	result.JSONPath = jsonPath

	// 2. Markdown
	mdPath, err := urlpath.ResolveOutputPath(outputDir, id+".md")
	if err != nil {
		return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	content := BuildMarkdown(story, quiz, summary)
	if err := p.writer.Write(ctx, mdPath, strings.NewReader(content), markdownContentType); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = mdPath

	slog.InfoContext(ctx, "成果物を書き出しました", "json", jsonPath, "markdown", mdPath)
	return result, nil
}

// Export は成果物を1つのファイルに書き出します。拡張子が .md なら Markdown、それ以外は JSON です。
func (p *StoryPublisher) Export(ctx context.Context, path string, a Artifact) error {
	markdown := IsMarkdownPath(path)
	body, err := Render(a, markdown)
	if err != nil {
		return err
	}
	contentType := jsonContentType
	if markdown {
		contentType = markdownContentType
	}
	if err := p.writer.Write(ctx, path, bytes.NewReader(body), contentType); err != nil {
		return fmt.Errorf("%s の書き込みに失敗しました: %w", path, err)
	}
	return nil
}
