package ai

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// GeminiClient は Gemini を Client 契約に合わせるアダプターなのだ。
// サンプリング指定の無いテキスト生成は go-gemini-client に任せ、
// パラメータ付きの呼び出しとストリーミングは genai SDK を直接使います。
type GeminiClient struct {
	text   gemini.GenerativeModel
	client *genai.Client
}

// NewGeminiClient は Gemini API バックエンドのクライアントを初期化します。
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY が設定されていません")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}
	text, err := gemini.NewClient(ctx, gemini.Config{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini クライアントの初期化に失敗しました: %w", err)
	}
	return &GeminiClient{text: text, client: c}, nil
}

// Generate はプロンプトを送り、応答テキストをそのまま返します。
func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if !req.HasSampling() {
		resp, err := g.text.GenerateContent(ctx, req.Prompt, req.Model)
		if err != nil {
			return "", wrapError(err)
		}
		return resp.Text, nil
	}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), buildConfig(req))
	if err != nil {
		return "", wrapError(err)
	}
	return resp.Text(), nil
}

// Stream はストリーミング生成を行い、パートごとに Chunk を流すのだ。
// 途中でエラーが起きたら、そのエラーを1回だけ流して終了します。
func (g *GeminiClient) Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, req.Model, genai.Text(req.Prompt), buildConfig(req)) {
			if err != nil {
				yield(Chunk{}, wrapError(err))
				return
			}
			for _, c := range toChunks(resp) {
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}

func buildConfig(req Request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:        req.Temperature,
		TopP:               req.TopP,
		TopK:               req.TopK,
		MaxOutputTokens:    req.MaxOutputTokens,
		ResponseModalities: req.ResponseModalities,
	}
}

// toChunks は先頭候補のパートを Chunk に変換します。候補が無いレスポンスは空を返すのだ。
func toChunks(resp *genai.GenerateContentResponse) []Chunk {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}
	chunks := make([]Chunk, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		c := Chunk{Text: p.Text}
		if p.InlineData != nil {
			c.InlineData = &Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}
		}
		chunks = append(chunks, c)
	}
	return chunks
}

// wrapError は SDK のエラーを ServiceError に包み直すのだ。
func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{Kind: KindFromStatus(apiErr.Code), Code: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ServiceError{Kind: KindFromStatus(apiErrPtr.Code), Code: apiErrPtr.Code, Err: err}
	}
	return &ServiceError{Kind: KindGeneric, Err: err}
}
