package ai

import (
	"context"
	"iter"
)

// Request はモデルへの1回分の呼び出し内容です。
// nil のパラメータはモデル既定値のままにするのだ。
type Request struct {
	Model              string
	Prompt             string
	Temperature        *float32
	TopP               *float32
	TopK               *float32
	MaxOutputTokens    int32
	ResponseModalities []string
}

// HasSampling はモデル既定値以外の生成パラメータが指定されているかを返すのだ。
func (r Request) HasSampling() bool {
	return r.Temperature != nil || r.TopP != nil || r.TopK != nil ||
		r.MaxOutputTokens > 0 || len(r.ResponseModalities) > 0
}

// Blob はチャンクに含まれるインラインのバイナリデータなのだ。
type Blob struct {
	MIMEType string
	Data     []byte
}

// Chunk はストリーミング応答の1片です。
type Chunk struct {
	Text       string
	InlineData *Blob
}

// HasImage はチャンクが画像データを運んでいるかどうかを返します。
func (c Chunk) HasImage() bool {
	return c.InlineData != nil && len(c.InlineData.Data) > 0
}

// Client は生成モデルとの通信契約です。
// Generate は単一のテキストを、Stream はチャンクの列を返すのだ。
// どちらも失敗時は *ServiceError を返します。
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error]
}
