package ai

import "testing"

func TestRequest_HasSampling(t *testing.T) {
	temp := float32(0.7)
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"指定なしは既定値なのだ", Request{Model: "m", Prompt: "p"}, false},
		{"温度指定", Request{Temperature: &temp}, true},
		{"出力トークン指定", Request{MaxOutputTokens: 8192}, true},
		{"モダリティ指定", Request{ResponseModalities: []string{"IMAGE"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.HasSampling(); got != tt.want {
				t.Errorf("期待値 %v, 実際の値 %v", tt.want, got)
			}
		})
	}
}
