package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-fin-novel-kit/internal/config"
)

// opts は CLI フラグの受け皿なのだ。
var opts config.GenerateOptions

// skipImages と logLevel は環境変数より優先されるグローバルフラグです。
var (
	skipImages bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:               "fin-novel",
	Short:             "金融リテラシーを学べるビジュアルノベルを生成するのだ。",
	Long:              `Gemini を使って、興味のある題材から金融の物語、クイズ、要約を生成します。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, generateCmd)
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().BoolVar(&skipImages, "skip-images", false, "画像の生成とアップロードを行わないのだ。")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ログレベル（debug, info, warn, error）なのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// loadConfig は環境変数とフラグを合わせた設定を返します。
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	if cmd.Flags().Changed("skip-images") {
		cfg.SkipImages = skipImages
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return nil, fmt.Errorf("--log-level が不正です: %w", err)
		}
	}
	cfg.Options = opts
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger は既定のロガーを差し替えます。serve は JSON、generate はテキストなのだ。
func setupLogger(w io.Writer, level slog.Level, json bool) {
	ho := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, ho)
	if json {
		h = slog.NewJSONHandler(w, ho)
	}
	slog.SetDefault(slog.New(h))
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
