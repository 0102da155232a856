package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-fin-novel-kit/internal/builder"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/publisher"
)

// generateCmd は、物語・クイズ・要約を1回だけ生成して書き出すのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "物語・クイズ・要約を1つ生成しますなのだ。",
	Long: `ユーザーデータから興味のある題材を選び、物語、クイズ、要約を生成するのだ。
--output-file が .md で終わるなら Markdown、それ以外は JSON で書き出すのだよ。
未指定なら標準出力に JSON を出します。`,
	Example: "  fin-novel generate --difficulty intermediate -o output/story.md",
	RunE:    generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.Difficulty, "difficulty", "d", "", "難易度（beginner, intermediate, advanced）なのだ。")
	generateCmd.Flags().StringVarP(&opts.OutputFile, "output-file", "o", "", "保存パス（ローカル or gs://...）。空なら標準出力なのだ。")
	generateCmd.Flags().StringVar(&opts.Format, "format", "", "標準出力の形式（json か markdown）なのだ。")
	generateCmd.Flags().StringVar(&opts.PublishDir, "publish-dir", "", "JSON と Markdown の両方を書き出すディレクトリなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(os.Stderr, cfg.LogLevel, false)
	ctx := cmd.Context()

	app, err := builder.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("クライアントのクローズに失敗しました", "error", err)
		}
	}()

	slog.Info("物語の生成を開始するのだ！",
		"difficulty", opts.Difficulty,
		"story_model", cfg.StoryModel,
		"output", opts.OutputFile)

	rec, err := app.Orchestrator.GenerateStory(ctx, domain.Difficulty(opts.Difficulty))
	if err != nil {
		return fmt.Errorf("物語の生成中にエラーが発生したのだ: %w", err)
	}
	artifact := publisher.NewArtifact(rec.ID, rec.Story, rec.Quiz, rec.Summary)

	if opts.PublishDir != "" {
		if _, err := app.Publisher.Publish(ctx, opts.PublishDir, rec.Story, rec.Quiz, rec.Summary, rec.ID); err != nil {
			return err
		}
	}

	if opts.OutputFile == "" {
		body, err := publisher.Render(artifact, opts.Format == "markdown")
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(body, '\n'))
		return err
	}
	if err := app.Publisher.Export(ctx, opts.OutputFile, artifact); err != nil {
		return err
	}
	slog.Info("すべての生成工程が完了したのだ！", "story_id", rec.ID, "output", opts.OutputFile)
	return nil
}
