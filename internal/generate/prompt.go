package generate

import (
	"fmt"
	"strings"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// family selects the prompt template variant for an error message
type family string

const (
	familyWindows  family = "windows"
	familyMacOS    family = "macos"
	familyLinux    family = "linux"
	familySoftware family = "software"
	familyDefault  family = "default"
)

// errorFamily classifies an error message by the platform vocabulary it uses.
// The first matching family wins; Windows indicators are checked first because
// hex error codes are overwhelmingly Windows-originated.
func errorFamily(errorMessage string) family {
	lower := strings.ToLower(errorMessage)

	switch {
	case containsAny(lower, "windows", "0x", "bsod", "registry", "dll"):
		return familyWindows
	case containsAny(lower, "macos", "mac os", "darwin", "kernel panic"):
		return familyMacOS
	case containsAny(lower, "linux", "ubuntu", "debian", "permission denied"):
		return familyLinux
	case containsAny(lower, "application", "software", "program"):
		return familySoftware
	default:
		return familyDefault
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var familyFocus = map[family]string{
	familyWindows:  "Windowsのシステムエラーとして、レジストリ、ドライバ、システムファイルの観点から原因と対処を整理してください。",
	familyMacOS:    "macOSのエラーとして、システム環境設定、権限、Appleサポートの推奨手順の観点から整理してください。",
	familyLinux:    "Linuxのエラーとして、パーミッション、パッケージ管理、ログ調査の観点から整理してください。",
	familySoftware: "アプリケーションのエラーとして、再インストール、設定リセット、互換性の観点から整理してください。",
	familyDefault:  "一般的な技術エラーとして、再現条件の切り分けと段階的な対処の観点から整理してください。",
}

// buildSystemPrompt instructs the model to emit a single JSON article object
func buildSystemPrompt(f family) string {
	var b strings.Builder

	b.WriteString("あなたは技術系ブログの専門ライターです。エラーメッセージの解決方法を解説する、SEOに最適化された日本語の記事を執筆してください。\n\n")
	b.WriteString(familyFocus[f])
	b.WriteString("\n\n記事の構成:\n")
	b.WriteString("1. エラーの概要(どんな時に発生するか)\n")
	b.WriteString("2. 主な原因(箇条書きで複数)\n")
	b.WriteString("3. 解決方法(手順を番号付きで、簡単なものから順に)\n")
	b.WriteString("4. 予防策\n")
	b.WriteString("5. まとめ\n\n")
	b.WriteString("要件:\n")
	b.WriteString("- 本文はMarkdown形式(# 見出し、## 小見出し、コードブロック、箇条書きを使用)\n")
	b.WriteString("- 2000〜8000文字程度\n")
	b.WriteString("- 提供された解決策と情報源を根拠として使用し、情報源は記事末尾に「参考情報」として列挙\n")
	b.WriteString("- 専門用語には初出時に簡単な説明を付ける\n\n")
	b.WriteString("出力は以下のJSONオブジェクトのみ(前後に説明文を付けない):\n")
	b.WriteString(`{"title": "記事タイトル", "slug": "url-slug", "content": "Markdown本文", "excerpt": "記事の要約", "meta_description": "検索結果用の説明(160文字以内)", "tags": ["タグ1", "タグ2"], "category": "エラー解決", "word_count": 0}`)

	return b.String()
}

// buildUserPrompt serializes the collected evidence for the model
func buildUserPrompt(bundle model.AggregatedBundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "エラーメッセージ: %s\n", bundle.Candidate.Text)
	fmt.Fprintf(&b, "発見元: %s\n\n", bundle.Candidate.Provider)

	if len(bundle.Solutions) > 0 {
		b.WriteString("収集した解決策:\n")
		for i, sol := range bundle.Solutions {
			fmt.Fprintf(&b, "%d. %s (信頼度: %.2f, 出典: %s)\n", i+1, sol.Description, sol.Reliability, sol.SourceTitle)
			for _, step := range sol.Steps {
				fmt.Fprintf(&b, "   - %s\n", step)
			}
		}
		b.WriteString("\n")
	} else {
		b.WriteString("収集した解決策: なし(一般的な知見に基づいて執筆してください)\n\n")
	}

	if len(bundle.Citations) > 0 {
		b.WriteString("情報源:\n")
		for _, cit := range bundle.Citations {
			fmt.Fprintf(&b, "- %s (%s)\n", cit.Title, cit.URL)
		}
	}

	return b.String()
}
