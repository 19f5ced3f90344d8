package advice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gpacalc/internal/gpa"
	"gpacalc/pkg/models"

	"go.uber.org/zap"
)

// FallbackAdvice 在服务不可用或返回空数据时返回给用户
var FallbackAdvice = []string{
	"Could not connect to AI advisor right now. 🤖",
	"Focus on your lowest graded subjects first. 📉",
	"Don't give up, improvement is possible! 💪",
}

// Provider 是外部文本生成服务
type Provider interface {
	Advise(ctx context.Context, prompt string) ([]string, error)
}

type Gateway struct {
	provider Provider
	logger   *zap.Logger
}

func NewGateway(provider Provider, logger *zap.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		logger:   logger,
	}
}

// Request 获取学业建议。失败只记录日志，始终返回可展示的建议列表。
func (g *Gateway) Request(ctx context.Context, value float64, courses []models.Course) []string {
	prompt := BuildPrompt(value, courses)

	tips, err := g.provider.Advise(ctx, prompt)
	if err != nil {
		g.logger.Error("Advice provider error", zap.Error(err), zap.Float64("gpa", value))
		return Fallback()
	}
	if len(tips) == 0 {
		g.logger.Warn("Advice provider returned no advice", zap.Float64("gpa", value))
		return Fallback()
	}

	g.logger.Info("Advice received", zap.Int("count", len(tips)), zap.Float64("gpa", value))
	return tips
}

// Fallback 返回 FallbackAdvice 的副本
func Fallback() []string {
	out := make([]string, len(FallbackAdvice))
	copy(out, FallbackAdvice)
	return out
}

// BuildPrompt 生成发送给模型的提示词
func BuildPrompt(value float64, courses []models.Course) string {
	lines := make([]string, 0, len(courses))
	for _, c := range courses {
		credits := strconv.FormatFloat(c.Credits, 'f', -1, 64)
		lines = append(lines, fmt.Sprintf("%s: %s (%s credits)", c.Name, gpa.LabelFor(c.GradePoints), credits))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I am a university student. My current calculated GPA is %.2f.\n\n", value)
	b.WriteString("Here is the breakdown of my courses:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString("Please provide 3 specific, constructive, and emoji-rich pieces of advice or motivation based on these specific results.\n")
	b.WriteString("If the GPA is low, be encouraging but realistic. If it is high, tell me how to maintain it.\n")
	b.WriteString("Keep each point relatively short (under 20 words).\n")
	return b.String()
}
