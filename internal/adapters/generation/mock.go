package generation

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// Providers returns the mock capability providers for every generation and
// processing node type. Results are deterministic functions of the node
// configuration so executions are reproducible without the AI services.
func Providers() map[domain.NodeType]ports.CapabilityProvider {
	return map[domain.NodeType]ports.CapabilityProvider{
		domain.NodeTypeTextGeneration:      textProvider{},
		domain.NodeTypeImageGeneration:     imageProvider{},
		domain.NodeTypeMusicGeneration:     musicProvider{},
		domain.NodeTypeContentAnalysis:     analysisProvider{},
		domain.NodeTypeContentOptimization: optimizationProvider{},
		domain.NodeTypePlatformPublish:     publishProvider{},
	}
}

type textProvider struct{}

func (textProvider) Invoke(_ context.Context, config, _ map[string]any) (map[string]any, error) {
	prompt := configString(config, "prompt")
	style := configString(config, "style")
	if style == "" {
		style = "通用"
	}
	text := fmt.Sprintf("基于提示「%s」生成的%s风格内容。这是一段高质量的AI创作文本，涵盖了主题的核心要点。", prompt, style)
	return map[string]any{
		"text":       text,
		"word_count": len([]rune(text)),
		"style":      style,
	}, nil
}

type imageProvider struct{}

func (imageProvider) Invoke(_ context.Context, config, _ map[string]any) (map[string]any, error) {
	prompt := configString(config, "prompt")
	return map[string]any{
		"image_url": fmt.Sprintf("https://cdn.youcreator.ai/images/%s.png", deterministicID(prompt)),
		"width":     1024,
		"height":    1024,
		"prompt":    prompt,
	}, nil
}

type musicProvider struct{}

func (musicProvider) Invoke(_ context.Context, config, _ map[string]any) (map[string]any, error) {
	style := configString(config, "style")
	if style == "" {
		style = "轻音乐"
	}
	return map[string]any{
		"audio_url": fmt.Sprintf("https://cdn.youcreator.ai/audio/%s.mp3", deterministicID(style)),
		"duration":  60,
		"style":     style,
	}, nil
}

type analysisProvider struct{}

func (analysisProvider) Invoke(_ context.Context, _ map[string]any, inputs map[string]any) (map[string]any, error) {
	score := 7.5
	if _, ok := inputs["text"]; ok {
		score = 8.5
	}
	return map[string]any{
		"score": score,
		"suggestions": []string{
			"增加更具体的案例",
			"优化标题吸引力",
		},
	}, nil
}

type optimizationProvider struct{}

func (optimizationProvider) Invoke(_ context.Context, config, inputs map[string]any) (map[string]any, error) {
	platform := configString(config, "platform")
	content := ""
	if text, ok := inputs["text"].(string); ok {
		content = text
	}
	return map[string]any{
		"optimized": true,
		"platform":  platform,
		"content":   fmt.Sprintf("【%s优化版】%s", platform, content),
	}, nil
}

type publishProvider struct{}

func (publishProvider) Invoke(_ context.Context, config, _ map[string]any) (map[string]any, error) {
	platform := configString(config, "platform")
	return map[string]any{
		"published": true,
		"platform":  platform,
		"post_url":  fmt.Sprintf("https://%s.example.com/posts/%s", platform, deterministicID(platform)),
	}, nil
}

func configString(config map[string]any, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}

func deterministicID(seed string) string {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return fmt.Sprintf("%016x", h.Sum64())
}
