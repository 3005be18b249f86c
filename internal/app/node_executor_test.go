package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// stubProvider runs the given function as its capability.
type stubProvider struct {
	invoke func(ctx context.Context, config, inputs map[string]any) (map[string]any, error)
}

func (p stubProvider) Invoke(ctx context.Context, config, inputs map[string]any) (map[string]any, error) {
	return p.invoke(ctx, config, inputs)
}

func newTestNodeExecutor(providers map[domain.NodeType]ports.CapabilityProvider) *NodeExecutor {
	return NewNodeExecutor(providers, zap.NewNop())
}

func TestNodeExecutorLocalNodes(t *testing.T) {
	executor := newTestNodeExecutor(nil)
	bound := map[string]any{"topic": "AI绘画"}

	t.Run("input node echoes the bound context", func(t *testing.T) {
		result := executor.Execute(context.Background(), &domain.Node{ID: "in", Type: domain.NodeTypeInput}, bound)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, domain.SourceGenerated, result.Source)
		assert.Equal(t, bound, result.Output["data"])
	})

	t.Run("output node wraps the bound context", func(t *testing.T) {
		result := executor.Execute(context.Background(), &domain.Node{ID: "out", Type: domain.NodeTypeOutput}, bound)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, bound, result.Output["result"])
	})
}

func TestNodeExecutorConfigValidation(t *testing.T) {
	executor := newTestNodeExecutor(nil)

	t.Run("text generation requires a prompt", func(t *testing.T) {
		node := &domain.Node{ID: "gen", Type: domain.NodeTypeTextGeneration, Config: map[string]any{}}
		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusFailed, result.Status)
		var configErr domain.NodeConfigError
		require.True(t, errors.As(result.Err, &configErr))
		assert.Equal(t, "prompt", configErr.Field)
	})

	t.Run("blank prompt is rejected too", func(t *testing.T) {
		node := &domain.Node{ID: "gen", Type: domain.NodeTypeTextGeneration, Config: map[string]any{"prompt": "   "}}
		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusFailed, result.Status)
	})

	t.Run("publish requires a platform", func(t *testing.T) {
		node := &domain.Node{ID: "pub", Type: domain.NodeTypePlatformPublish, Config: map[string]any{}}
		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusFailed, result.Status)
		var configErr domain.NodeConfigError
		require.True(t, errors.As(result.Err, &configErr))
		assert.Equal(t, "platform", configErr.Field)
	})

	t.Run("unknown node type is rejected", func(t *testing.T) {
		node := &domain.Node{ID: "odd", Type: domain.NodeType("banana")}
		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusFailed, result.Status)
		var typeErr domain.UnknownNodeTypeError
		require.True(t, errors.As(result.Err, &typeErr))
		assert.Equal(t, "odd", typeErr.NodeID)
	})
}

func TestNodeExecutorProviderOutcomes(t *testing.T) {
	t.Run("successful provider result is generated", func(t *testing.T) {
		executor := newTestNodeExecutor(map[domain.NodeType]ports.CapabilityProvider{
			domain.NodeTypeTextGeneration: stubProvider{invoke: func(_ context.Context, config, _ map[string]any) (map[string]any, error) {
				return map[string]any{"text": "你好", "prompt_seen": config["prompt"]}, nil
			}},
		})
		node := &domain.Node{ID: "gen", Type: domain.NodeTypeTextGeneration, Config: map[string]any{"prompt": "打个招呼"}}

		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, domain.SourceGenerated, result.Source)
		assert.Equal(t, "你好", result.Output["text"])
		assert.Nil(t, result.Err)
	})

	t.Run("provider error degrades to fallback", func(t *testing.T) {
		executor := newTestNodeExecutor(map[domain.NodeType]ports.CapabilityProvider{
			domain.NodeTypeImageGeneration: stubProvider{invoke: func(context.Context, map[string]any, map[string]any) (map[string]any, error) {
				return nil, errors.New("backend unavailable")
			}},
		})
		node := &domain.Node{ID: "img", Type: domain.NodeTypeImageGeneration}

		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, domain.SourceFallback, result.Source)
		assert.NotEmpty(t, result.Output["image_url"])
		assert.Nil(t, result.Err)
	})

	t.Run("missing provider degrades to fallback", func(t *testing.T) {
		executor := newTestNodeExecutor(nil)
		node := &domain.Node{ID: "music", Type: domain.NodeTypeMusicGeneration}

		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, domain.SourceFallback, result.Source)
		assert.NotEmpty(t, result.Output["audio_url"])
	})

	t.Run("deadline overrun degrades to fallback within the deadline", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		executor := newTestNodeExecutor(map[domain.NodeType]ports.CapabilityProvider{
			domain.NodeTypeTextGeneration: stubProvider{invoke: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				select {
				case <-release:
				case <-ctx.Done():
				}
				return nil, ctx.Err()
			}},
		})
		executor.singleDeadline = 20 * time.Millisecond
		node := &domain.Node{ID: "gen", Type: domain.NodeTypeTextGeneration, Config: map[string]any{"prompt": "慢一点"}}

		start := time.Now()
		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, domain.SourceFallback, result.Source)
		assert.NotEmpty(t, result.Output["text"])
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("composite deadline applies to publish nodes", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		executor := newTestNodeExecutor(map[domain.NodeType]ports.CapabilityProvider{
			domain.NodeTypePlatformPublish: stubProvider{invoke: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				select {
				case <-release:
				case <-ctx.Done():
				}
				return nil, ctx.Err()
			}},
		})
		executor.compositeDeadline = 20 * time.Millisecond
		node := &domain.Node{ID: "pub", Type: domain.NodeTypePlatformPublish, Config: map[string]any{"platform": "weibo"}}

		start := time.Now()
		result := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, domain.NodeStatusCompleted, result.Status)
		assert.Equal(t, domain.SourceFallback, result.Source)
		assert.Equal(t, false, result.Output["published"])
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("fallback is deterministic", func(t *testing.T) {
		executor := newTestNodeExecutor(nil)
		node := &domain.Node{ID: "music", Type: domain.NodeTypeMusicGeneration}

		first := executor.Execute(context.Background(), node, nil)
		second := executor.Execute(context.Background(), node, nil)

		assert.Equal(t, first.Output, second.Output)
	})
}

func TestResolveConfig(t *testing.T) {
	bound := map[string]any{
		"topic": "城市夜景",
		"count": 3,
	}

	t.Run("substitutes placeholders", func(t *testing.T) {
		config := map[string]any{
			"prompt": "画一张{topic}，共{count}张",
			"width":  1024,
		}
		resolved := resolveConfig(config, bound)

		assert.Equal(t, "画一张城市夜景，共3张", resolved["prompt"])
		assert.Equal(t, 1024, resolved["width"])
	})

	t.Run("unknown placeholders are left alone", func(t *testing.T) {
		resolved := resolveConfig(map[string]any{"prompt": "{missing}"}, bound)
		assert.Equal(t, "{missing}", resolved["prompt"])
	})

	t.Run("nil config yields empty map", func(t *testing.T) {
		resolved := resolveConfig(nil, bound)
		assert.Empty(t, resolved)
	})
}

func TestFallbackOutputShapes(t *testing.T) {
	assert.Contains(t, fallbackOutput(domain.NodeTypeTextGeneration), "text")
	assert.Contains(t, fallbackOutput(domain.NodeTypeImageGeneration), "image_url")
	assert.Contains(t, fallbackOutput(domain.NodeTypeMusicGeneration), "audio_url")
	assert.Contains(t, fallbackOutput(domain.NodeTypeContentAnalysis), "score")
	assert.Contains(t, fallbackOutput(domain.NodeTypeContentOptimization), "optimized")
	assert.Equal(t, false, fallbackOutput(domain.NodeTypePlatformPublish)["published"])
}
