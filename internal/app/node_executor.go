package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

const (
	// singleNodeDeadline bounds one generation or processing step.
	singleNodeDeadline = 30 * time.Second
	// compositeNodeDeadline bounds steps that fan out to external systems,
	// currently platform publishing.
	compositeNodeDeadline = 60 * time.Second
)

// NodeResult is the outcome of executing a single node.
type NodeResult struct {
	Status domain.NodeStatus
	Output map[string]any
	Source domain.ResultSource
	Err    error
}

// NodeExecutor runs one workflow node against its capability provider,
// enforcing per-node deadlines and substituting deterministic fallback
// results when a provider fails or times out.
type NodeExecutor struct {
	providers map[domain.NodeType]ports.CapabilityProvider
	logger    *zap.Logger

	singleDeadline    time.Duration
	compositeDeadline time.Duration
}

func NewNodeExecutor(providers map[domain.NodeType]ports.CapabilityProvider, logger *zap.Logger) *NodeExecutor {
	return &NodeExecutor{
		providers:         providers,
		logger:            logger,
		singleDeadline:    singleNodeDeadline,
		compositeDeadline: compositeNodeDeadline,
	}
}

// Execute runs a single node with the merged upstream context bound into its
// configuration. Input and output nodes resolve locally. Provider errors and
// deadline overruns degrade to a fallback result rather than failing the
// node; only invalid configuration fails it.
//
// ctx carries cancellation intent only: a node already dispatched is allowed
// to drain up to its own deadline even after the run is cancelled.
func (e *NodeExecutor) Execute(ctx context.Context, node *domain.Node, bound map[string]any) NodeResult {
	if err := domain.ValidateNodeConfig(*node); err != nil {
		return NodeResult{Status: domain.NodeStatusFailed, Err: err}
	}

	switch node.Type {
	case domain.NodeTypeInput:
		return NodeResult{
			Status: domain.NodeStatusCompleted,
			Output: map[string]any{"data": bound},
			Source: domain.SourceGenerated,
		}
	case domain.NodeTypeOutput:
		return NodeResult{
			Status: domain.NodeStatusCompleted,
			Output: map[string]any{"result": bound},
			Source: domain.SourceGenerated,
		}
	}

	config := resolveConfig(node.Config, bound)
	deadline := e.singleDeadline
	if node.Type == domain.NodeTypePlatformPublish {
		deadline = e.compositeDeadline
	}

	provider, ok := e.providers[node.Type]
	if !ok {
		e.logger.Warn("no provider registered, using fallback result",
			zap.String("node_id", node.ID), zap.String("node_type", string(node.Type)))
		return NodeResult{
			Status: domain.NodeStatusCompleted,
			Output: fallbackOutput(node.Type),
			Source: domain.SourceFallback,
		}
	}

	// Detach from the run context so cancellation does not abort an
	// in-flight node; the node's own deadline still applies.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deadline)
	defer cancel()

	type invokeResult struct {
		output map[string]any
		err    error
	}
	done := make(chan invokeResult, 1)
	go func() {
		output, err := provider.Invoke(cctx, config, bound)
		done <- invokeResult{output: output, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			e.logger.Warn("provider failed, using fallback result",
				zap.String("node_id", node.ID),
				zap.String("node_type", string(node.Type)),
				zap.Error(res.err))
			return NodeResult{
				Status: domain.NodeStatusCompleted,
				Output: fallbackOutput(node.Type),
				Source: domain.SourceFallback,
			}
		}
		return NodeResult{Status: domain.NodeStatusCompleted, Output: res.output, Source: domain.SourceGenerated}
	case <-cctx.Done():
		e.logger.Warn("provider deadline exceeded, using fallback result",
			zap.String("node_id", node.ID),
			zap.String("node_type", string(node.Type)),
			zap.Duration("deadline", deadline))
		return NodeResult{
			Status: domain.NodeStatusCompleted,
			Output: fallbackOutput(node.Type),
			Source: domain.SourceFallback,
		}
	}
}

// resolveConfig substitutes {key} placeholders in string config values with
// values from the merged upstream context.
func resolveConfig(config, bound map[string]any) map[string]any {
	if len(config) == 0 {
		return map[string]any{}
	}
	resolved := make(map[string]any, len(config))
	for k, v := range config {
		s, ok := v.(string)
		if !ok || !strings.Contains(s, "{") {
			resolved[k] = v
			continue
		}
		for key, val := range bound {
			placeholder := "{" + key + "}"
			if strings.Contains(s, placeholder) {
				s = strings.ReplaceAll(s, placeholder, fmt.Sprintf("%v", val))
			}
		}
		resolved[k] = s
	}
	return resolved
}

// fallbackOutput returns the deterministic degraded result for a node type.
func fallbackOutput(nodeType domain.NodeType) map[string]any {
	switch nodeType {
	case domain.NodeTypeTextGeneration:
		return map[string]any{
			"text":       "内容生成暂时不可用，请稍后重试。",
			"word_count": 0,
		}
	case domain.NodeTypeImageGeneration:
		return map[string]any{
			"image_url": "https://placeholder.youcreator.ai/image-unavailable.png",
			"width":     0,
			"height":    0,
		}
	case domain.NodeTypeMusicGeneration:
		return map[string]any{
			"audio_url": "https://placeholder.youcreator.ai/audio-unavailable.mp3",
			"duration":  0,
		}
	case domain.NodeTypeContentAnalysis:
		return map[string]any{
			"score":       0.0,
			"suggestions": []string{},
		}
	case domain.NodeTypeContentOptimization:
		return map[string]any{
			"optimized": false,
			"content":   "",
		}
	case domain.NodeTypePlatformPublish:
		return map[string]any{
			"published": false,
			"post_url":  "",
		}
	default:
		return map[string]any{}
	}
}
