package templates

import (
	"context"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// Registry serves the built-in workflow templates. Lookups return clones so
// instantiation never mutates the seed data.
type Registry struct {
	order     []string
	templates map[string]*domain.Template
}

var _ ports.TemplateRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	seeds := []*domain.Template{
		blogPostTemplate(),
		socialMediaTemplate(),
		storyCreationTemplate(),
		productMarketingTemplate(),
	}
	r := &Registry{templates: make(map[string]*domain.Template, len(seeds))}
	for _, t := range seeds {
		r.order = append(r.order, t.ID)
		r.templates[t.ID] = t
	}
	return r
}

func (r *Registry) Get(_ context.Context, id string) (*domain.Template, error) {
	template, ok := r.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return template.Clone(), nil
}

func (r *Registry) List(_ context.Context) ([]*domain.Template, error) {
	out := make([]*domain.Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id].Clone())
	}
	return out, nil
}

func blogPostTemplate() *domain.Template {
	return &domain.Template{
		ID:          "blog_post_workflow",
		Name:        "博客文章生成工作流",
		Description: "自动生成博客文章，包括内容、配图和优化建议",
		Version:     "1.0",
		Category:    "content_creation",
		Difficulty:  "beginner",
		Nodes: []domain.Node{
			{
				ID: "input_topic", Type: domain.NodeTypeInput,
				Name: "输入主题", Description: "输入博客文章主题",
				Config:   map[string]any{"input_fields": []string{"topic", "target_audience", "tone"}},
				Position: domain.Position{X: 100, Y: 100},
			},
			{
				ID: "generate_outline", Type: domain.NodeTypeTextGeneration,
				Name: "生成文章大纲", Description: "根据主题生成文章大纲",
				Config: map[string]any{
					"prompt":      "为主题'{topic}'生成一个详细的博客文章大纲，目标受众是{target_audience}，语调要{tone}。",
					"max_length":  300,
					"temperature": 0.7,
				},
				Position: domain.Position{X: 300, Y: 100},
			},
			{
				ID: "generate_content", Type: domain.NodeTypeTextGeneration,
				Name: "生成文章内容", Description: "根据大纲生成完整文章",
				Config: map[string]any{
					"prompt":      "根据以下大纲写一篇完整的博客文章：{text}",
					"max_length":  2000,
					"temperature": 0.8,
				},
				Position: domain.Position{X: 500, Y: 100},
			},
			{
				ID: "generate_image", Type: domain.NodeTypeImageGeneration,
				Name: "生成配图", Description: "为文章生成配图",
				Config: map[string]any{
					"prompt": "为博客文章'{topic}'生成一张配图",
					"style":  "professional",
					"width":  800,
					"height": 600,
				},
				Position: domain.Position{X: 700, Y: 100},
			},
			{
				ID: "analyze_content", Type: domain.NodeTypeContentAnalysis,
				Name: "内容分析", Description: "分析文章内容",
				Config:   map[string]any{"analysis_type": "comprehensive"},
				Position: domain.Position{X: 500, Y: 300},
			},
			{
				ID: "optimize_content", Type: domain.NodeTypeContentOptimization,
				Name: "内容优化", Description: "优化文章内容",
				Config:   map[string]any{"platform": "blog", "optimization_level": "high"},
				Position: domain.Position{X: 700, Y: 300},
			},
			{
				ID: "output_result", Type: domain.NodeTypeOutput,
				Name: "输出结果", Description: "输出最终的博客文章",
				Config:   map[string]any{"output_fields": []string{"optimized_content", "image_url", "suggested_tags"}},
				Position: domain.Position{X: 900, Y: 200},
			},
		},
		Edges: []domain.Edge{
			{From: "input_topic", To: "generate_outline"},
			{From: "generate_outline", To: "generate_content"},
			{From: "input_topic", To: "generate_image"},
			{From: "generate_content", To: "analyze_content"},
			{From: "analyze_content", To: "optimize_content"},
			{From: "optimize_content", To: "output_result"},
			{From: "generate_image", To: "output_result"},
		},
		Metadata: map[string]any{"estimated_time": "5-10分钟"},
	}
}

func socialMediaTemplate() *domain.Template {
	return &domain.Template{
		ID:          "social_media_workflow",
		Name:        "社交媒体内容工作流",
		Description: "生成完整的社交媒体内容，包括文案、配图、音乐和发布",
		Version:     "1.0",
		Category:    "social_media",
		Difficulty:  "intermediate",
		Nodes: []domain.Node{
			{
				ID: "input_idea", Type: domain.NodeTypeInput,
				Name: "输入创意", Description: "输入社交媒体内容创意",
				Config:   map[string]any{"input_fields": []string{"idea", "platform", "style"}},
				Position: domain.Position{X: 100, Y: 100},
			},
			{
				ID: "generate_copy", Type: domain.NodeTypeTextGeneration,
				Name: "生成文案", Description: "生成社交媒体文案",
				Config: map[string]any{
					"prompt":      "为{platform}平台创作一个关于'{idea}'的{style}风格文案",
					"max_length":  500,
					"temperature": 0.9,
				},
				Position: domain.Position{X: 300, Y: 100},
			},
			{
				ID: "generate_visual", Type: domain.NodeTypeImageGeneration,
				Name: "生成配图", Description: "生成社交媒体配图",
				Config:   map[string]any{"style": "social_media", "width": 1080, "height": 1080},
				Position: domain.Position{X: 300, Y: 300},
			},
			{
				ID: "generate_music", Type: domain.NodeTypeMusicGeneration,
				Name: "生成背景音乐", Description: "生成背景音乐",
				Config:   map[string]any{"duration": 15, "style": "upbeat"},
				Position: domain.Position{X: 300, Y: 500},
			},
			{
				ID: "analyze_content", Type: domain.NodeTypeContentAnalysis,
				Name: "内容分析", Description: "分析内容特征",
				Config:   map[string]any{},
				Position: domain.Position{X: 500, Y: 200},
			},
			{
				ID: "optimize_for_platform", Type: domain.NodeTypeContentOptimization,
				Name: "平台优化", Description: "针对特定平台优化内容",
				Config:   map[string]any{"platform": "{platform}", "optimization_level": "platform_specific"},
				Position: domain.Position{X: 700, Y: 200},
			},
			{
				ID: "publish_content", Type: domain.NodeTypePlatformPublish,
				Name: "发布内容", Description: "发布到社交媒体平台",
				Config:   map[string]any{"platform": "{platform}", "auto_publish": false},
				Position: domain.Position{X: 900, Y: 200},
			},
		},
		Edges: []domain.Edge{
			{From: "input_idea", To: "generate_copy"},
			{From: "input_idea", To: "generate_visual"},
			{From: "input_idea", To: "generate_music"},
			{From: "generate_copy", To: "analyze_content"},
			{From: "generate_visual", To: "analyze_content"},
			{From: "analyze_content", To: "optimize_for_platform"},
			{From: "optimize_for_platform", To: "publish_content"},
			{From: "generate_music", To: "publish_content"},
		},
		Metadata: map[string]any{"estimated_time": "3-8分钟"},
	}
}

func storyCreationTemplate() *domain.Template {
	return &domain.Template{
		ID:          "story_creation_workflow",
		Name:        "故事创作工作流",
		Description: "完整的故事创作流程，包括角色发展、情节创作、插图和配乐",
		Version:     "1.0",
		Category:    "creative_writing",
		Difficulty:  "advanced",
		Nodes: []domain.Node{
			{
				ID: "input_story_concept", Type: domain.NodeTypeInput,
				Name: "故事概念输入", Description: "输入故事的基本概念",
				Config:   map[string]any{"input_fields": []string{"genre", "main_character", "setting", "conflict"}},
				Position: domain.Position{X: 100, Y: 100},
			},
			{
				ID: "develop_characters", Type: domain.NodeTypeTextGeneration,
				Name: "角色发展", Description: "发展故事角色",
				Config: map[string]any{
					"prompt":      "为{genre}类型的故事发展主角{main_character}的详细背景和性格特征",
					"max_length":  800,
					"temperature": 0.8,
				},
				Position: domain.Position{X: 300, Y: 50},
			},
			{
				ID: "create_plot_outline", Type: domain.NodeTypeTextGeneration,
				Name: "创建情节大纲", Description: "创建故事情节大纲",
				Config: map[string]any{
					"prompt":      "为设定在{setting}的{genre}故事创建详细情节大纲，主要冲突是{conflict}",
					"max_length":  1000,
					"temperature": 0.7,
				},
				Position: domain.Position{X: 300, Y: 150},
			},
			{
				ID: "write_story", Type: domain.NodeTypeTextGeneration,
				Name: "故事写作", Description: "写作完整故事",
				Config: map[string]any{
					"prompt":      "根据角色设定：{text}和情节大纲写一个完整的短篇故事",
					"max_length":  3000,
					"temperature": 0.9,
				},
				Position: domain.Position{X: 500, Y: 100},
			},
			{
				ID: "create_illustrations", Type: domain.NodeTypeImageGeneration,
				Name: "创建插图", Description: "为故事创建插图",
				Config:   map[string]any{"style": "illustration", "width": 768, "height": 1024},
				Position: domain.Position{X: 700, Y: 50},
			},
			{
				ID: "create_soundtrack", Type: domain.NodeTypeMusicGeneration,
				Name: "创建配乐", Description: "为故事创建背景音乐",
				Config:   map[string]any{"duration": 120, "style": "cinematic"},
				Position: domain.Position{X: 700, Y: 150},
			},
			{
				ID: "analyze_story", Type: domain.NodeTypeContentAnalysis,
				Name: "故事分析", Description: "分析故事的主题和情感",
				Config:   map[string]any{"analysis_type": "literary"},
				Position: domain.Position{X: 500, Y: 300},
			},
			{
				ID: "compile_story_package", Type: domain.NodeTypeOutput,
				Name: "整合故事包", Description: "整合完整的故事包",
				Config:   map[string]any{"output_fields": []string{"story_text", "illustrations", "soundtrack", "analysis"}},
				Position: domain.Position{X: 900, Y: 150},
			},
		},
		Edges: []domain.Edge{
			{From: "input_story_concept", To: "develop_characters"},
			{From: "input_story_concept", To: "create_plot_outline"},
			{From: "develop_characters", To: "write_story"},
			{From: "create_plot_outline", To: "write_story"},
			{From: "write_story", To: "create_illustrations"},
			{From: "write_story", To: "create_soundtrack"},
			{From: "write_story", To: "analyze_story"},
			{From: "create_illustrations", To: "compile_story_package"},
			{From: "create_soundtrack", To: "compile_story_package"},
			{From: "analyze_story", To: "compile_story_package"},
		},
		Metadata: map[string]any{"estimated_time": "10-20分钟"},
	}
}

func productMarketingTemplate() *domain.Template {
	return &domain.Template{
		ID:          "product_marketing_workflow",
		Name:        "产品营销工作流",
		Description: "完整的产品营销内容生成和发布流程",
		Version:     "1.0",
		Category:    "marketing",
		Difficulty:  "intermediate",
		Nodes: []domain.Node{
			{
				ID: "input_product_info", Type: domain.NodeTypeInput,
				Name: "产品信息输入", Description: "输入产品基本信息",
				Config:   map[string]any{"input_fields": []string{"product_name", "features", "target_market", "unique_selling_points"}},
				Position: domain.Position{X: 100, Y: 100},
			},
			{
				ID: "market_analysis", Type: domain.NodeTypeTextGeneration,
				Name: "市场分析", Description: "分析目标市场",
				Config: map[string]any{
					"prompt":      "为产品{product_name}分析{target_market}市场，重点关注{unique_selling_points}",
					"max_length":  600,
					"temperature": 0.6,
				},
				Position: domain.Position{X: 300, Y: 50},
			},
			{
				ID: "generate_marketing_copy", Type: domain.NodeTypeTextGeneration,
				Name: "生成营销文案", Description: "生成产品营销文案",
				Config: map[string]any{
					"prompt":      "为{product_name}写一个吸引{target_market}的营销文案，突出{features}和{unique_selling_points}",
					"max_length":  800,
					"temperature": 0.8,
				},
				Position: domain.Position{X: 300, Y: 150},
			},
			{
				ID: "create_product_visuals", Type: domain.NodeTypeImageGeneration,
				Name: "创建产品视觉", Description: "创建产品展示图",
				Config:   map[string]any{"style": "product_photography", "width": 1200, "height": 800},
				Position: domain.Position{X: 500, Y: 50},
			},
			{
				ID: "create_ad_music", Type: domain.NodeTypeMusicGeneration,
				Name: "创建广告音乐", Description: "创建产品广告音乐",
				Config:   map[string]any{"duration": 30, "style": "commercial"},
				Position: domain.Position{X: 500, Y: 150},
			},
			{
				ID: "optimize_marketing_content", Type: domain.NodeTypeContentOptimization,
				Name: "优化营销内容", Description: "优化营销内容",
				Config:   map[string]any{"platform": "marketing", "optimization_level": "conversion_focused"},
				Position: domain.Position{X: 700, Y: 100},
			},
			{
				ID: "multi_platform_publish", Type: domain.NodeTypePlatformPublish,
				Name: "多平台发布", Description: "发布到多个营销平台",
				Config: map[string]any{
					"platform":     "xiaohongshu",
					"platforms":    []string{"xiaohongshu", "weibo", "douyin"},
					"auto_publish": false,
				},
				Position: domain.Position{X: 900, Y: 100},
			},
		},
		Edges: []domain.Edge{
			{From: "input_product_info", To: "market_analysis"},
			{From: "input_product_info", To: "generate_marketing_copy"},
			{From: "input_product_info", To: "create_product_visuals"},
			{From: "generate_marketing_copy", To: "create_ad_music"},
			{From: "market_analysis", To: "optimize_marketing_content"},
			{From: "generate_marketing_copy", To: "optimize_marketing_content"},
			{From: "create_product_visuals", To: "optimize_marketing_content"},
			{From: "create_ad_music", To: "optimize_marketing_content"},
			{From: "optimize_marketing_content", To: "multi_platform_publish"},
		},
		Metadata: map[string]any{"estimated_time": "8-15分钟"},
	}
}
