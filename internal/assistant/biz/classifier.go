package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/internal/pkg/textutil"
	"github.com/kova-io/estate-x/pkg/llm"
)

const (
	classifyContentLimit = 500
	classifyTemperature  = 0.3
	classifyMaxTokens    = 20
)

// categoryLabels 是提示词里展示给模型的分类说明。
var categoryLabels = map[string]string{
	model.CategoryRegulation:  "物业规章制度",
	model.CategoryNotice:      "通知公告",
	model.CategoryMaintenance: "维修记录",
	model.CategoryMeeting:     "会议记录",
	model.CategoryContract:    "合同协议",
	model.CategoryFinancial:   "财务报表",
	model.CategoryComplaint:   "投诉记录",
	model.CategoryFacility:    "设施设备",
	model.CategorySafety:      "安全管理",
	model.CategoryOther:       "其他",
}

// Classifier 把文档归入封闭的分类集合。
type Classifier struct {
	chat llm.ChatProvider
}

// NewClassifier 创建分类器。
func NewClassifier(chat llm.ChatProvider) *Classifier {
	return &Classifier{chat: chat}
}

// Classify 根据标题和内容给文档分类。内容截断到 500 字；
// 模型输出不在分类集合内或调用失败时，归入 other。
func (c *Classifier) Classify(ctx context.Context, title, content string) string {
	var sb strings.Builder
	for _, code := range model.Categories {
		sb.WriteString(fmt.Sprintf("%s: %s\n", code, categoryLabels[code]))
	}
	systemPrompt := fmt.Sprintf(
		"你是一个文档分类助手。请根据文档标题和内容,选择最合适的分类。\n\n可选分类:\n%s\n只需返回分类的英文代码(如:regulation)。",
		sb.String())

	resp, err := c.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("标题: %s\n内容: %s", title, textutil.TruncateRunes(content, classifyContentLimit))},
	},
		llm.WithTemperature(classifyTemperature),
		llm.WithMaxTokens(classifyMaxTokens))
	if err != nil {
		logger.Warnw("文档分类失败，归入 other", "title", title, "error", err)
		return model.CategoryOther
	}

	category := strings.ToLower(strings.TrimSpace(resp.Content))
	if model.IsValidCategory(category) {
		return category
	}
	return model.CategoryOther
}
