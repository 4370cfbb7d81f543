package biz

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/kart-io/logger"

	"github.com/kova-io/estate-x/internal/assistant/extract"
	"github.com/kova-io/estate-x/internal/assistant/metrics"
	"github.com/kova-io/estate-x/internal/assistant/store"
	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/internal/pkg/textutil"
)

// ingestTimeout 限制单个文档后台入库的总耗时。
const ingestTimeout = 10 * time.Minute

// Service 聚合文档生命周期与对话能力，是 handler 层的唯一入口。
type Service struct {
	docs       *store.DocumentStore
	convs      *store.ConversationStore
	files      *store.FileStore
	extractor  *extract.Extractor
	indexer    *Indexer
	engine     *Engine
	summarizer *Summarizer
	classifier *Classifier

	historyWindow int
}

// NewService 创建业务服务。
func NewService(
	docs *store.DocumentStore,
	convs *store.ConversationStore,
	files *store.FileStore,
	extractor *extract.Extractor,
	indexer *Indexer,
	engine *Engine,
	summarizer *Summarizer,
	classifier *Classifier,
	historyWindow int,
) *Service {
	return &Service{
		docs:          docs,
		convs:         convs,
		files:         files,
		extractor:     extractor,
		indexer:       indexer,
		engine:        engine,
		summarizer:    summarizer,
		classifier:    classifier,
		historyWindow: historyWindow,
	}
}

// ChatRequest 一次对话请求。ConversationID 为空时新建会话。
type ChatRequest struct {
	PropertyID     int64
	ConversationID string
	Message        string
}

// ChatResponse 对话响应。
type ChatResponse struct {
	ConversationID string              `json:"conversation_id"`
	Answer         string              `json:"answer"`
	Model          string              `json:"model"`
	Tokens         int                 `json:"tokens"`
	Sources        []model.ChunkSource `json:"sources"`
}

// Chat 处理一轮对话并持久化消息。会话不存在时自动创建，
// 标题取首条消息的前 50 字。
func (s *Service) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	conversationID := req.ConversationID
	var history []model.Message

	if conversationID == "" {
		conversationID = uuid.NewString()
		conv := &model.Conversation{
			ID:         conversationID,
			PropertyID: req.PropertyID,
			Title:      textutil.TruncateRunes(req.Message, 50),
		}
		if err := s.convs.Create(ctx, conv); err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
	} else {
		conv, err := s.convs.Get(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, err)
		}
		if conv.PropertyID != req.PropertyID {
			return nil, fmt.Errorf("conversation %s does not belong to property %d", conversationID, req.PropertyID)
		}
		history, err = s.convs.RecentMessages(ctx, conversationID, s.historyWindow)
		if err != nil {
			return nil, err
		}
	}

	result := s.engine.Chat(ctx, req.PropertyID, req.Message, history)

	// 消息持久化失败不影响已生成的回复，只记日志
	if err := s.convs.AppendMessage(ctx, &model.Message{
		ConversationID: conversationID,
		Role:           model.MessageRoleUser,
		Content:        req.Message,
	}); err != nil {
		logger.Errorw("保存用户消息失败", "conversation_id", conversationID, "error", err)
	}
	if err := s.convs.AppendMessage(ctx, &model.Message{
		ConversationID: conversationID,
		Role:           model.MessageRoleAssistant,
		Content:        result.Content,
		Tokens:         result.Tokens,
	}); err != nil {
		logger.Errorw("保存助手消息失败", "conversation_id", conversationID, "error", err)
	}

	return &ChatResponse{
		ConversationID: conversationID,
		Answer:         result.Content,
		Model:          result.Model,
		Tokens:         result.Tokens,
		Sources:        result.Sources,
	}, nil
}

// ListConversations 列出某小区的会话。
func (s *Service) ListConversations(ctx context.Context, propertyID int64) ([]model.Conversation, error) {
	return s.convs.ListByProperty(ctx, propertyID)
}

// ListMessages 列出会话的全部消息。
func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	return s.convs.ListMessages(ctx, conversationID)
}

// DeleteConversation 删除会话及其消息。
func (s *Service) DeleteConversation(ctx context.Context, conversationID string) error {
	return s.convs.Delete(ctx, conversationID)
}

// UploadDocument 保存上传文件并创建待处理的文档记录，
// 随后异步完成提取、索引、分类与摘要。
func (s *Service) UploadDocument(ctx context.Context, propertyID int64, title, filename string, size int64, r io.Reader) (*model.Document, error) {
	kind := extract.DetectKind(filename)
	if kind == extract.KindUnknown {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedKind, filename)
	}

	storedName, err := s.files.Save(filename, r)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Title:      title,
		FileName:   filename,
		FilePath:   storedName,
		FileSize:   size,
		Category:   model.CategoryOther,
		Status:     model.DocStatusPending,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		_ = s.files.Remove(storedName)
		return nil, err
	}

	go s.ingest(doc.ID)
	return doc, nil
}

// ReindexDocument 重新走一遍提取与索引流程。
func (s *Service) ReindexDocument(ctx context.Context, documentID string) (*model.Document, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, model.DocStatusPending, ""); err != nil {
		return nil, err
	}
	go s.ingest(doc.ID)
	doc.Status = model.DocStatusPending
	return doc, nil
}

// ingest 在后台完成文档入库。所有失败都落到文档状态上，
// 不会让上传请求等待或失败。
func (s *Service) ingest(documentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	m := metrics.Get()

	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		logger.Errorw("入库前查询文档失败", "document_id", documentID, "error", err)
		return
	}

	fail := func(stage string, err error) {
		logger.Errorw("文档入库失败", "document_id", doc.ID, "stage", stage, "error", err)
		m.IncDocumentIndexed(false, 0)
		if uerr := s.docs.UpdateStatus(ctx, doc.ID, model.DocStatusFailed, err.Error()); uerr != nil {
			logger.Errorw("更新失败状态出错", "document_id", doc.ID, "error", uerr)
		}
	}

	if err := s.docs.UpdateStatus(ctx, doc.ID, model.DocStatusProcessing, ""); err != nil {
		logger.Errorw("更新处理中状态出错", "document_id", doc.ID, "error", err)
	}

	text, err := s.extractor.ExtractFile(ctx, s.files.Path(doc.FilePath), extract.DetectKind(doc.FileName))
	if err != nil {
		fail("extract", err)
		return
	}
	if text == "" {
		// 提取成功但没有文本层（如纯扫描件），视为完成但无块
		logger.Warnw("文档无可索引文本", "document_id", doc.ID, "file", doc.FileName)
		if err := s.docs.UpdateIndexed(ctx, doc.ID, 0, model.CategoryOther, ""); err != nil {
			logger.Errorw("更新空文档状态出错", "document_id", doc.ID, "error", err)
		}
		return
	}

	chunks, err := s.indexer.IndexDocument(ctx, doc.PropertyID, doc.ID, doc.Title, text)
	if err != nil {
		fail("index", err)
		return
	}

	// 分类与摘要自带降级，不会阻断入库
	category := s.classifier.Classify(ctx, doc.Title, text)
	summary := s.summarizer.Summarize(ctx, text)

	if err := s.docs.UpdateIndexed(ctx, doc.ID, chunks, category, summary); err != nil {
		fail("finalize", err)
		return
	}

	m.IncDocumentIndexed(true, chunks)
	logger.Infow("文档入库完成", "document_id", doc.ID, "chunks", chunks, "category", category)
}

// GetDocument 查询文档详情。
func (s *Service) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	return s.docs.Get(ctx, documentID)
}

// ListDocuments 列出某小区的文档。
func (s *Service) ListDocuments(ctx context.Context, propertyID int64) ([]model.Document, error) {
	return s.docs.ListByProperty(ctx, propertyID)
}

// DeleteDocument 删除文档：向量块、元数据与原始文件。
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.indexer.DeleteDocument(ctx, doc.PropertyID, doc.ID); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.files.Remove(doc.FilePath); err != nil {
		logger.Warnw("删除原始文件失败", "document_id", doc.ID, "error", err)
	}
	return nil
}

// SummarizeDocument 按需生成并保存文档摘要。
func (s *Service) SummarizeDocument(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.Summary != "" {
		return doc.Summary, nil
	}

	text, err := s.extractor.ExtractFile(ctx, s.files.Path(doc.FilePath), extract.DetectKind(doc.FileName))
	if err != nil {
		return "", err
	}

	summary := s.summarizer.Summarize(ctx, text)
	// 只有已入库的文档才回写摘要，避免覆盖处理中的状态
	if summary != "" && doc.Status == model.DocStatusCompleted {
		if err := s.docs.UpdateIndexed(ctx, doc.ID, doc.ChunkNum, doc.Category, summary); err != nil {
			logger.Warnw("保存摘要失败", "document_id", doc.ID, "error", err)
		}
	}
	return summary, nil
}

// Stats 汇总某小区的文档与索引统计。
func (s *Service) Stats(ctx context.Context, propertyID int64) (*model.PropertyStats, error) {
	stats, err := s.docs.StatsByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.indexer.ChunkCount(ctx, propertyID)
	if err != nil {
		// 向量侧不可用时退化为只报元数据统计
		logger.Warnw("统计向量块数失败", "property_id", propertyID, "error", err)
	} else {
		stats.IndexedChunks = chunks
	}
	return stats, nil
}
