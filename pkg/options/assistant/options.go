// Package assistant provides the document-assistant domain configuration.
package assistant

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kova-io/estate-x/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// DefaultPersona 是默认系统人设：小区物业的智能管家。
const DefaultPersona = `你是一个专业的物业管理AI助手,名字叫"小管家"。你的职责是:

1. 友好、专业地回答业主关于物业服务的各种问题
2. 提供准确的物业规定、流程和服务信息
3. 协助处理报修、投诉、咨询等事务
4. 如果不确定答案,诚实地告知并建议联系物业人员

回答要求:
- 使用礼貌、专业的语言
- 回答简洁明了,重点突出
- 如果有相关文档信息,优先基于文档回答
- 对于需要人工处理的事务,主动引导用户联系物业`

// Vector store backends.
const (
	VectorStoreMilvus = "milvus"
	VectorStoreMemory = "memory"
)

// Options contains assistant domain configuration.
type Options struct {
	// VectorStore selects the vector backend (milvus|memory).
	VectorStore string `json:"vector-store" mapstructure:"vector-store"`

	// ChunkSize is the chunk window size in runes.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// TopK is the number of chunks retrieved per query.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// ScoreThreshold filters retrieved chunks below this similarity.
	ScoreThreshold float64 `json:"score-threshold" mapstructure:"score-threshold"`

	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// HistoryWindow is how many past messages are replayed into the prompt.
	HistoryWindow int `json:"history-window" mapstructure:"history-window"`

	// Persona is the system prompt persona.
	Persona string `json:"persona" mapstructure:"persona"`

	// CollectionPrefix prefixes per-tenant collection names.
	CollectionPrefix string `json:"collection-prefix" mapstructure:"collection-prefix"`

	// UploadDir is the local directory for uploaded document files.
	UploadDir string `json:"upload-dir" mapstructure:"upload-dir"`

	// OCRLanguages is passed to tesseract -l.
	OCRLanguages string `json:"ocr-languages" mapstructure:"ocr-languages"`

	// TesseractPath overrides the tesseract binary location.
	TesseractPath string `json:"tesseract-path" mapstructure:"tesseract-path"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		VectorStore:      VectorStoreMilvus,
		ChunkSize:        500,
		TopK:             5,
		ScoreThreshold:   0.5,
		EmbeddingDim:     384,
		HistoryWindow:    10,
		Persona:          DefaultPersona,
		CollectionPrefix: "property_docs_",
		UploadDir:        "./data/uploads",
		OCRLanguages:     "chi_sim+eng",
		TesseractPath:    "tesseract",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.VectorStore, options.Join(prefixes...)+"assistant.vector-store", o.VectorStore, "Vector store backend (milvus|memory).")
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"assistant.chunk-size", o.ChunkSize, "Chunk window size in runes.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"assistant.top-k", o.TopK, "Number of chunks retrieved per query.")
	fs.Float64Var(&o.ScoreThreshold, options.Join(prefixes...)+"assistant.score-threshold", o.ScoreThreshold, "Minimum similarity score for retrieved chunks.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"assistant.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.HistoryWindow, options.Join(prefixes...)+"assistant.history-window", o.HistoryWindow, "Past messages replayed into the prompt.")
	fs.StringVar(&o.Persona, options.Join(prefixes...)+"assistant.persona", o.Persona, "System prompt persona.")
	fs.StringVar(&o.CollectionPrefix, options.Join(prefixes...)+"assistant.collection-prefix", o.CollectionPrefix, "Prefix for per-tenant collection names.")
	fs.StringVar(&o.UploadDir, options.Join(prefixes...)+"assistant.upload-dir", o.UploadDir, "Local directory for uploaded files.")
	fs.StringVar(&o.OCRLanguages, options.Join(prefixes...)+"assistant.ocr-languages", o.OCRLanguages, "Languages passed to tesseract -l.")
	fs.StringVar(&o.TesseractPath, options.Join(prefixes...)+"assistant.tesseract-path", o.TesseractPath, "Path to the tesseract binary.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.VectorStore != VectorStoreMilvus && o.VectorStore != VectorStoreMemory {
		errs = append(errs, fmt.Errorf("assistant vector-store must be milvus or memory"))
	}
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("assistant chunk-size must be positive"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("assistant top-k must be positive"))
	}
	if o.ScoreThreshold < 0 || o.ScoreThreshold > 1 {
		errs = append(errs, fmt.Errorf("assistant score-threshold must be in [0, 1]"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("assistant embedding-dim must be positive"))
	}
	if o.HistoryWindow < 0 {
		errs = append(errs, fmt.Errorf("assistant history-window cannot be negative"))
	}
	if o.UploadDir == "" {
		errs = append(errs, fmt.Errorf("assistant upload-dir is required"))
	}
	return errs
}
