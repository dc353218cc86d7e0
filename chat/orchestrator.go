package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/search"
	"github.com/poiesic/docquery/storage"
)

// Orchestrator runs conversation turns: question in, attributed answer out.
type Orchestrator struct {
	conversationRepository storage.ConversationRepository
	messageRepository      storage.MessageRepository
	searcher               *search.Searcher
	generator              ai.Generator
	titlePool              *ants.Pool
	retrievalLimit         int
	monitor                search.RetrievalMonitor
	logger                 *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithRetrievalLimit sets the number of passages retrieved per question.
// Default is search.DefaultLimit.
func WithRetrievalLimit(limit int) Option {
	return func(o *Orchestrator) error {
		if limit < 1 {
			limit = search.DefaultLimit
		}
		o.retrievalLimit = limit
		return nil
	}
}

// WithRetrievalMonitor sets a monitor that observes each turn's retrieval.
func WithRetrievalMonitor(monitor search.RetrievalMonitor) Option {
	return func(o *Orchestrator) error {
		o.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new conversation orchestrator.
func NewOrchestrator(
	conversationRepository storage.ConversationRepository,
	messageRepository storage.MessageRepository,
	searcher *search.Searcher,
	provider ai.Provider,
	opts ...Option,
) (*Orchestrator, error) {
	if conversationRepository == nil {
		return nil, ErrConversationRepositoryRequired
	}
	if messageRepository == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Titles are rare and tiny; one worker is plenty.
	titlePool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		conversationRepository: conversationRepository,
		messageRepository:      messageRepository,
		searcher:               searcher,
		generator:              provider.Generator(),
		titlePool:              titlePool,
		retrievalLimit:         search.DefaultLimit,
		logger:                 slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// Ask runs one conversation turn. A conversationID of 0 starts a new
// conversation; otherwise the turn is appended to the existing one.
//
// The user message is persisted before anything can fail downstream, so a
// failed generation leaves the question in the transcript. Retrieval failures
// degrade to an answer without context rather than failing the turn.
// Generation failures fail the turn.
//
// After the first completed turn of a conversation, a title is generated
// asynchronously from the question text. Title failures are logged and
// ignored; the conversation simply stays untitled.
func (o *Orchestrator) Ask(ctx context.Context, conversationID core.ID, question string) (*core.Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	conversation, err := o.resolveConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	userMessage, err := o.messageRepository.AddMessage(ctx, &core.Message{
		ConversationId: conversation.Id,
		Role:           core.RoleUser,
		Content:        question,
	})
	if err != nil {
		return nil, err
	}

	retrieved, err := o.searcher.RetrieveWithMonitor(ctx, question, o.retrievalLimit, o.monitor)
	if err != nil {
		o.logger.Error("error retrieving context, answering without it",
			"conversation", conversation.Id, "err", err)
		retrieved = &search.Result{}
	}

	answer, err := o.generator.Generate(ctx, answerSystemPrompt,
		buildAnswerPrompt(question, retrieved.Passages), answerTemperature, answerMaxTokens)
	if err != nil {
		o.logger.Error("error generating answer", "conversation", conversation.Id, "err", err)
		return nil, err
	}

	assistantMessage, err := o.messageRepository.AddMessage(ctx, &core.Message{
		ConversationId: conversation.Id,
		Role:           core.RoleAssistant,
		Content:        answer,
		Sources:        retrieved.Sources,
	})
	if err != nil {
		return nil, err
	}

	o.maybeGenerateTitle(ctx, conversation, question)

	return &core.Exchange{
		Conversation:     conversation,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Sources:          retrieved.Sources,
	}, nil
}

// resolveConversation loads an existing conversation or starts a new one.
func (o *Orchestrator) resolveConversation(ctx context.Context, conversationID core.ID) (*core.Conversation, error) {
	if conversationID == 0 {
		conversation, err := o.conversationRepository.AddConversation(ctx, &core.Conversation{})
		if err != nil {
			return nil, err
		}
		o.logger.Debug("started conversation", "id", conversation.Id)
		return conversation, nil
	}
	return o.conversationRepository.GetConversation(ctx, conversationID)
}

// maybeGenerateTitle schedules title generation after the first completed turn.
func (o *Orchestrator) maybeGenerateTitle(ctx context.Context, conversation *core.Conversation, question string) {
	if conversation.Title != "" {
		return
	}

	count, err := o.messageRepository.CountMessages(ctx, conversation.Id)
	if err != nil {
		o.logger.Warn("error counting messages for title", "conversation", conversation.Id, "err", err)
		return
	}
	if count != 2 {
		return
	}

	o.titlePool.Submit(func() {
		title, err := o.generator.Generate(context.Background(), titleSystemPrompt,
			question, titleTemperature, titleMaxTokens)
		if err != nil {
			o.logger.Warn("error generating conversation title", "conversation", conversation.Id, "err", err)
			return
		}
		title = strings.TrimSpace(title)
		if title == "" {
			title = DefaultTitle
		}

		if err := o.conversationRepository.SetTitle(context.Background(), conversation.Id, title); err != nil {
			o.logger.Warn("error saving conversation title", "conversation", conversation.Id, "err", err)
		}
	})
}

// Release releases resources including the title worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.titlePool != nil {
		o.titlePool.Release()
	}
}
