package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
)

// Engine is the OpenAI-backed policy engine. It generates interview
// questions, grades answers, and writes the final assessment, all through
// strict structured outputs so responses parse deterministically.
type Engine struct {
	client openai.Client
	model  string
}

type EngineOption func(*Engine)

// WithModel overrides the chat model.
func WithModel(model string) EngineOption {
	return func(e *Engine) { e.model = model }
}

// NewEngine builds a policy engine. The API key is read from
// OPENAI_API_KEY by the client library.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		client: openai.NewClient(),
		model:  string(openai.ChatModelGPT4oMini),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineWithAPIKey builds a policy engine with an explicit key.
func NewEngineWithAPIKey(apiKey string, opts ...EngineOption) *Engine {
	e := &Engine{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  string(openai.ChatModelGPT4oMini),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// nextQuestionResponse mirrors the structured output the model returns for a
// next-question request.
type nextQuestionResponse struct {
	NextQuestion   string `json:"nextQuestion" jsonschema_description:"The next interview question, or empty when the interview is complete"`
	IsComplete     bool   `json:"isComplete" jsonschema_description:"True when the interview should end now"`
	ClosingMessage string `json:"closingMessage" jsonschema_description:"Short farewell spoken when the interview ends"`
}

// NextQuestion asks the model for the next interview question given the
// candidate context and exchange history.
func (e *Engine) NextQuestion(ctx context.Context, promptCtx policy.PromptContext) (policy.Question, error) {
	ctx, span := tracer.Start(ctx, "policy next question")
	defer span.End()
	span.SetAttributes(
		attribute.Int("interview.question_index", promptCtx.QuestionIndex),
		attribute.Int("interview.max_questions", promptCtx.MaxQuestions),
	)

	prompt := fmt.Sprintf(
		"CANDIDATE:\n%s\nCONVERSATION SO FAR:\n%s\nThis is question %d of at most %d. "+
			"Decide whether to ask another question or end the interview now.",
		formatCandidate(promptCtx),
		formatHistory(promptCtx.History, 2),
		promptCtx.QuestionIndex+1,
		promptCtx.MaxQuestions,
	)

	parsed, err := promptStructured[nextQuestionResponse](ctx, e, interviewerSystemPrompt, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return policy.Question{}, err
	}

	if parsed.IsComplete {
		return policy.Question{Done: true, ClosingMessage: parsed.ClosingMessage}, nil
	}
	if parsed.NextQuestion == "" {
		err := fmt.Errorf("policy engine returned an empty question")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return policy.Question{}, err
	}

	return policy.Question{
		Text:       stripClarifyTag(parsed.NextQuestion),
		Clarifying: isClarifyingQuestion(parsed.NextQuestion),
	}, nil
}

// Evaluate grades one answer. Failures are tolerated upstream; evaluation is
// best-effort by contract.
func (e *Engine) Evaluate(ctx context.Context, question string, answer string) (policy.Evaluation, error) {
	ctx, span := tracer.Start(ctx, "policy evaluate answer")
	defer span.End()

	prompt := fmt.Sprintf("QUESTION:\n%s\n\nANSWER:\n%s", question, answer)
	parsed, err := promptStructured[policy.Evaluation](ctx, e, evaluatorSystemPrompt, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return policy.Evaluation{}, err
	}

	return *parsed, nil
}

// Summarize produces the overall assessment for the completed exchange log.
func (e *Engine) Summarize(ctx context.Context, promptCtx policy.PromptContext) (policy.Assessment, error) {
	ctx, span := tracer.Start(ctx, "policy summarize interview")
	defer span.End()
	span.SetAttributes(attribute.Int("interview.exchanges", len(promptCtx.History)))

	prompt := fmt.Sprintf(
		"CANDIDATE:\n%s\nFULL TRANSCRIPT:\n%s\nProduce the final assessment.",
		formatCandidate(promptCtx),
		formatFullHistory(promptCtx.History),
	)

	parsed, err := promptStructured[policy.Assessment](ctx, e, assessorSystemPrompt, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return policy.Assessment{}, err
	}

	return *parsed, nil
}

// promptStructured sends one chat completion constrained to the JSON schema
// reflected from T and unmarshals the response into it.
func promptStructured[T any](ctx context.Context, e *Engine, systemPrompt string, prompt string) (*T, error) {
	var output T

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&output)
	outputTypeName := reflect.TypeOf(output).Name()

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   outputTypeName,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error sending completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &output); err != nil {
		return nil, fmt.Errorf("error unmarshalling structured response: %w", err)
	}

	return &output, nil
}
