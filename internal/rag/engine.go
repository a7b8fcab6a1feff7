/**
* Name: 			engine.go
* Description: 		검색 증강 질의/응답 엔진 (OpenAI chat completions)
* Workflow: 		관련 문서 검색 -> 시스템 프롬프트 조립 -> 응답 생성/스트리밍
 */
package rag

import (
	"context"
	"fmt"
	"strings"

	"SupabaseAuthPortal/internal/chat"
	"SupabaseAuthPortal/internal/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

const systemPrompt = "You are an expert on the Streamlit Python library and your job is to answer " +
	"technical questions. Assume that all questions are related to the Streamlit Python library. " +
	"Keep your answers technical and based on facts - do not hallucinate features."

const retrieveTopK = 4

type Engine struct {
	client openai.Client
	index  *Index
}

// 스트리밍 응답 조각. Err은 마지막 조각에만 실린다.
type StreamChunk struct {
	Content string
	Err     error
}

func NewEngine(apiKey string, index *Index, opts ...option.RequestOption) *Engine {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Engine{
		client: openai.NewClient(opts...),
		index:  index,
	}
}

// Answer는 한 번의 질의에 대한 전체 응답을 반환한다.
// question은 검색 질의로만 쓰인다. 히스토리에는 이미 추가되어 있어야 한다.
func (e *Engine) Answer(ctx context.Context, conv *chat.Conversation, question string) (string, error) {
	params, err := e.buildParams(ctx, conv, question)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnswerStream은 응답 토큰을 채널로 흘린다.
// 소비자가 ctx를 취소하면 생성도 함께 중단된다.
func (e *Engine) AnswerStream(ctx context.Context, conv *chat.Conversation, question string) (<-chan StreamChunk, error) {
	params, err := e.buildParams(ctx, conv, question)
	if err != nil {
		return nil, err
	}

	stream := e.client.Chat.Completions.NewStreaming(ctx, *params)

	chunks := make(chan StreamChunk)
	go func() {
		defer close(chunks)
		defer stream.Close()

		for stream.Next() {
			current := stream.Current()
			if len(current.Choices) == 0 {
				continue
			}
			delta := current.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			select {
			case chunks <- StreamChunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case chunks <- StreamChunk{Err: fmt.Errorf("chat stream failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return chunks, nil
}

func (e *Engine) buildParams(ctx context.Context, conv *chat.Conversation, question string) (*openai.ChatCompletionNewParams, error) {
	passages, err := e.index.Retrieve(ctx, question, retrieveTopK)
	if err != nil {
		return nil, err
	}

	prompt := systemPrompt
	if userContext := conv.ContextPrompt(); userContext != "" {
		prompt += "\n\n" + userContext
	}
	if len(passages) > 0 {
		prompt += "\n\nContext from the documentation:\n" + strings.Join(passages, "\n---\n")
	}

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(prompt)}
	for _, msg := range conv.History() {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	settings := conv.Settings
	logger.Log.WithFields(logrus.Fields{
		"model":         settings.Model,
		"temperature":   settings.Temperature,
		"passages":      len(passages),
		"message_count": len(messages),
	}).Debug("Prepared for model call")

	return &openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(settings.Model),
		Messages:    messages,
		Temperature: openai.Float(settings.Temperature),
		TopP:        openai.Float(settings.TopP),
	}, nil
}
