/**
* Name: 			rules.go
* Description: 		키워드 기반 메모리 디스패처
* Workflow: 		규칙을 순서대로 평가, 첫 매칭 규칙이 응답 (first match wins)
 */
package chat

import (
	"fmt"
	"strings"
)

// (패턴, 추출기, 응답기) 튜플. 평가 순서가 곧 계약이다.
type rule struct {
	patterns []string
	respond  func(c *Conversation, remainder string) string
}

// 대소문자 무시 부분 문자열 매칭. 토큰화/신뢰도 점수 없음.
// 순서 민감: 앞 규칙이 뒤 규칙 입력을 가릴 수 있다 ("where am i from"은 2번 규칙에 잡힌다).
var rules = []rule{
	{
		patterns: []string{"my name is"},
		respond: func(c *Conversation, remainder string) string {
			c.Context.Name = remainder
			return fmt.Sprintf("Nice to meet you, %s! I'll remember your name.", remainder)
		},
	},
	{
		patterns: []string{"live in", "from"},
		respond: func(c *Conversation, remainder string) string {
			c.Context.Location = remainder
			return fmt.Sprintf("Got it, I'll remember that you're from %s.", remainder)
		},
	},
	{
		patterns: []string{"what's my name", "what is my name"},
		respond: func(c *Conversation, _ string) string {
			if c.Context.Name == "" {
				return "I don't know your name yet. You can tell me by saying \"my name is ...\"."
			}
			return fmt.Sprintf("Your name is %s.", c.Context.Name)
		},
	},
	{
		patterns: []string{"where do i live", "where am i from"},
		respond: func(c *Conversation, _ string) string {
			if c.Context.Location == "" {
				return "I don't know where you live yet."
			}
			return fmt.Sprintf("You told me you live in %s.", c.Context.Location)
		},
	},
	{
		patterns: []string{"tell me about yourself"},
		respond: func(c *Conversation, _ string) string {
			return "I'm a chat assistant for the Streamlit documentation. I answer technical questions about the library, and I remember small details you share with me during our conversation."
		},
	},
	{
		patterns: []string{"i like", "my favorite"},
		respond: func(c *Conversation, remainder string) string {
			c.Context.Preferences = append(c.Context.Preferences, remainder)
			return "Good to know! I'll remember that."
		},
	},
}

// Dispatch는 메시지를 규칙 목록에 차례로 대본다.
// 매칭되면 (응답, true)를 반환하고 LLM은 호출되지 않는다.
func Dispatch(c *Conversation, message string) (string, bool) {
	for _, r := range rules {
		for _, pattern := range r.patterns {
			idx := indexFold(message, pattern)
			if idx < 0 {
				continue
			}
			remainder := extractRemainder(message, idx+len(pattern))

			c.mu.Lock()
			reply := r.respond(c, remainder)
			c.mu.Unlock()
			return reply, true
		}
	}
	return "", false
}

// indexFold는 pattern과 대소문자 무시로 일치하는 첫 바이트 위치를 찾는다.
// 매칭과 절단을 같은 문자열에서 하므로 소문자화로 바이트 길이가 변하는
// 입력("İ" 등)에도 오프셋이 어긋나지 않는다.
func indexFold(message, pattern string) int {
	for i := 0; i+len(pattern) <= len(message); i++ {
		if strings.EqualFold(message[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

// 매칭 문구 뒷부분을 원문 표기 그대로 잘라낸다.
func extractRemainder(message string, offset int) string {
	return strings.Trim(message[offset:], " \t.,!?")
}
