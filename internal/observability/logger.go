package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeRequest     EventType = "request"
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeDelivery    EventType = "delivery"
	EventTypeFailure     EventType = "failure"
	EventTypeCost        EventType = "cost"
	EventTypeHeartbeat   EventType = "heartbeat"
	EventTypeLLM         EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		out:        os.Stdout,
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// NewLoggerTo writes events to out and LLM transcripts under dir.
func NewLoggerTo(out io.Writer, dir string) *Logger {
	l := NewLogger()
	l.out = out
	l.llmLogPath = filepath.Join(dir, "llm.jsonl")
	return l
}

// Log emits a structured JSON event. A nil Logger drops it.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		data = []byte(fmt.Sprintf("{\"error\": \"failed to marshal event: %v\"}", err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogRequest(chatID, requestID, command, provider, problem string) {
	l.Log(Event{
		Type:      EventTypeRequest,
		ChatID:    chatID,
		RequestID: requestID,
		Data: map[string]string{
			"command":  command,
			"provider": provider,
			"problem":  problem,
		},
	})
}

func (l *Logger) LogPlan(chatID, requestID string, steps int, finalVariable string) {
	l.Log(Event{
		Type:      EventTypePlan,
		ChatID:    chatID,
		RequestID: requestID,
		Data: map[string]any{
			"steps":          steps,
			"final_variable": finalVariable,
		},
	})
}

func (l *Logger) LogStep(chatID, requestID string, index int, formula, target string, result float64) {
	l.Log(Event{
		Type:      EventTypeStep,
		ChatID:    chatID,
		RequestID: requestID,
		Data: map[string]any{
			"index":   index,
			"formula": formula,
			"target":  target,
			"result":  result,
		},
	})
}

func (l *Logger) LogPolicy(chatID, requestID, effect, reason string) {
	l.Log(Event{
		Type:      EventTypePolicyCheck,
		ChatID:    chatID,
		RequestID: requestID,
		Data:      map[string]string{"effect": effect, "reason": reason},
	})
}

func (l *Logger) LogDelivery(chatID, requestID, kind string, bytes int) {
	l.Log(Event{
		Type:      EventTypeDelivery,
		ChatID:    chatID,
		RequestID: requestID,
		Data:      map[string]any{"kind": kind, "bytes": bytes},
	})
}

func (l *Logger) LogFailure(chatID, requestID, stage string, err error) {
	l.Log(Event{
		Type:      EventTypeFailure,
		ChatID:    chatID,
		RequestID: requestID,
		Data:      map[string]string{"stage": stage, "error": err.Error()},
	})
}

func (l *Logger) LogCost(chatID, requestID string, promptTokens, completionTokens int, model string) {
	l.Log(Event{
		Type:      EventTypeCost,
		ChatID:    chatID,
		RequestID: requestID,
		Data: map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
			"model":             model,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(chatID, requestID, provider string, prompt any, response string) {
	l.Log(Event{
		Type:      EventTypeLLM,
		ChatID:    chatID,
		RequestID: requestID,
		Data: map[string]any{
			"provider": provider,
			"prompt":   prompt,
			"response": response,
		},
	})
}
