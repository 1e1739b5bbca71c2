package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted during orchestration.
type EventType string

const (
	EventTaskAnalyzed   EventType = "task.analyzed"
	EventPlanCreated    EventType = "plan.created"
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventSkillStarted   EventType = "skill.started"
	EventSkillCompleted EventType = "skill.completed"
	EventTaskLearned    EventType = "task.learned"
	EventTaskDone       EventType = "task.done"
)

// Event captures a semantic orchestration event.
type Event struct {
	Type      EventType
	TaskID    string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter is the default no-op implementation.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// NewEvent builds an event with the current timestamp.
func NewEvent(eventType EventType, taskID string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
