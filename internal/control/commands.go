// Package control applies remote operator commands to the simulation.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hydrovigil/internal/logger"
)

var controlLog = logger.For("control")

// Command names a remote operator action.
type Command string

const (
	CommandTriggerAttack Command = "trigger_attack"
	CommandReset         Command = "reset"
)

// Outcome is the result of applying a command.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeUnknown  Outcome = "unknown"
	OutcomeInvalid  Outcome = "invalid"
)

// Message is the wire form of a remote command.
type Message struct {
	Command   Command `json:"command"`
	RequestID string  `json:"request_id,omitempty"`
}

// Parse decodes one command message.
func Parse(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode command: %w", err)
	}
	msg.Command = Command(strings.ToLower(strings.TrimSpace(string(msg.Command))))
	if msg.Command == "" {
		return Message{}, fmt.Errorf("command is empty")
	}
	return msg, nil
}

// Commander is the part of the engine remote commands drive.
type Commander interface {
	TriggerAttack() bool
	Reset()
}

// Source yields raw command messages. Pop returns nil when nothing arrived.
type Source interface {
	Pop(ctx context.Context) ([]byte, error)
}

// Observer is told the outcome of every message.
type Observer interface {
	CommandHandled(command string, outcome string)
}

// Loop reads commands from a source and applies them.
type Loop struct {
	source     Source
	commander  Commander
	observer   Observer
	retryDelay time.Duration
}

// NewLoop creates a command loop. observer may be nil.
func NewLoop(source Source, commander Commander, observer Observer) *Loop {
	return &Loop{
		source:     source,
		commander:  commander,
		observer:   observer,
		retryDelay: 500 * time.Millisecond,
	}
}

// Run processes commands until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	controlLog.Infof("Remote command loop started")
	for {
		payload, err := l.source.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			controlLog.Errorf("Failed to pop command: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.retryDelay):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if payload == nil {
			continue
		}
		l.Handle(payload)
	}
}

// Handle applies one raw message.
func (l *Loop) Handle(payload []byte) Outcome {
	msg, err := Parse(payload)
	if err != nil {
		controlLog.Warnf("Skipping command: %v", err)
		l.observe("", OutcomeInvalid)
		return OutcomeInvalid
	}
	out := l.Apply(msg)
	l.observe(msg.Command, out)
	return out
}

// Apply runs a decoded command against the commander.
func (l *Loop) Apply(msg Message) Outcome {
	switch msg.Command {
	case CommandTriggerAttack:
		if l.commander.TriggerAttack() {
			controlLog.Infof("Remote trigger accepted: request=%s", msg.RequestID)
			return OutcomeAccepted
		}
		controlLog.Infof("Remote trigger ignored, attack already active: request=%s", msg.RequestID)
		return OutcomeRejected
	case CommandReset:
		l.commander.Reset()
		controlLog.Infof("Remote reset applied: request=%s", msg.RequestID)
		return OutcomeAccepted
	default:
		controlLog.Warnf("Unknown command %q skipped", msg.Command)
		return OutcomeUnknown
	}
}

func (l *Loop) observe(cmd Command, out Outcome) {
	if l.observer != nil {
		l.observer.CommandHandled(string(cmd), string(out))
	}
}
