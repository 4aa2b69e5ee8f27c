// Package interpreter turns a free-text clinical command into a structured
// interpretation using an external text-generation service.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/j-veylop/smart-anesthesia-tui/internal/logger"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

// Completer sends one prompt to a text-generation service and returns the
// generated text.
type Completer interface {
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}

// CredentialFunc returns the API key at call time, empty when none is set.
type CredentialFunc func() string

// Interpreter converts commands into interpretations. It keeps no state
// between calls.
type Interpreter struct {
	completer  Completer
	credential CredentialFunc
}

// New creates an interpreter.
func New(completer Completer, credential CredentialFunc) *Interpreter {
	return &Interpreter{
		completer:  completer,
		credential: credential,
	}
}

// Interpret sends exactly one completion request for command and parses the
// reply. Every failure, including a panic inside the completer, is returned
// as an *Error.
func (i *Interpreter) Interpret(ctx context.Context, command string) (interp models.Interpretation, err error) {
	apiKey := ""
	if i.credential != nil {
		apiKey = strings.TrimSpace(i.credential())
	}
	if apiKey == "" {
		return nil, newError(KindMissingCredential, nil)
	}

	prompt, err := BuildPrompt(command)
	if err != nil {
		return nil, newError(KindServiceCallFailed, fmt.Errorf("failed to build prompt: %w", err))
	}

	text, err := i.complete(ctx, apiKey, prompt)
	if err != nil {
		return nil, newError(KindServiceCallFailed, err)
	}

	interp, err = Parse(text)
	if err != nil {
		logger.Debug("unparseable completion", "text", text)
		return nil, newError(KindMalformedResponse, err)
	}

	return interp, nil
}

func (i *Interpreter) complete(ctx context.Context, apiKey, prompt string) (text string, err error) {
	if i.completer == nil {
		return "", errors.New("no completer configured")
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("completer panicked", "panic", r)
			err = fmt.Errorf("completer panicked: %v", r)
		}
	}()

	return i.completer.Complete(ctx, apiKey, prompt)
}

// StripCodeFences trims text and removes a leading ``` fence, with an
// optional language tag such as json, and a trailing ``` fence.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = text[3:]
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			tag := strings.TrimSpace(text[:nl])
			if tag == "" || !strings.ContainsAny(tag, "{[\"") {
				text = text[nl+1:]
			}
		} else {
			text = strings.TrimLeft(text, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

// Parse strips code fences from text and decodes it as a JSON object.
// Arrays, scalars and invalid JSON are rejected.
func Parse(text string) (models.Interpretation, error) {
	cleaned := StripCodeFences(text)
	if cleaned == "" {
		return nil, errors.New("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", raw)
	}

	return models.Interpretation(obj), nil
}
