package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds one remote classification call.
const DefaultTimeout = 8 * time.Second

// ErrNoAPIKey is returned by providers that have no credential.
var ErrNoAPIKey = errors.New("llm: api key not configured")

// Provider classifies one application through a language model.
type Provider interface {
	// ClassifyApp returns the raw, untrusted model reply.
	ClassifyApp(ctx context.Context, req ClassifyRequest) (string, error)
	// Available reports whether the provider is configured to make calls.
	Available() bool
	Name() string
}

// ClassifyRequest is everything sent to the model for one application.
type ClassifyRequest struct {
	Instruction string   `json:"instruction"`
	Labels      []string `json:"labels"`
	AppName     string   `json:"app_name"`
	AppID       string   `json:"app_id"`
}

// Instruction is the fixed system instruction for classification.
const Instruction = "You sort desktop applications into categories. Choose exactly one of the fixed category labels and reply with that label only, with no punctuation or explanation."

// MaxFieldRunes caps the app name and identifier placed in a prompt.
const MaxFieldRunes = 256

// NewClassifyRequest fills the fixed parts of a request. Name and id are
// clipped to MaxFieldRunes.
func NewClassifyRequest(labels []string, name, id string) ClassifyRequest {
	return ClassifyRequest{
		Instruction: Instruction,
		Labels:      labels,
		AppName:     clip(name, MaxFieldRunes),
		AppID:       clip(id, MaxFieldRunes),
	}
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Prompt renders the user message for req.
func (r ClassifyRequest) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(r.Labels, ", "))
	fmt.Fprintf(&b, "App name: %s\n", clip(r.AppName, MaxFieldRunes))
	fmt.Fprintf(&b, "Bundle ID: %s\n", clip(r.AppID, MaxFieldRunes))
	b.WriteString("\nRespond with the category label only.")
	return b.String()
}

// Disabled is the provider used when no remote endpoint is configured.
type Disabled struct{}

func (Disabled) ClassifyApp(context.Context, ClassifyRequest) (string, error) {
	return "", ErrNoAPIKey
}

func (Disabled) Available() bool { return false }

func (Disabled) Name() string { return "none" }
