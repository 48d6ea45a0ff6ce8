// Package assistant wraps the optional language-model client behind a
// nil-safe service. A missing client disables the feature; client failures
// degrade to an empty answer so the query pipeline falls back to its static
// help text instead of failing the request.
package assistant

import (
	"context"
	"strings"

	"finsight/internal/common"
	"finsight/internal/interfaces"
)

// Service answers free-form questions when a client is configured.
type Service struct {
	client interfaces.AssistantClient
	logger *common.Logger
}

// NewService creates an assistant service. client may be nil.
func NewService(client interfaces.AssistantClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Service{client: client, logger: logger}
}

// Answer returns a free-text answer for question, or "" when the assistant is
// disabled or failing.
func (s *Service) Answer(ctx context.Context, question string) string {
	if s.client == nil {
		return ""
	}

	answer, err := s.client.Answer(ctx, question)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Assistant answer failed")
		return ""
	}

	return strings.TrimSpace(answer)
}

// Enabled reports whether an assistant client is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Ensure Service implements the AssistantService interface
var _ interfaces.AssistantService = (*Service)(nil)
