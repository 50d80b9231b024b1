package chat_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

type apiError struct{ code int }

func (e apiError) Error() string { return "api error" }
func (e apiError) HTTPCode() int { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want chat.Kind
	}{
		{name: "nil", err: nil, want: chat.KindUnclassified},
		{name: "typed", err: fmt.Errorf("wrapped: %w", &chat.Error{Kind: chat.KindRateLimited}), want: chat.KindRateLimited},
		{name: "googleapi 401", err: fmt.Errorf("send: %w", &googleapi.Error{Code: 401}), want: chat.KindAuthRejected},
		{name: "googleapi 500", err: &googleapi.Error{Code: 500}, want: chat.KindUnclassified},
		{name: "http coder 429", err: apiError{code: 429}, want: chat.KindRateLimited},
		{name: "deadline", err: fmt.Errorf("generate: %w", context.DeadlineExceeded), want: chat.KindTimeout},
		{name: "url error", err: &url.Error{Op: "Post", URL: "https://example.com", Err: errors.New("no such host")}, want: chat.KindNetworkFailure},
		{name: "network text", err: errors.New("network is unreachable"), want: chat.KindNetworkFailure},
		{name: "timeout text", err: errors.New("upstream timeout"), want: chat.KindTimeout},
		{name: "unknown", err: errors.New("boom"), want: chat.KindUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chat.Classify(tt.err))
		})
	}
}

func TestKindMessagesAreDistinct(t *testing.T) {
	kinds := []chat.Kind{
		chat.KindMissingCredential, chat.KindUninitializedContext, chat.KindTimeout,
		chat.KindAuthRejected, chat.KindRateLimited, chat.KindNetworkFailure, chat.KindUnclassified,
	}
	seen := map[string]chat.Kind{}
	for _, k := range kinds {
		msg := k.Message()
		assert.NotEmpty(t, msg)
		_, dup := seen[msg]
		assert.False(t, dup, "duplicate message for %s", k)
		seen[msg] = k
	}
}
