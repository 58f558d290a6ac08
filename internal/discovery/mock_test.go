package discovery

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/matchbox-ai/outreach-cli/pkg/instagram"
)

// --- LLM Mock ---

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Chat(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// --- Instagram Mock ---

type mockSearch struct {
	mock.Mock
}

func (m *mockSearch) SearchHashtags(ctx context.Context, query string) ([]string, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockSearch) PostsByHashtag(ctx context.Context, hashtag string) ([]instagram.Post, error) {
	args := m.Called(ctx, hashtag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]instagram.Post), args.Error(1)
}

func (m *mockSearch) UserInfo(ctx context.Context, userID string) (*instagram.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*instagram.Profile), args.Error(1)
}
