package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/smokerelay/smokerelay/internal/model"
)

// MessageSender is a testify mock of service.MessageSender.
type MessageSender struct {
	mock.Mock
}

func (m *MessageSender) SendText(ctx context.Context, text, recipientID string, forceRawID bool) (*model.PlatformResponse, error) {
	args := m.Called(ctx, text, recipientID, forceRawID)
	var resp *model.PlatformResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*model.PlatformResponse)
	}
	return resp, args.Error(1)
}

func (m *MessageSender) SendQuickReply(ctx context.Context, text string, options []string, recipientID string, forceRawID bool) (*model.PlatformResponse, error) {
	args := m.Called(ctx, text, options, recipientID, forceRawID)
	var resp *model.PlatformResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*model.PlatformResponse)
	}
	return resp, args.Error(1)
}

func (m *MessageSender) SendTokenRequest(ctx context.Context, recipientID string) (*model.PlatformResponse, error) {
	args := m.Called(ctx, recipientID)
	var resp *model.PlatformResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*model.PlatformResponse)
	}
	return resp, args.Error(1)
}
