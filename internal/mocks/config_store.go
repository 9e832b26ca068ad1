package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/smokerelay/smokerelay/internal/model"
)

// ConfigStore is a testify mock of model.ConfigStore.
type ConfigStore struct {
	mock.Mock
}

func (m *ConfigStore) Get(ctx context.Context) (model.Document, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *ConfigStore) Put(ctx context.Context, doc model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
