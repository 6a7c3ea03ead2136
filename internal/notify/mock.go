package notify

import (
	"github.com/servihub/servihub/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) PushNewMessage(recipientId string, msg types.ChatMessage) error {
	args := m.Called(recipientId, msg)
	return args.Error(0)
}
func (m *MockDispatcher) EmailContactReceived(contact types.Contact) error {
	args := m.Called(contact)
	return args.Error(0)
}
