package database

import (
	"github.com/servihub/servihub/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockMarketRepository) GetUserById(id string) (types.User, error) {
	args := m.Called(id)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockMarketRepository) UpdateUser(params UpdateUserParams) (types.User, error) {
	args := m.Called(params)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockMarketRepository) DeleteUser(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockMarketRepository) UpdateUserLocation(userId string, lat, lng float64) (types.User, error) {
	args := m.Called(userId, lat, lng)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockMarketRepository) CreateService(params CreateServiceParams) (types.Service, error) {
	args := m.Called(params)
	return args.Get(0).(types.Service), args.Error(1)
}
func (m *MockMarketRepository) GetServiceById(id string) (types.Service, error) {
	args := m.Called(id)
	return args.Get(0).(types.Service), args.Error(1)
}
func (m *MockMarketRepository) UpdateService(params UpdateServiceParams) (types.Service, error) {
	args := m.Called(params)
	return args.Get(0).(types.Service), args.Error(1)
}
func (m *MockMarketRepository) DeleteService(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockMarketRepository) ListServicesNear(lat, lng, radiusKm float64) ([]types.Service, error) {
	args := m.Called(lat, lng, radiusKm)
	return args.Get(0).([]types.Service), args.Error(1)
}
func (m *MockMarketRepository) CreateMessage(params CreateMessageParams) (types.ChatMessage, error) {
	args := m.Called(params)
	return args.Get(0).(types.ChatMessage), args.Error(1)
}
func (m *MockMarketRepository) GetMessageById(id string) (types.ChatMessage, error) {
	args := m.Called(id)
	return args.Get(0).(types.ChatMessage), args.Error(1)
}
func (m *MockMarketRepository) MarkMessageRead(id string) (types.ChatMessage, error) {
	args := m.Called(id)
	return args.Get(0).(types.ChatMessage), args.Error(1)
}
func (m *MockMarketRepository) CreateReview(params CreateReviewParams) (types.Review, error) {
	args := m.Called(params)
	return args.Get(0).(types.Review), args.Error(1)
}
func (m *MockMarketRepository) GetReviewById(id string) (types.Review, error) {
	args := m.Called(id)
	return args.Get(0).(types.Review), args.Error(1)
}
func (m *MockMarketRepository) UpdateReview(params UpdateReviewParams) (types.Review, error) {
	args := m.Called(params)
	return args.Get(0).(types.Review), args.Error(1)
}
func (m *MockMarketRepository) DeleteReview(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockMarketRepository) CreateContact(params CreateContactParams) (types.Contact, error) {
	args := m.Called(params)
	return args.Get(0).(types.Contact), args.Error(1)
}
