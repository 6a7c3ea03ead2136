package database

import (
	"github.com/servihub/servihub/internal/types"
)

// MarketRepository is the persistence collaborator consumed by the
// realtime layer. Implementations own all marketplace records; the
// realtime layer never caches or persists domain data itself.
type MarketRepository interface {
	Ping() error

	GetUserById(id string) (types.User, error)
	UpdateUser(params UpdateUserParams) (types.User, error)
	DeleteUser(id string) error
	UpdateUserLocation(userId string, lat, lng float64) (types.User, error)

	CreateService(params CreateServiceParams) (types.Service, error)
	GetServiceById(id string) (types.Service, error)
	UpdateService(params UpdateServiceParams) (types.Service, error)
	DeleteService(id string) error
	ListServicesNear(lat, lng, radiusKm float64) ([]types.Service, error)

	CreateMessage(params CreateMessageParams) (types.ChatMessage, error)
	GetMessageById(id string) (types.ChatMessage, error)
	MarkMessageRead(id string) (types.ChatMessage, error)

	CreateReview(params CreateReviewParams) (types.Review, error)
	GetReviewById(id string) (types.Review, error)
	UpdateReview(params UpdateReviewParams) (types.Review, error)
	DeleteReview(id string) error

	CreateContact(params CreateContactParams) (types.Contact, error)
}
