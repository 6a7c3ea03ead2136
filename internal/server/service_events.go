package server

import (
	"encoding/json"

	"github.com/servihub/servihub/internal/database"
	"github.com/servihub/servihub/internal/types"
)

type joinServicePayload struct {
	ServiceId string `json:"serviceId"`
}

type createServicePayload struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       float64         `json:"price"`
	Location    *types.Location `json:"location"`
}

type updateServicePayload struct {
	ServiceId   string  `json:"serviceId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

func (rt *EventRouter) handleJoinServiceRoom(c *Client, ev *ClientEvent) *ServerEvent {
	var p joinServicePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ServiceId == "" {
		return ErrValidation(ev.Id, "serviceId is required")
	}

	if _, err := rt.db.GetServiceById(p.ServiceId); err != nil {
		return rt.repoError(ev.Id, "GetServiceById", "service not found", err)
	}

	roomId := serviceRoom(p.ServiceId)
	rt.hub.joinRoom(roomId, c)

	return AckOK(ev.Id, map[string]any{"room": roomId})
}

func (rt *EventRouter) handleCreateService(c *Client, ev *ClientEvent) *ServerEvent {
	var p createServicePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.Title == "" {
		return ErrValidation(ev.Id, "title is required")
	}
	if p.Category == "" {
		return ErrValidation(ev.Id, "category is required")
	}
	if p.Price < 0 {
		return ErrValidation(ev.Id, "price cannot be negative")
	}

	params := database.CreateServiceParams{
		OwnerId:     c.user.Id,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
	}
	if p.Location != nil {
		params.Lat = &p.Location.Lat
		params.Lng = &p.Location.Lng
	}

	svc, err := rt.db.CreateService(params)
	if err != nil {
		return rt.repoError(ev.Id, "CreateService", "", err)
	}

	// the creator seeds the new service room, and every other connected
	// client hears about the listing so it can discover and subscribe
	roomId := serviceRoom(svc.Id)
	rt.hub.joinRoom(roomId, c)
	rt.hub.BroadcastRoom(roomId, Broadcast(EventNewService, svc), nil)
	rt.hub.BroadcastAll(Broadcast(EventNewServiceBroadcast, svc), c)

	return AckOK(ev.Id, svc)
}

func (rt *EventRouter) handleUpdateService(c *Client, ev *ClientEvent) *ServerEvent {
	var p updateServicePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ServiceId == "" {
		return ErrValidation(ev.Id, "serviceId is required")
	}

	svc, err := rt.db.GetServiceById(p.ServiceId)
	if err != nil {
		return rt.repoError(ev.Id, "GetServiceById", "service not found", err)
	}
	if svc.OwnerId != c.user.Id {
		return ErrForbidden(ev.Id, "only the owner can update a service")
	}

	svc, err = rt.db.UpdateService(database.UpdateServiceParams{
		ServiceId:   p.ServiceId,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
	})
	if err != nil {
		return rt.repoError(ev.Id, "UpdateService", "service not found", err)
	}

	rt.hub.BroadcastRoom(serviceRoom(svc.Id), Broadcast(EventServiceUpdated, svc), nil)

	return AckOK(ev.Id, svc)
}

func (rt *EventRouter) handleDeleteService(c *Client, ev *ClientEvent) *ServerEvent {
	var p joinServicePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ServiceId == "" {
		return ErrValidation(ev.Id, "serviceId is required")
	}

	svc, err := rt.db.GetServiceById(p.ServiceId)
	if err != nil {
		return rt.repoError(ev.Id, "GetServiceById", "service not found", err)
	}
	if svc.OwnerId != c.user.Id {
		return ErrForbidden(ev.Id, "only the owner can delete a service")
	}

	if err := rt.db.DeleteService(p.ServiceId); err != nil {
		return rt.repoError(ev.Id, "DeleteService", "service not found", err)
	}

	roomId := serviceRoom(p.ServiceId)
	rt.hub.BroadcastRoom(roomId, Broadcast(EventServiceDeleted, map[string]any{
		"serviceId": p.ServiceId,
	}), nil)
	rt.hub.dropRoom(roomId)

	return AckOK(ev.Id, map[string]any{"serviceId": p.ServiceId})
}
