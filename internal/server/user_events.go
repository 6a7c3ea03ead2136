package server

import (
	"encoding/json"

	"github.com/servihub/servihub/internal/database"
)

type updateUserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type updateLocationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type findNearbyPayload struct {
	Radius float64 `json:"radius"`
}

func (rt *EventRouter) handleJoinUserRoom(c *Client, ev *ClientEvent) *ServerEvent {
	roomId := userRoom(c.user.Id)
	rt.hub.joinRoom(roomId, c)

	return AckOK(ev.Id, map[string]any{"room": roomId})
}

func (rt *EventRouter) handleUpdateUser(c *Client, ev *ClientEvent) *ServerEvent {
	var p updateUserPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.Username == "" && p.Email == "" && p.Phone == "" {
		return ErrValidation(ev.Id, "no fields to update")
	}

	user, err := rt.db.UpdateUser(database.UpdateUserParams{
		UserId:   c.user.Id,
		Username: p.Username,
		Email:    p.Email,
		Phone:    p.Phone,
	})
	if err != nil {
		return rt.repoError(ev.Id, "UpdateUser", "user not found", err)
	}

	rt.hub.BroadcastRoom(userRoom(c.user.Id), Broadcast(EventUserUpdated, user), nil)

	return AckOK(ev.Id, user)
}

func (rt *EventRouter) handleDeleteUser(c *Client, ev *ClientEvent) *ServerEvent {
	if err := rt.db.DeleteUser(c.user.Id); err != nil {
		return rt.repoError(ev.Id, "DeleteUser", "user not found", err)
	}

	rt.hub.BroadcastRoom(userRoom(c.user.Id), Broadcast(EventUserDeleted, map[string]any{
		"userId": c.user.Id,
	}), nil)

	// queue the acknowledgment before the forced disconnect so the
	// write pump can still flush it on its way out
	c.queueEvent(AckOK(ev.Id, map[string]any{"userId": c.user.Id}))
	rt.hub.DisconnectUser(c.user.Id, "account deleted")

	return nil
}

func (rt *EventRouter) handleUpdateLocation(c *Client, ev *ClientEvent) *ServerEvent {
	var p updateLocationPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.Lat == nil || p.Lng == nil {
		return ErrValidation(ev.Id, "lat and lng must be numbers")
	}
	if *p.Lat < -90 || *p.Lat > 90 || *p.Lng < -180 || *p.Lng > 180 {
		return ErrValidation(ev.Id, "coordinates out of range")
	}

	user, err := rt.db.UpdateUserLocation(c.user.Id, *p.Lat, *p.Lng)
	if err != nil {
		return rt.repoError(ev.Id, "UpdateUserLocation", "user not found", err)
	}

	rt.hub.BroadcastRoom(userRoom(c.user.Id), Broadcast(EventLocationUpdated, map[string]any{
		"userId":   c.user.Id,
		"location": user.Location,
	}), nil)

	return AckOK(ev.Id, user)
}

func (rt *EventRouter) handleFindNearbyServices(c *Client, ev *ClientEvent) *ServerEvent {
	var p findNearbyPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.Radius <= 0 {
		return ErrValidation(ev.Id, "radius must be a positive number")
	}

	user, err := rt.db.GetUserById(c.user.Id)
	if err != nil {
		return rt.repoError(ev.Id, "GetUserById", "user not found", err)
	}
	if user.Location == nil {
		return ErrValidation(ev.Id, "no stored location for user")
	}

	services, err := rt.db.ListServicesNear(user.Location.Lat, user.Location.Lng, p.Radius)
	if err != nil {
		return rt.repoError(ev.Id, "ListServicesNear", "", err)
	}

	c.queueEvent(Broadcast(EventNearbyServices, services))

	return AckOK(ev.Id, map[string]any{"count": len(services)})
}
