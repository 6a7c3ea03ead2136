package server

import (
	"encoding/json"

	"github.com/servihub/servihub/internal/database"
)

type joinReviewPayload struct {
	ServiceId string `json:"serviceId"`
}

type createReviewPayload struct {
	ServiceId string `json:"serviceId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type updateReviewPayload struct {
	ReviewId string `json:"reviewId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type deleteReviewPayload struct {
	ReviewId string `json:"reviewId"`
}

func (rt *EventRouter) handleJoinReviewRoom(c *Client, ev *ClientEvent) *ServerEvent {
	var p joinReviewPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ServiceId == "" {
		return ErrValidation(ev.Id, "serviceId is required")
	}

	if _, err := rt.db.GetServiceById(p.ServiceId); err != nil {
		return rt.repoError(ev.Id, "GetServiceById", "service not found", err)
	}

	roomId := reviewRoom(p.ServiceId)
	rt.hub.joinRoom(roomId, c)

	return AckOK(ev.Id, map[string]any{"room": roomId})
}

func (rt *EventRouter) handleCreateReview(c *Client, ev *ClientEvent) *ServerEvent {
	var p createReviewPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ServiceId == "" {
		return ErrValidation(ev.Id, "serviceId is required")
	}
	if p.Rating < 1 || p.Rating > 5 {
		return ErrValidation(ev.Id, "rating must be between 1 and 5")
	}

	if _, err := rt.db.GetServiceById(p.ServiceId); err != nil {
		return rt.repoError(ev.Id, "GetServiceById", "service not found", err)
	}

	review, err := rt.db.CreateReview(database.CreateReviewParams{
		ServiceId: p.ServiceId,
		AuthorId:  c.user.Id,
		Rating:    p.Rating,
		Comment:   p.Comment,
	})
	if err != nil {
		return rt.repoError(ev.Id, "CreateReview", "", err)
	}

	rt.hub.BroadcastRoom(reviewRoom(p.ServiceId), Broadcast(EventNewReview, review), nil)

	return AckOK(ev.Id, review)
}

func (rt *EventRouter) handleUpdateReview(c *Client, ev *ClientEvent) *ServerEvent {
	var p updateReviewPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ReviewId == "" {
		return ErrValidation(ev.Id, "reviewId is required")
	}
	if p.Rating != 0 && (p.Rating < 1 || p.Rating > 5) {
		return ErrValidation(ev.Id, "rating must be between 1 and 5")
	}

	review, err := rt.db.GetReviewById(p.ReviewId)
	if err != nil {
		return rt.repoError(ev.Id, "GetReviewById", "review not found", err)
	}
	if review.AuthorId != c.user.Id {
		return ErrForbidden(ev.Id, "only the author can update a review")
	}

	review, err = rt.db.UpdateReview(database.UpdateReviewParams{
		ReviewId: p.ReviewId,
		Rating:   p.Rating,
		Comment:  p.Comment,
	})
	if err != nil {
		return rt.repoError(ev.Id, "UpdateReview", "review not found", err)
	}

	rt.hub.BroadcastRoom(reviewRoom(review.ServiceId), Broadcast(EventReviewUpdated, review), nil)

	return AckOK(ev.Id, review)
}

func (rt *EventRouter) handleDeleteReview(c *Client, ev *ClientEvent) *ServerEvent {
	var p deleteReviewPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.ReviewId == "" {
		return ErrValidation(ev.Id, "reviewId is required")
	}

	review, err := rt.db.GetReviewById(p.ReviewId)
	if err != nil {
		return rt.repoError(ev.Id, "GetReviewById", "review not found", err)
	}
	if review.AuthorId != c.user.Id {
		return ErrForbidden(ev.Id, "only the author can delete a review")
	}

	if err := rt.db.DeleteReview(p.ReviewId); err != nil {
		return rt.repoError(ev.Id, "DeleteReview", "review not found", err)
	}

	rt.hub.BroadcastRoom(reviewRoom(review.ServiceId), Broadcast(EventReviewDeleted, map[string]any{
		"reviewId":  review.Id,
		"serviceId": review.ServiceId,
	}), nil)

	return AckOK(ev.Id, map[string]any{"reviewId": review.Id})
}
