// Package notify defines the outbound notification collaborator used by
// the realtime layer. Push delivery and email rendering are owned by
// external systems; this package only models the dispatch call.
package notify

import (
	"log"

	"github.com/servihub/servihub/internal/types"
)

type Dispatcher interface {
	// PushNewMessage notifies a recipient with no live connection that
	// a chat message is waiting for them.
	PushNewMessage(recipientId string, msg types.ChatMessage) error
	// EmailContactReceived acknowledges a contact form submission.
	EmailContactReceived(contact types.Contact) error
}

// LogDispatcher writes notifications to the process log. It stands in
// for the real push/email providers in development and tests.
type LogDispatcher struct {
	log *log.Logger
}

func NewLogDispatcher(logger *log.Logger) *LogDispatcher {
	return &LogDispatcher{log: logger}
}

func (d *LogDispatcher) PushNewMessage(recipientId string, msg types.ChatMessage) error {
	d.log.Printf("push: new message %q for offline user %q", msg.Id, recipientId)
	return nil
}

func (d *LogDispatcher) EmailContactReceived(contact types.Contact) error {
	d.log.Printf("email: contact %q received from user %q", contact.Id, contact.UserId)
	return nil
}
