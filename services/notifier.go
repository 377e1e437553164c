package services

// Event tells connected clients that a user's data changed and their
// statistics should be fetched again.
type Event struct {
	Kind     string `json:"kind"`
	Resource string `json:"resource"`
	ID       string `json:"id,omitempty"`
}

const KindStatsInvalidated = "stats.invalidated"

// Notifier fans events out to a user's live connections.
type Notifier interface {
	Publish(userID string, ev Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, Event) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func invalidated(resource, id string) Event {
	return Event{Kind: KindStatsInvalidated, Resource: resource, ID: id}
}
