package domain

type UserID string

// Turn is one user-input / AI-reply pair in a session history.
type Turn struct {
	UserText string
	AIText   string
}

type DestinationKind int

const (
	// DestinationOneShot is a reply handle tied to one inbound event. It is
	// valid for a single use and expires shortly after the event arrives.
	DestinationOneShot DestinationKind = iota + 1
	// DestinationDurable is a push target that can be used repeatedly.
	DestinationDurable
)

func (k DestinationKind) String() string {
	switch k {
	case DestinationOneShot:
		return "one_shot"
	case DestinationDurable:
		return "durable"
	default:
		return "unknown"
	}
}

// Destination says where a reply goes. Build it with OneShot or Durable.
type Destination struct {
	Kind  DestinationKind
	Value string
}

func OneShot(replyToken string) Destination {
	return Destination{Kind: DestinationOneShot, Value: replyToken}
}

func Durable(target string) Destination {
	return Destination{Kind: DestinationDurable, Value: target}
}

func (d Destination) IsOneShot() bool {
	return d.Kind == DestinationOneShot
}

// InboundMessage is what the ingestion layer hands to the gateway once the
// webhook has been authenticated and parsed.
type InboundMessage struct {
	UserID      UserID
	Text        string
	Destination Destination
}
