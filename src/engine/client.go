package engine

// Client identifies the beneficial owner of a request: the member firm and,
// optionally, the firm's own client reference. Two clients with the same
// firm and no firm client id are the same beneficial owner.
type Client struct {
	FirmID       string  `json:"firmId"`
	FirmClientID *string `json:"firmClientId,omitempty"`
}

func (c Client) Equals(other Client) bool {
	if c.FirmID != other.FirmID {
		return false
	}
	if c.FirmClientID == nil || other.FirmClientID == nil {
		return c.FirmClientID == nil && other.FirmClientID == nil
	}
	return *c.FirmClientID == *other.FirmClientID
}

// ClientRequestId identifies a request within a client's own numbering.
// Quote legs carry the quote set and quote ids they were submitted under.
type ClientRequestId struct {
	Current      string `json:"current"`
	Original     string `json:"original,omitempty"`
	CollectionID string `json:"collectionId,omitempty"`
	ParentID     string `json:"parentId,omitempty"`
}
