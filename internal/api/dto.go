package api

// Empty is the request type of endpoints without a body.
type Empty struct{}

// EnqueueRequest carries the item to admit. An empty string is a valid item.
type EnqueueRequest struct {
	Item *string `json:"item" validate:"required"`
}

// SizeResponse reports the queue size after a mutation.
type SizeResponse struct {
	Size int `json:"size"`
}

// ItemResponse carries a served or observed item.
type ItemResponse struct {
	Item string `json:"item"`
}

// StateResponse is a consistent view of the whole queue.
type StateResponse struct {
	Size  int      `json:"size"`
	Empty bool     `json:"empty"`
	Items []string `json:"items"`
	Hash  string   `json:"hash"`
}

// VerifyResponse is returned when a checkpoint still matches.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}
