package model

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one entry in a conversation history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
