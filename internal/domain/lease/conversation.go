package lease

import (
	"time"

	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

// Turn is one message in a lease conversation.
type Turn struct {
	Role      ltypes.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Conversation is the bounded history of question/answer turns for one lease
// and user. The store trims it to the most recent MaxTurns on every append.
type Conversation struct {
	LeaseID string `json:"leaseId"`
	UserID  string `json:"userId"`
	Turns   []Turn `json:"turns"`
}

// Recent returns up to n of the most recent turns, oldest first.
func (c *Conversation) Recent(n int) []Turn {
	if n <= 0 || len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
