package services

import "strings"

// identityCache is the tracker's local copy of the signed-in actor. Guarded by
// the tracker mutex together with the queue.
type identityCache struct {
	actorID string
}

func (c *identityCache) current() (string, bool) {
	return c.actorID, c.actorID != ""
}

func (c *identityCache) set(actorID string) {
	c.actorID = strings.TrimSpace(actorID)
}

func (c *identityCache) clear() {
	c.actorID = ""
}
