package model

// Community groups orders under a shared moderation scope. Only public
// communities are disclosed in announcements.
type Community struct {
	ID     string
	Name   string
	Public bool
}
