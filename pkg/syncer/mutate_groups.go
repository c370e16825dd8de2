package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/driftid"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/notify"
	"github.com/driftwave/client/pkg/record"
)

type CreateGroupInput struct {
	Name string `validate:"required,max=100"`
}

// CreateGroup seeds the creator into both the admin and member sets.
func (c *Core) CreateGroup(input CreateGroupInput) (record.Group, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Group{}, dropMutation("create_group", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Group{}, dropMutation("create_group", err)
	}

	group := &record.Group{
		Id:           driftid.GenToken(),
		Name:         input.Name,
		CreatorAlias: c.alias,
		Admins:       []string{c.alias},
		Members:      []string{c.alias},
		Settings:     record.GroupSettings{WhoCanSendMessage: record.SendersAll},
		Timestamp:    now(),
	}

	c.groups.MergeInsert(group)
	c.persist(record.EntityGroups)
	c.submitWrite(record.EntityGroups, channel.OpInsert, group.Id, normalize.GroupMap(group))
	return group.Clone(), nil
}

func (c *Core) JoinGroup(groupId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("join_group", err)
	}

	var members []string
	ok := c.groups.MergeUpdate(groupId, func(g *record.Group) {
		g.Members = record.AddUnique(g.Members, c.alias)
		members = g.Members
	})
	if !ok {
		return dropMutation("join_group", ErrRecordNotFound)
	}
	c.persist(record.EntityGroups)
	c.submitWrite(record.EntityGroups, channel.OpUpdate, groupId, map[string]any{"members": members})
	return nil
}

// LeaveGroup drops the caller from the member set and, to keep the
// admins-are-members invariant, from the admin set too.
func (c *Core) LeaveGroup(groupId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var admins, members []string
	ok := c.groups.MergeUpdate(groupId, func(g *record.Group) {
		g.Members = record.Remove(g.Members, c.alias)
		g.Admins = record.Remove(g.Admins, c.alias)
		admins, members = g.Admins, g.Members
	})
	if !ok {
		return dropMutation("leave_group", ErrRecordNotFound)
	}
	c.persist(record.EntityGroups)
	c.submitWrite(record.EntityGroups, channel.OpUpdate, groupId, map[string]any{
		"admins":  admins,
		"members": members,
	})
	return nil
}

// InviteToGroup adds a member; admin-only. The invitee is notified.
func (c *Core) InviteToGroup(groupId string, alias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("invite_to_group", err)
	}

	group, ok := c.groups.Get(groupId)
	if !ok {
		return dropMutation("invite_to_group", ErrRecordNotFound)
	}
	if !group.IsAdmin(c.alias) {
		return dropMutation("invite_to_group", ErrNotPermitted)
	}

	var members []string
	var name string
	c.groups.MergeUpdate(groupId, func(g *record.Group) {
		g.Members = record.AddUnique(g.Members, alias)
		members = g.Members
		name = g.Name
	})
	c.persist(record.EntityGroups)
	c.submitWrite(record.EntityGroups, channel.OpUpdate, groupId, map[string]any{"members": members})
	c.enqueueNotification(notify.Notification{
		TargetAlias: alias,
		Kind:        notify.KindGroupInvite,
		Title:       "Group invite",
		Content:     c.alias + " added you to " + name,
		FromAlias:   c.alias,
	})
	return nil
}

// PromoteToAdmin grants admin to an existing member; admin-only.
func (c *Core) PromoteToAdmin(groupId string, alias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	group, ok := c.groups.Get(groupId)
	if !ok {
		return dropMutation("promote_to_admin", ErrRecordNotFound)
	}
	if !group.IsAdmin(c.alias) {
		return dropMutation("promote_to_admin", ErrNotPermitted)
	}
	if !group.IsMember(alias) {
		return dropMutation("promote_to_admin", ErrNotMember)
	}

	var admins []string
	c.groups.MergeUpdate(groupId, func(g *record.Group) {
		g.Admins = record.AddUnique(g.Admins, alias)
		admins = g.Admins
	})
	c.persist(record.EntityGroups)
	c.submitWrite(record.EntityGroups, channel.OpUpdate, groupId, map[string]any{"admins": admins})
	return nil
}

// SetWhoCanSendMessage locks or unlocks the group for non-admin senders.
func (c *Core) SetWhoCanSendMessage(groupId string, who string) error {
	if who != record.SendersAll && who != record.SendersAdmins {
		return dropMutation("set_who_can_send", ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	group, ok := c.groups.Get(groupId)
	if !ok {
		return dropMutation("set_who_can_send", ErrRecordNotFound)
	}
	if !group.IsAdmin(c.alias) {
		return dropMutation("set_who_can_send", ErrNotPermitted)
	}

	c.groups.MergeUpdate(groupId, func(g *record.Group) {
		g.Settings.WhoCanSendMessage = who
	})
	c.persist(record.EntityGroups)
	c.submitWrite(record.EntityGroups, channel.OpUpdate, groupId, map[string]any{
		"settings": map[string]any{"whoCanSendMessage": who},
	})
	return nil
}
