package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/mirror"
	"github.com/driftwave/client/pkg/record"
)

// fakeRemote records writes and serves canned snapshots; streams are
// driven by the test pushing events.
type fakeRemote struct {
	mu        sync.Mutex
	snapshots map[record.EntityType][]map[string]any
	writes    []fakeWrite
	streams   map[record.EntityType]*fakeStream

	// subscribeGate, when set, parks Subscribe calls until closed,
	// simulating a slow connect.
	subscribeGate chan struct{}
}

type fakeWrite struct {
	Entity  record.EntityType
	Op      channel.Op
	Id      string
	Payload map[string]any
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		snapshots: map[record.EntityType][]map[string]any{},
		streams:   map[record.EntityType]*fakeStream{},
	}
}

func (f *fakeRemote) FetchSnapshot(ctx context.Context, entity record.EntityType) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots[entity], nil
}

func (f *fakeRemote) Write(ctx context.Context, entity record.EntityType, op channel.Op, id string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, fakeWrite{Entity: entity, Op: op, Id: id, Payload: payload})
	return nil
}

func (f *fakeRemote) Subscribe(ctx context.Context, entity record.EntityType) (channel.Stream, error) {
	if f.subscribeGate != nil {
		<-f.subscribeGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeStream{events: make(chan channel.Event, 16)}
	f.streams[entity] = s
	return s, nil
}

func (f *fakeRemote) push(ev channel.Event) {
	f.mu.Lock()
	s := f.streams[ev.Entity]
	f.mu.Unlock()
	s.events <- ev
}

func (f *fakeRemote) recorded() []fakeWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeWrite, len(f.writes))
	copy(out, f.writes)
	return out
}

type fakeStream struct {
	events    chan channel.Event
	closeOnce sync.Once
}

func (s *fakeStream) Events() <-chan channel.Event { return s.events }

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}

// newTestCore builds a core with an in-memory mirror and a registered
// profile for the acting alias.
func newTestCore(t *testing.T, alias string, remote channel.Remote) *Core {
	t.Helper()
	m, err := mirror.Open(":memory:")
	require.NoError(t, err)
	c := New(Config{Alias: alias, Remote: remote, Mirror: m})
	_, err = c.RegisterProfile(RegisterProfileInput{Alias: alias})
	require.NoError(t, err)
	return c
}

func TestCreatePostOptimistic(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCore(t, "maya", remote)

	post, err := c.CreatePost(CreatePostInput{Content: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, post.Id)

	// Visible synchronously, before the remote write settles.
	posts := c.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "maya", posts[0].AuthorAlias)

	p, _ := c.Profile("maya")
	assert.Equal(t, 1, p.TotalTransmissions)

	c.Flush()
	writes := remote.recorded()
	var found bool
	for _, w := range writes {
		if w.Entity == record.EntityPosts && w.Op == channel.OpInsert && w.Id == post.Id {
			found = true
			assert.Equal(t, "hello", w.Payload["content"])
			assert.NotEmpty(t, w.Payload["nonce"])
		}
	}
	assert.True(t, found, "insert must reach the remote channel")
}

func TestEchoOfOptimisticWriteAbsorbed(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	post, err := c.CreatePost(CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	// The subscription echoes the insert back with the same id.
	c.applyEvent(channel.Event{
		Entity:  record.EntityPosts,
		Op:      channel.OpInsert,
		Id:      post.Id,
		Payload: map[string]any{"id": post.Id, "authorAlias": "maya", "content": "hello", "timestamp": post.Timestamp},
	})

	assert.Len(t, c.Posts(), 1, "echo must merge as a no-op")
}

func TestUpdateEventForUnknownIdDropped(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	c.applyEvent(channel.Event{
		Entity:  record.EntityPosts,
		Op:      channel.OpUpdate,
		Id:      "ghost",
		Payload: map[string]any{"content": "boo"},
	})
	assert.Empty(t, c.Posts(), "update must not materialize a record")
}

func TestDeleteEventRemovesRecord(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	post, err := c.CreatePost(CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	c.applyEvent(channel.Event{Entity: record.EntityPosts, Op: channel.OpDelete, Id: post.Id})
	assert.Empty(t, c.Posts())

	// A second delete for the same id is a no-op.
	c.applyEvent(channel.Event{Entity: record.EntityPosts, Op: channel.OpDelete, Id: post.Id})
	assert.Empty(t, c.Posts())
}

func TestSettingsSingletonNeverDestroyed(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	c.applyEvent(channel.Event{
		Entity:  record.EntitySettings,
		Op:      channel.OpUpdate,
		Payload: map[string]any{"maintenance_mode": true},
	})
	s := c.Settings()
	assert.True(t, s.MaintenanceMode)
	assert.True(t, s.RegistrationOpen, "unpatched field keeps its value")

	c.applyEvent(channel.Event{Entity: record.EntitySettings, Op: channel.OpDelete, Id: record.SettingsId})
	assert.Equal(t, record.SettingsId, c.Settings().Id, "delete on the singleton is ignored")
}

func TestMessageEventWithoutGroupDropped(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	c.applyEvent(channel.Event{
		Entity:  record.EntityMessages,
		Op:      channel.OpInsert,
		Payload: map[string]any{"id": "m1", "senderAlias": "kai", "content": "dm", "timestamp": int64(1)},
	})
	assert.Empty(t, c.Messages(""), "message without group id is refused")
}

func TestSendMessageGates(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	group, err := c.CreateGroup(CreateGroupInput{Name: "crew"})
	require.NoError(t, err)

	// Member can send.
	msg, err := c.SendMessage(SendMessageInput{GroupId: group.Id, Content: "hi all"})
	require.NoError(t, err)
	assert.Equal(t, record.MessageTypeText, msg.Type)
	assert.Len(t, c.Messages(group.Id), 1)

	// Non-member cannot.
	c.SetIdentity(context.Background(), "kai")
	_, err = c.RegisterProfile(RegisterProfileInput{Alias: "kai"})
	require.NoError(t, err)
	_, err = c.SendMessage(SendMessageInput{GroupId: group.Id, Content: "let me in"})
	assert.ErrorIs(t, err, ErrNotMember)
	assert.Len(t, c.Messages(group.Id), 1, "gate failure leaves state untouched")

	// Admins-only lock keeps plain members out.
	require.NoError(t, c.JoinGroup(group.Id))
	c.SetIdentity(context.Background(), "maya")
	require.NoError(t, c.SetWhoCanSendMessage(group.Id, record.SendersAdmins))
	c.SetIdentity(context.Background(), "kai")
	_, err = c.SendMessage(SendMessageInput{GroupId: group.Id, Content: "still me"})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestMutedAndBannedSendersDropped(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCore(t, "mod", remote)

	// mod is an admin; set the flags on a second profile.
	c.applyEvent(channel.Event{
		Entity:  record.EntityProfiles,
		Op:      channel.OpUpdate,
		Id:      "mod",
		Payload: map[string]any{"isAdmin": true},
	})
	c.SetIdentity(context.Background(), "troll")
	_, err := c.RegisterProfile(RegisterProfileInput{Alias: "troll"})
	require.NoError(t, err)
	c.SetIdentity(context.Background(), "mod")
	require.NoError(t, c.SetUserMuted("troll", true))

	c.SetIdentity(context.Background(), "troll")
	_, err = c.CreatePost(CreatePostInput{Content: "spam"})
	assert.ErrorIs(t, err, ErrSenderMuted)
	assert.Empty(t, c.Posts())

	c.SetIdentity(context.Background(), "mod")
	require.NoError(t, c.SetUserBanned("troll", true))
	c.SetIdentity(context.Background(), "troll")
	_, err = c.CreatePost(CreatePostInput{Content: "spam"})
	assert.ErrorIs(t, err, ErrSenderBanned)
}

func TestFollowSymmetry(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCore(t, "maya", remote)
	c.SetIdentity(context.Background(), "kai")
	_, err := c.RegisterProfile(RegisterProfileInput{Alias: "kai"})
	require.NoError(t, err)
	c.SetIdentity(context.Background(), "maya")

	require.NoError(t, c.Follow("kai"))

	maya, _ := c.Profile("maya")
	kai, _ := c.Profile("kai")
	assert.Contains(t, maya.Following, "kai")
	assert.Contains(t, kai.Followers, "maya")

	// Following twice stays a set.
	require.NoError(t, c.Follow("kai"))
	maya, _ = c.Profile("maya")
	assert.Len(t, maya.Following, 1)

	require.NoError(t, c.Unfollow("kai"))
	maya, _ = c.Profile("maya")
	kai, _ = c.Profile("kai")
	assert.Empty(t, maya.Following)
	assert.Empty(t, kai.Followers)

	// Self-follow is refused.
	assert.ErrorIs(t, c.Follow("maya"), ErrInvalidInput)
}

func TestRegisterProfileCaseInsensitiveDuplicate(t *testing.T) {
	c := newTestCore(t, "Maya", newFakeRemote())

	dup, err := c.RegisterProfile(RegisterProfileInput{Alias: "MAYA"})
	require.NoError(t, err)
	assert.Equal(t, "Maya", dup.Alias, "existing profile is returned untouched")
	assert.Len(t, c.Profiles(), 1)
}

func TestRegisterProfileClosedRegistration(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	c.applyEvent(channel.Event{
		Entity:  record.EntitySettings,
		Op:      channel.OpUpdate,
		Payload: map[string]any{"registrationOpen": false},
	})

	c.SetIdentity(context.Background(), "kai")
	_, err := c.RegisterProfile(RegisterProfileInput{Alias: "kai"})
	assert.ErrorIs(t, err, ErrClosedReg)
}

func TestCommentThreading(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	post, err := c.CreatePost(CreatePostInput{Content: "root"})
	require.NoError(t, err)

	top, err := c.AddComment(AddCommentInput{PostId: post.Id, Content: "top level"})
	require.NoError(t, err)
	reply, err := c.AddComment(AddCommentInput{PostId: post.Id, Content: "nested", ParentCommentId: top.Id})
	require.NoError(t, err)

	got, ok := c.Post(post.Id)
	require.True(t, ok)
	require.Len(t, got.Comments, 1)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, reply.Id, got.Comments[0].Replies[0].Id)

	// Replying to a nonexistent parent is dropped.
	_, err = c.AddComment(AddCommentInput{PostId: post.Id, Content: "orphan", ParentCommentId: "ghost"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGroupLifecycle(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	group, err := c.CreateGroup(CreateGroupInput{Name: "crew"})
	require.NoError(t, err)
	assert.Equal(t, []string{"maya"}, group.Admins)
	assert.Equal(t, []string{"maya"}, group.Members)

	c.SetIdentity(context.Background(), "kai")
	_, err = c.RegisterProfile(RegisterProfileInput{Alias: "kai"})
	require.NoError(t, err)

	// Promote requires membership.
	c.SetIdentity(context.Background(), "maya")
	assert.ErrorIs(t, c.PromoteToAdmin(group.Id, "kai"), ErrNotMember)

	c.SetIdentity(context.Background(), "kai")
	require.NoError(t, c.JoinGroup(group.Id))

	// Non-admin cannot promote or invite.
	assert.ErrorIs(t, c.PromoteToAdmin(group.Id, "kai"), ErrNotPermitted)
	assert.ErrorIs(t, c.InviteToGroup(group.Id, "rio"), ErrNotPermitted)

	c.SetIdentity(context.Background(), "maya")
	require.NoError(t, c.PromoteToAdmin(group.Id, "kai"))
	g, _ := c.Group(group.Id)
	assert.True(t, g.IsAdmin("kai"))

	// Leaving drops both memberships.
	c.SetIdentity(context.Background(), "kai")
	require.NoError(t, c.LeaveGroup(group.Id))
	g, _ = c.Group(group.Id)
	assert.False(t, g.IsAdmin("kai"))
	assert.False(t, g.IsMember("kai"))
}

func TestDeletePostPermissions(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	post, err := c.CreatePost(CreatePostInput{Content: "mine"})
	require.NoError(t, err)

	c.SetIdentity(context.Background(), "kai")
	_, err = c.RegisterProfile(RegisterProfileInput{Alias: "kai"})
	require.NoError(t, err)
	assert.ErrorIs(t, c.DeletePost(post.Id), ErrNotPermitted)

	// Admins may remove any post.
	c.applyEvent(channel.Event{
		Entity:  record.EntityProfiles,
		Op:      channel.OpUpdate,
		Id:      "kai",
		Payload: map[string]any{"isAdmin": true},
	})
	require.NoError(t, c.DeletePost(post.Id))
	assert.Empty(t, c.Posts())
}

func TestLikeIsSetLike(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	post, err := c.CreatePost(CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, c.LikePost(post.Id))
	require.NoError(t, c.LikePost(post.Id))
	got, _ := c.Post(post.Id)
	assert.Equal(t, []string{"maya"}, got.Likes)

	require.NoError(t, c.UnlikePost(post.Id))
	got, _ = c.Post(post.Id)
	assert.Empty(t, got.Likes)
}

func TestVotePollMovesVote(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	post, err := c.CreatePost(CreatePostInput{
		Content: "pick one",
		Poll:    &PollInput{Question: "best?", Options: []string{"a", "b"}},
	})
	require.NoError(t, err)

	require.NoError(t, c.VotePoll(post.Id, 0))
	require.NoError(t, c.VotePoll(post.Id, 1))

	got, _ := c.Post(post.Id)
	require.NotNil(t, got.Poll)
	assert.Empty(t, got.Poll.Options[0].Voters)
	assert.Equal(t, []string{"maya"}, got.Poll.Options[1].Voters)

	assert.ErrorIs(t, c.VotePoll(post.Id, 7), ErrRecordNotFound)
}

func TestRepostBumpsCount(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	original, err := c.CreatePost(CreatePostInput{Content: "original"})
	require.NoError(t, err)

	repost, err := c.Repost(original.Id, "so true")
	require.NoError(t, err)
	assert.Equal(t, original.Id, repost.RepostOf)

	got, _ := c.Post(original.Id)
	assert.Equal(t, 1, got.RepostCount)
	assert.Len(t, c.Posts(), 2)
}

func TestAnonPostAuthorship(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	anon, err := c.CreateAnonPost(CreateAnonPostInput{Content: "whisper"})
	require.NoError(t, err)
	assert.Equal(t, record.AnonymousAlias, anon.AuthorAlias)
	p, _ := c.Profile("maya")
	assert.Equal(t, 0, p.TotalTransmissions, "anonymous posts do not count")

	named, err := c.CreateAnonPost(CreateAnonPostInput{Content: "signed", ShowAlias: true})
	require.NoError(t, err)
	assert.Equal(t, "maya", named.AuthorAlias)
	p, _ = c.Profile("maya")
	assert.Equal(t, 1, p.TotalTransmissions)
}

func TestReactToAnonPostReplacesPrevious(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	anon, err := c.CreateAnonPost(CreateAnonPostInput{Content: "whisper"})
	require.NoError(t, err)

	require.NoError(t, c.ReactToAnonPost(anon.Id, "fire"))
	require.NoError(t, c.ReactToAnonPost(anon.Id, "heart"))

	posts := c.AnonPosts()
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Reactions, 1)
	assert.Equal(t, "heart", posts[0].Reactions[0].ReactionType)
}

func TestReactToMessageToggles(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	group, err := c.CreateGroup(CreateGroupInput{Name: "crew"})
	require.NoError(t, err)
	msg, err := c.SendMessage(SendMessageInput{GroupId: group.Id, Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, c.ReactToMessage(msg.Id, "fire"))
	got := c.Messages(group.Id)
	assert.Equal(t, []string{"maya"}, got[0].Reactions["fire"])

	require.NoError(t, c.ReactToMessage(msg.Id, "fire"))
	got = c.Messages(group.Id)
	assert.NotContains(t, got[0].Reactions, "fire", "empty reaction key is removed")
}

func TestValidationFailureDropsMutation(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCore(t, "maya", remote)

	_, err := c.CreatePost(CreatePostInput{Content: ""})
	require.Error(t, err)
	assert.Empty(t, c.Posts())

	c.Flush()
	for _, w := range remote.recorded() {
		assert.NotEqual(t, record.EntityPosts, w.Entity, "dropped mutation must not reach the remote")
	}
}

func TestAdminGates(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	assert.ErrorIs(t, c.SetUserBanned("maya", true), ErrNotPermitted)
	assert.ErrorIs(t, c.UpdateAppSettings(UpdateSettingsInput{}), ErrNotPermitted)

	c.applyEvent(channel.Event{
		Entity:  record.EntityProfiles,
		Op:      channel.OpUpdate,
		Id:      "maya",
		Payload: map[string]any{"isAdmin": true},
	})
	open := false
	require.NoError(t, c.UpdateAppSettings(UpdateSettingsInput{RegistrationOpen: &open}))
	assert.False(t, c.Settings().RegistrationOpen)
}

func TestStoriesExpiryAndViewers(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())

	story, err := c.PostStory(PostStoryInput{MediaUrl: "https://x/v.mp4", Caption: "day"})
	require.NoError(t, err)
	assert.Equal(t, story.Timestamp+storyTTLMillis, story.ExpiresAt)

	require.NoError(t, c.ViewStory(story.Id))
	require.NoError(t, c.ViewStory(story.Id))
	got := c.Stories()
	assert.Equal(t, []string{"maya"}, got[0].Viewers)
}

func TestChannelSubscribe(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	ch, err := c.CreateChannel(CreateChannelInput{Name: "news", Description: "daily"})
	require.NoError(t, err)

	require.NoError(t, c.SubscribeChannel(ch.Id))
	got := c.Channels()
	assert.Equal(t, []string{"maya"}, got[0].Subscribers)
}

func TestBootstrapLocalOnlyRoundTrip(t *testing.T) {
	m, err := mirror.Open(":memory:")
	require.NoError(t, err)

	first := New(Config{Alias: "maya", Mirror: m})
	first.Bootstrap(context.Background())
	_, err = first.RegisterProfile(RegisterProfileInput{Alias: "maya"})
	require.NoError(t, err)
	for _, content := range []string{"one", "two", "three"} {
		_, err := first.CreatePost(CreatePostInput{Content: content})
		require.NoError(t, err)
	}

	// A second session over the same mirror sees the same data in the
	// same order, with no remote configured.
	second := New(Config{Alias: "maya", Mirror: m})
	second.Bootstrap(context.Background())
	assert.True(t, second.LocalOnly())

	posts := second.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "one", posts[0].Content)
	assert.Equal(t, "two", posts[1].Content)
	assert.Equal(t, "three", posts[2].Content)

	p, ok := second.Profile("maya")
	require.True(t, ok)
	assert.Equal(t, 3, p.TotalTransmissions)
}

func TestBootstrapSnapshotReplace(t *testing.T) {
	remote := newFakeRemote()
	remote.snapshots[record.EntityPosts] = []map[string]any{
		{"id": "p2", "author_alias": "maya", "content": "second", "timestamp": int64(200)},
		{"id": "p1", "author_alias": "maya", "content": "first", "timestamp": int64(100)},
	}
	remote.snapshots[record.EntityProfiles] = []map[string]any{
		{"alias": "maya", "timestamp": int64(1), "totalTransmissions": 99},
	}
	remote.snapshots[record.EntityMessages] = []map[string]any{
		{"id": "m1", "senderAlias": "maya", "content": "dm", "timestamp": int64(1)},
		{"id": "m2", "senderAlias": "maya", "groupId": "g1", "content": "grouped", "timestamp": int64(2)},
	}
	remote.snapshots[record.EntitySettings] = []map[string]any{
		{"announcement": "welcome"},
	}

	m, err := mirror.Open(":memory:")
	require.NoError(t, err)
	c := New(Config{Alias: "maya", Remote: remote, Mirror: m})
	c.Bootstrap(context.Background())
	defer c.StopSubscriptions()

	// Timestamp-ordered collections come out sorted.
	posts := c.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0].Content)

	// The message without a group id is dropped.
	msgs := c.Messages("")
	require.Len(t, msgs, 1)
	assert.Equal(t, "g1", msgs[0].GroupId)

	assert.Equal(t, "welcome", c.Settings().Announcement)

	// Transmission counts are derived from the loaded collections, not
	// trusted from the snapshot.
	p, ok := c.Profile("maya")
	require.True(t, ok)
	assert.Equal(t, 2, p.TotalTransmissions)
}

func TestBootstrapRunsOnce(t *testing.T) {
	remote := newFakeRemote()
	remote.snapshots[record.EntityPosts] = []map[string]any{
		{"id": "p1", "author_alias": "maya", "content": "first", "timestamp": int64(100)},
	}
	m, err := mirror.Open(":memory:")
	require.NoError(t, err)
	c := New(Config{Alias: "maya", Remote: remote, Mirror: m})
	c.Bootstrap(context.Background())
	defer c.StopSubscriptions()

	c.applyEvent(channel.Event{Entity: record.EntityPosts, Op: channel.OpDelete, Id: "p1"})
	c.Bootstrap(context.Background())
	assert.Empty(t, c.Posts(), "second bootstrap must be a no-op")
}

func TestSnapshotsDetachedFromLiveState(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	post, err := c.CreatePost(CreatePostInput{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, c.LikePost(post.Id))
	c.SetIdentity(context.Background(), "kai")
	_, err = c.RegisterProfile(RegisterProfileInput{Alias: "kai"})
	require.NoError(t, err)
	require.NoError(t, c.LikePost(post.Id))

	snap := c.Posts()
	require.Equal(t, []string{"maya", "kai"}, snap[0].Likes)

	// An unlike filters the live slice in place; a held snapshot must
	// not see it.
	c.SetIdentity(context.Background(), "maya")
	require.NoError(t, c.UnlikePost(post.Id))

	assert.Equal(t, []string{"maya", "kai"}, snap[0].Likes)
	got, _ := c.Post(post.Id)
	assert.Equal(t, []string{"kai"}, got.Likes)
}

func TestAnonSnapshotReactionsDetached(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	anon, err := c.CreateAnonPost(CreateAnonPostInput{Content: "whisper"})
	require.NoError(t, err)
	require.NoError(t, c.ReactToAnonPost(anon.Id, "fire"))

	snap := c.AnonPosts()
	require.Equal(t, "fire", snap[0].Reactions[0].ReactionType)

	// Replacing the reaction rewrites the live slice in place.
	require.NoError(t, c.ReactToAnonPost(anon.Id, "heart"))
	assert.Equal(t, "fire", snap[0].Reactions[0].ReactionType)
}

func TestGroupSnapshotMembersDetached(t *testing.T) {
	c := newTestCore(t, "maya", newFakeRemote())
	group, err := c.CreateGroup(CreateGroupInput{Name: "crew"})
	require.NoError(t, err)
	require.NoError(t, c.InviteToGroup(group.Id, "kai"))

	snap, ok := c.Group(group.Id)
	require.True(t, ok)
	require.Equal(t, []string{"maya", "kai"}, snap.Members)

	// Leaving filters the live member slice in place.
	require.NoError(t, c.LeaveGroup(group.Id))
	assert.Equal(t, []string{"maya", "kai"}, snap.Members, "held snapshot must not change")
	live, _ := c.Group(group.Id)
	assert.Equal(t, []string{"kai"}, live.Members)
}

func TestInsertWritesCarryNonce(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCore(t, "maya", remote)

	post, err := c.CreatePost(CreatePostInput{Content: "hello"})
	require.NoError(t, err)
	_, err = c.Repost(post.Id, "again")
	require.NoError(t, err)
	group, err := c.CreateGroup(CreateGroupInput{Name: "crew"})
	require.NoError(t, err)
	_, err = c.SendMessage(SendMessageInput{GroupId: group.Id, Content: "hi"})
	require.NoError(t, err)
	_, err = c.CreateAnonPost(CreateAnonPostInput{Content: "whisper"})
	require.NoError(t, err)
	_, err = c.PostStory(PostStoryInput{MediaUrl: "https://x/v.mp4"})
	require.NoError(t, err)
	_, err = c.CreateChannel(CreateChannelInput{Name: "news"})
	require.NoError(t, err)

	c.Flush()
	inserts := 0
	for _, w := range remote.recorded() {
		if w.Op != channel.OpInsert {
			continue
		}
		inserts++
		nonce, _ := w.Payload["nonce"].(string)
		assert.NotEmpty(t, nonce, "insert for %s/%s missing nonce", w.Entity, w.Id)
	}
	assert.Equal(t, 8, inserts, "profile + seven entity inserts")
}

func TestSubscribeDoesNotBlockMutations(t *testing.T) {
	remote := newFakeRemote()
	remote.subscribeGate = make(chan struct{})
	c := newTestCore(t, "maya", remote)

	started := make(chan struct{})
	go func() {
		c.StartSubscriptions(context.Background())
		close(started)
	}()

	created := make(chan error, 1)
	go func() {
		_, err := c.CreatePost(CreatePostInput{Content: "while connecting"})
		created <- err
	}()
	select {
	case err := <-created:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("mutation blocked while subscriptions were connecting")
	}

	close(remote.subscribeGate)
	<-started
	defer c.StopSubscriptions()
	assert.Len(t, c.Posts(), 1)
}

func TestSubscriptionEventFlow(t *testing.T) {
	remote := newFakeRemote()
	m, err := mirror.Open(":memory:")
	require.NoError(t, err)
	c := New(Config{Alias: "maya", Remote: remote, Mirror: m})
	c.Bootstrap(context.Background())
	defer c.StopSubscriptions()

	remote.push(channel.Event{
		Entity:  record.EntityPosts,
		Op:      channel.OpInsert,
		Payload: map[string]any{"id": "p1", "authorAlias": "kai", "content": "pushed", "timestamp": int64(5)},
	})

	require.Eventually(t, func() bool {
		return len(c.Posts()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "pushed", c.Posts()[0].Content)

	remote.push(channel.Event{
		Entity:  record.EntityPosts,
		Op:      channel.OpUpdate,
		Id:      "p1",
		Payload: map[string]any{"likes": []any{"maya"}},
	})
	require.Eventually(t, func() bool {
		posts := c.Posts()
		return len(posts) == 1 && len(posts[0].Likes) == 1
	}, time.Second, 5*time.Millisecond)
}
