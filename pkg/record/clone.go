package record

// Clone methods return detached copies sharing no backing storage with
// the live record. Snapshot accessors hand these out so a later merge
// can never touch a copy a caller holds.

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// CloneComments deep-copies a comment tree.
func CloneComments(cs []Comment) []Comment {
	out := make([]Comment, len(cs))
	for i := range cs {
		out[i] = cs[i]
		out[i].Replies = CloneComments(cs[i].Replies)
	}
	return out
}

func (p *Poll) Clone() *Poll {
	out := &Poll{Question: p.Question, Options: make([]PollOption, len(p.Options))}
	for i := range p.Options {
		out.Options[i] = PollOption{Text: p.Options[i].Text, Voters: cloneStrings(p.Options[i].Voters)}
	}
	return out
}

func (p *Post) Clone() Post {
	out := *p
	out.Likes = cloneStrings(p.Likes)
	out.Comments = CloneComments(p.Comments)
	out.MediaUrls = cloneStrings(p.MediaUrls)
	if p.Poll != nil {
		out.Poll = p.Poll.Clone()
	}
	return out
}

func (p *AnonPost) Clone() AnonPost {
	out := *p
	out.Likes = cloneStrings(p.Likes)
	out.Comments = CloneComments(p.Comments)
	out.MediaUrls = cloneStrings(p.MediaUrls)
	if p.Poll != nil {
		out.Poll = p.Poll.Clone()
	}
	out.Reactions = make([]Reaction, len(p.Reactions))
	copy(out.Reactions, p.Reactions)
	out.Bookmarks = cloneStrings(p.Bookmarks)
	return out
}

func (m *Message) Clone() Message {
	out := *m
	if m.Reactions != nil {
		out.Reactions = make(map[string][]string, len(m.Reactions))
		for emoji, aliases := range m.Reactions {
			out.Reactions[emoji] = cloneStrings(aliases)
		}
	}
	out.Likes = cloneStrings(m.Likes)
	return out
}

func (g *Group) Clone() Group {
	out := *g
	out.Admins = cloneStrings(g.Admins)
	out.Members = cloneStrings(g.Members)
	return out
}

func (p *Profile) Clone() Profile {
	out := *p
	out.Followers = cloneStrings(p.Followers)
	out.Following = cloneStrings(p.Following)
	return out
}

func (s *Story) Clone() Story {
	out := *s
	out.Viewers = cloneStrings(s.Viewers)
	return out
}

func (c *Channel) Clone() Channel {
	out := *c
	out.Subscribers = cloneStrings(c.Subscribers)
	return out
}
