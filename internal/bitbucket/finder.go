package bitbucket

import "context"

// FindPullRequest resolves exactly one pull request from the list
// endpoint. The server-side filterText query is a substring match, so
// the page may contain unrelated pull requests whose title merely
// contains the query; the exact match happens locally.
//
// A record is eligible when its state is OPEN, its title equals the
// requested title exactly, and its source and destination display ids
// equal the requested refs. The first eligible record in list order
// wins; later equally-matching records are ignored. Only the first page
// of results is consulted (see ListPageLimit).
//
// Returns nil without error when nothing matches; callers decide whether
// that is a failure.
func (c *Client) FindPullRequest(ctx context.Context, title, sourceRef, destRef string) (*PullRequestRecord, error) {
	records, err := c.ListPullRequests(ctx, title)
	if err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		if r.State == StateOpen &&
			r.Title == title &&
			r.SourceDisplayID == sourceRef &&
			r.DestDisplayID == destRef {
			return r, nil
		}
	}

	c.log.Debug("no matching pull request", "title", title, "from", sourceRef, "to", destRef)
	return nil, nil
}
