package collector

import (
	"context"
	"fmt"

	"github.com/google/go-github/v71/github"
)

// GitHubTreeFetcher lists the files of a GitHub repository through the git trees API.
type GitHubTreeFetcher struct {
	Owner  string
	Repo   string
	Ref    string
	Client *github.Client
}

// NewGitHubTreeFetcher creates a tree fetcher. token may be empty for anonymous access.
func NewGitHubTreeFetcher(owner, repo, ref, token, proxyURL string) *GitHubTreeFetcher {
	client := github.NewClient(newHTTPClient(proxyURL))
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubTreeFetcher{Owner: owner, Repo: repo, Ref: ref, Client: client}
}

func (f *GitHubTreeFetcher) Name() string { return "github" }

// FetchAdapterTree returns the blob paths of the recursive tree at Ref.
func (f *GitHubTreeFetcher) FetchAdapterTree(ctx context.Context) (*AdapterTree, error) {
	tree, _, err := f.Client.Git.GetTree(ctx, f.Owner, f.Repo, f.Ref, true)
	if err != nil {
		return nil, fmt.Errorf("fetch tree %s/%s@%s: %w", f.Owner, f.Repo, f.Ref, err)
	}
	out := &AdapterTree{
		Paths:     make([]string, 0, len(tree.Entries)),
		Truncated: tree.GetTruncated(),
	}
	for _, e := range tree.Entries {
		if e.GetType() == "tree" {
			continue
		}
		out.Paths = append(out.Paths, e.GetPath())
	}
	return out, nil
}
