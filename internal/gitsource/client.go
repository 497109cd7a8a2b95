// Package gitsource checks out a remote content repository so a site can be
// built straight from its source repo.
package gitsource

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/sitenav/internal/config"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
)

// Client handles git checkouts of the content source.
type Client struct {
	workspaceDir string
}

// NewClient creates a client that keeps checkouts under workspaceDir.
// An empty workspaceDir uses a directory under the system temp dir.
func NewClient(workspaceDir string) *Client {
	if workspaceDir == "" {
		workspaceDir = filepath.Join(os.TempDir(), "sitenav-src")
	}
	return &Client{workspaceDir: workspaceDir}
}

// Checkout clones the configured source repository and returns the absolute
// path of the content directory inside the checkout. An existing checkout is
// pulled instead of re-cloned.
func (c *Client) Checkout(src *config.GitSourceConfig) (string, error) {
	if src == nil || src.URL == "" {
		return "", fmt.Errorf("no git source configured")
	}

	repoPath := filepath.Join(c.workspaceDir, "checkout")

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		if err := c.update(repoPath, src); err != nil {
			slog.Warn("Update failed, falling back to fresh clone", logfields.Error(err))
			if err := os.RemoveAll(repoPath); err != nil {
				return "", fmt.Errorf("remove stale checkout: %w", err)
			}
			if err := c.clone(repoPath, src); err != nil {
				return "", err
			}
		}
	} else {
		if err := c.clone(repoPath, src); err != nil {
			return "", err
		}
	}

	contentDir := repoPath
	if src.Path != "" {
		contentDir = filepath.Join(repoPath, filepath.FromSlash(src.Path))
	}
	if st, err := os.Stat(contentDir); err != nil || !st.IsDir() {
		return "", fmt.Errorf("content path %q not found in checkout of %s", src.Path, src.URL)
	}
	return contentDir, nil
}

func (c *Client) clone(repoPath string, src *config.GitSourceConfig) error {
	slog.Info("Cloning content source", slog.String("url", src.URL), slog.String("branch", src.Branch))

	if err := os.MkdirAll(filepath.Dir(repoPath), 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	opts := &git.CloneOptions{URL: src.URL, Depth: 1}
	if src.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainClone(repoPath, false, opts)
	if err != nil {
		return fmt.Errorf("clone %s: %w", src.URL, err)
	}
	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Content source cloned",
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(repoPath))
	}
	return nil
}

func (c *Client) update(repoPath string, src *config.GitSourceConfig) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open checkout: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	pullOpts := &git.PullOptions{Force: true}
	if src.Branch != "" {
		pullOpts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		pullOpts.SingleBranch = true
	}
	if err := wt.Pull(pullOpts); err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("pull %s: %w", src.URL, err)
	}
	slog.Debug("Content source updated", logfields.Path(repoPath))
	return nil
}

// Cleanup removes the workspace directory.
func (c *Client) Cleanup() error {
	return os.RemoveAll(c.workspaceDir)
}
