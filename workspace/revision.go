package workspace

import (
	"errors"
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const shortHashLength = 7

// Revision identifies the checkout that helmfile is run against
type Revision struct {
	Branch string
	Commit string
	Dirty  bool
}

func (r Revision) String() string {
	if r.Commit == "" {
		return ""
	}

	s := r.Commit
	if len(s) > shortHashLength {
		s = s[:shortHashLength]
	}
	if r.Branch != "" {
		s = r.Branch + "@" + s
	}
	if r.Dirty {
		s += " (dirty)"
	}
	return s
}

// Describe reads HEAD of the git repository containing dir.
// A directory outside any repository, or a repository without commits, gives an empty Revision.
func Describe(dir string) (Revision, error) {
	repo, err := goGit.PlainOpenWithOptions(dir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, goGit.ErrRepositoryNotExists) {
		return Revision{}, nil
	}
	if err != nil {
		return Revision{}, fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return Revision{}, nil
	}
	if err != nil {
		return Revision{}, fmt.Errorf("read HEAD: %w", err)
	}

	rev := Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	w, err := repo.Worktree()
	if err != nil {
		return rev, nil // bare repository
	}

	status, err := w.Status()
	if err != nil {
		return rev, fmt.Errorf("worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()

	return rev, nil
}
