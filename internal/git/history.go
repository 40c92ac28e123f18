package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// OpenError reports a repository that could not be opened. Callers treat it
// as a soft failure.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open repository %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Blob is the content of one file as recorded by a commit.
type Blob struct {
	Path    string
	Content string
}

// Commit lists the text blobs a commit introduced or modified.
type Commit struct {
	Hash  string
	Blobs []Blob
}

// Head describes the commit HEAD points at. Both fields are empty for a
// repository without commits; Branch is empty for a detached HEAD.
type Head struct {
	Commit string
	Branch string
}

// Repo is a read-only handle on a repository. It is not safe for concurrent use.
type Repo struct {
	Path string
	// SkipBlob, when set, is consulted before a blob is read. Returning true
	// leaves the blob out of the commit.
	SkipBlob func(path string, size int64) bool

	repo *gogit.Repository
}

// Open opens the repository whose working tree (or bare directory) is path.
func Open(path string) (*Repo, error) {
	r, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &Repo{Path: path, repo: r}, nil
}

// Head returns the current HEAD.
func (r *Repo) Head() (Head, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Head{}, nil
		}
		return Head{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	h := Head{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		h.Branch = ref.Name().Short()
	}
	return h, nil
}

// WalkHistory calls fn for every commit reachable from HEAD, in log order.
// A root commit contributes every file of its tree; any other commit the files
// inserted or modified relative to its first parent. Binary blobs, symlinks and
// submodules are left out. A repository without commits yields nothing.
func (r *Repo) WalkHistory(ctx context.Context, fn func(Commit) error) error {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil
		}
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	iter, err := r.repo.Log(&gogit.LogOptions{From: ref.Hash()})
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		blobs, err := r.commitBlobs(c)
		if err != nil {
			return fmt.Errorf("commit %s: %w", c.Hash, err)
		}
		return fn(Commit{Hash: c.Hash.String(), Blobs: blobs})
	})
}

func (r *Repo) commitBlobs(c *object.Commit) ([]Blob, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	if c.NumParents() == 0 {
		var out []Blob
		err := tree.Files().ForEach(func(f *object.File) error {
			b, ok, err := r.readFile(f.Name, f)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, b)
			}
			return nil
		})
		return out, err
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}
	var out []Blob
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}
		if action != merkletrie.Insert && action != merkletrie.Modify {
			continue
		}
		if !isPlainFile(ch.To.TreeEntry.Mode) {
			continue
		}
		// TreeEntryFile names the file by its base name; ch.To.Name is the full path.
		to, err := ch.To.Tree.TreeEntryFile(&ch.To.TreeEntry)
		if err != nil {
			return nil, err
		}
		b, ok, err := r.readFile(ch.To.Name, to)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Repo) readFile(path string, f *object.File) (Blob, bool, error) {
	if !isPlainFile(f.Mode) {
		return Blob{}, false, nil
	}
	if r.SkipBlob != nil && r.SkipBlob(path, f.Size) {
		return Blob{}, false, nil
	}
	bin, err := f.IsBinary()
	if err != nil {
		return Blob{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	if bin {
		return Blob{}, false, nil
	}
	content, err := f.Contents()
	if err != nil {
		return Blob{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	return Blob{Path: path, Content: content}, true, nil
}

func isPlainFile(m filemode.FileMode) bool {
	return m == filemode.Regular || m == filemode.Executable || m == filemode.Deprecated
}

// ShortHash abbreviates a commit id for display.
func ShortHash(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
