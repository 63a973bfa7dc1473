package dump

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/nickyhof/ShowcaseDB/core"
)

var ErrVaultNotInitialized = errors.New("vault not initialized")

// Revision identifies one stored backup commit.
type Revision struct {
	Id     string
	When   time.Time
	Author string // "Name <email>" format
}

func (r Revision) String() string {
	return fmt.Sprintf("Revision{Id: %s, When: %s, Author: %s}", r.Id, r.When, r.Author)
}

// Vault versions dump files in a git repository. Every Save is a
// commit, Snapshot tags the current state, and Recover hard-resets
// the worktree back to a tag.
type Vault struct {
	repo *git.Repository
	fs   billy.Filesystem
	mu   sync.Mutex
}

// IsInitialized returns true if the vault has a valid repository
func (v *Vault) IsInitialized() bool {
	return v != nil && v.repo != nil
}

func (v *Vault) ensureInitialized() error {
	if !v.IsInitialized() {
		return ErrVaultNotInitialized
	}
	return nil
}

func NewMemoryVault() (*Vault, error) {
	wt := memfs.New()
	storer := memory.NewStorage()

	repo, err := git.Init(storer, git.WithWorkTree(wt))
	if err != nil {
		return nil, err
	}

	return &Vault{repo: repo, fs: wt}, nil
}

func NewFileVault(baseDir string) (*Vault, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository

	_, statErr := os.Stat(fs.Root())
	if statErr != nil {
		// Directory doesn't exist, initialize new repo
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		// Directory exists, open existing repo
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, err
	}

	return &Vault{repo: repo, fs: wt}, nil
}

// Save writes data to name in the worktree and commits it.
func (v *Vault) Save(name string, data []byte, identity core.Identity, message string) (Revision, error) {
	if err := v.ensureInitialized(); err != nil {
		return Revision{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := util.WriteFile(v.fs, name, data, 0644); err != nil {
		return Revision{}, fmt.Errorf("failed to write %s: %w", name, err)
	}

	wt, err := v.repo.Worktree()
	if err != nil {
		return Revision{}, err
	}

	if _, err := wt.Add(name); err != nil {
		return Revision{}, fmt.Errorf("failed to stage %s: %w", name, err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  identity.Name,
			Email: identity.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return Revision{}, fmt.Errorf("failed to commit %s: %w", name, err)
	}

	commit, err := v.repo.CommitObject(hash)
	if err != nil {
		return Revision{}, err
	}

	return Revision{
		Id:     hash.String(),
		When:   commit.Committer.When,
		Author: fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email),
	}, nil
}

// Retrieve reads name from the worktree as of the latest commit.
func (v *Vault) Retrieve(name string) ([]byte, error) {
	if err := v.ensureInitialized(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := util.ReadFile(v.fs, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Snapshot tags the latest commit under name.
func (v *Vault) Snapshot(name string) error {
	if err := v.ensureInitialized(); err != nil {
		return err
	}

	headRef, err := v.repo.Head()
	if err != nil {
		return fmt.Errorf("no backups to snapshot: %w", err)
	}

	_, err = v.repo.CreateTag(name, headRef.Hash(), nil)
	return err
}

// Recover hard-resets the worktree to the snapshot tag name. Backups
// saved after the snapshot disappear from the worktree.
func (v *Vault) Recover(name string) error {
	if err := v.ensureInitialized(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	ref, err := v.repo.Tag(name)
	if err != nil {
		return fmt.Errorf("snapshot %s not found: %w", name, err)
	}

	wt, err := v.repo.Worktree()
	if err != nil {
		return err
	}

	return wt.Reset(&git.ResetOptions{
		Mode:   git.HardReset,
		Commit: ref.Hash(),
	})
}

// Latest returns the most recent backup commit, or a zero Revision
// when nothing has been saved yet.
func (v *Vault) Latest() Revision {
	if !v.IsInitialized() {
		return Revision{}
	}

	headRef, err := v.repo.Head()
	if err != nil || headRef == nil {
		// No commits yet
		return Revision{}
	}

	commit, err := v.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Revision{}
	}

	author := ""
	if commit.Author.Name != "" || commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	}

	return Revision{
		Id:     headRef.Hash().String(),
		When:   commit.Committer.When,
		Author: author,
	}
}

// History lists backup commits, newest first.
func (v *Vault) History() ([]Revision, error) {
	if err := v.ensureInitialized(); err != nil {
		return nil, err
	}

	cIter, err := v.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, err
	}
	defer cIter.Close()

	var revisions []Revision
	err = cIter.ForEach(func(c *object.Commit) error {
		revisions = append(revisions, Revision{
			Id:     c.Hash.String(),
			When:   c.Committer.When,
			Author: fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email),
		})
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return revisions, nil
}
