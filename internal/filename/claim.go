package filename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxSuffix bounds the " (N)" collision search per name.
const maxSuffix = 1000

// ErrCollisionUnresolved is returned when no free name is found within the
// suffix bound. Fatal for the document, never for the batch.
var ErrCollisionUnresolved = errors.New("collision suffix search exhausted")

// Claimer hands out destination names atomically. Names already on disk and
// names claimed earlier in the same run both count as taken, so parallel
// workers targeting one directory cannot race to the same name. Dry-run
// callers skip the Claimer entirely.
type Claimer struct {
	mu     sync.Mutex
	dirs   map[string]*sync.Mutex
	claims map[string]bool
}

func NewClaimer() *Claimer {
	return &Claimer{
		dirs:   make(map[string]*sync.Mutex),
		claims: make(map[string]bool),
	}
}

// Claim reserves a name in dir, appending " (N)" before the extension until
// a free one is found. sourcePath identifies the file being renamed: its own
// current name never counts as a collision.
func (c *Claimer) Claim(dir, name, sourcePath string) (string, error) {
	dirMu := c.dirLock(dir)
	dirMu.Lock()
	defer dirMu.Unlock()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	source := filepath.Clean(sourcePath)

	for n := 0; n <= maxSuffix; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		target := filepath.Clean(filepath.Join(dir, candidate))
		if target == source {
			return candidate, nil // already named correctly
		}
		if c.taken(target) {
			continue
		}
		c.mu.Lock()
		c.claims[target] = true
		c.mu.Unlock()
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %s in %s", ErrCollisionUnresolved, name, dir)
}

// Release frees a claim after a failed rename so the name can be reused.
func (c *Claimer) Release(dir, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.claims, filepath.Clean(filepath.Join(dir, name)))
}

func (c *Claimer) taken(target string) bool {
	c.mu.Lock()
	claimed := c.claims[target]
	c.mu.Unlock()
	if claimed {
		return true
	}
	_, err := os.Stat(target)
	return err == nil
}

func (c *Claimer) dirLock(dir string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := filepath.Clean(dir)
	mu, ok := c.dirs[key]
	if !ok {
		mu = &sync.Mutex{}
		c.dirs[key] = mu
	}
	return mu
}
