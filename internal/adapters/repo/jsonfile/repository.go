// Package jsonfile persists session records as one JSON object keyed by
// session id. The file is the single source of truth for what must eventually
// be cleaned up; there is no in-memory mirror.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/kvist-dev/guestpass/internal/ports"
	"github.com/spf13/viper"
)

const (
	storePathKey    = "store.path"
	storeConfigDir  = ".guestpass"
	storeFile       = "sessions.json"
	storeFileMode   = 0o600
	storeDirMode    = 0o700
	tempFilePattern = ".sessions-*.json.tmp"
)

type Repository struct {
	storePath string
	mu        *sync.RWMutex
	clock     ports.Clock
	logger    *log.Logger
}

// Mutations are serialized per path within the process; cross-process writers
// would need a transactional backing store.
var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper, clock ports.Clock, logger *log.Logger) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetDefault(storePathKey, filepath.Join(homeDir, storeConfigDir, storeFile))

	storePath := cfg.GetString(storePathKey)
	if storePath == "" {
		return nil, errors.New("session store path is empty")
	}
	storePath, err = normalizeStorePath(storePath)
	if err != nil {
		return nil, err
	}

	return &Repository{storePath: storePath, mu: lockForPath(storePath), clock: clock, logger: logger}, nil
}

func (r *Repository) Add(ctx context.Context, id domain.SessionID, userID domain.UserID, slug domain.WorkspaceSlug) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := r.readSchema()
	file[string(id)] = toSchema(domain.Session{
		ID:            id,
		UserID:        userID,
		WorkspaceSlug: slug,
		CreatedAt:     r.clock.Now(),
	})

	return r.writeSchema(file)
}

func (r *Repository) Remove(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := r.readSchema()
	if _, ok := file[string(id)]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(file, string(id))

	return r.writeSchema(file)
}

func (r *Repository) GetByID(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file := r.readSchema()
	entry, ok := file[string(id)]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return fromSchema(string(id), entry), nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file := r.readSchema()
	sessions := make([]domain.Session, 0, len(file))
	for id, entry := range file {
		sessions = append(sessions, fromSchema(id, entry))
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	return sessions, nil
}

// readSchema favors availability: a missing file is simply the first run, and
// any other read or decode failure is logged and degrades to an empty set
// rather than propagating. A corrupted file therefore silently loses cleanup
// tracking; see the open-questions section of DESIGN.md.
func (r *Repository) readSchema() fileSchema {
	data, err := os.ReadFile(r.storePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("read session store failed, treating as empty", "path", r.storePath, "err", err)
		}
		return fileSchema{}
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		r.logger.Warn("decode session store failed, treating as empty", "path", r.storePath, "err", err)
		return fileSchema{}
	}
	if file == nil {
		file = fileSchema{}
	}

	return file
}

func (r *Repository) writeSchema(file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(r.storePath), storeDirMode); err != nil {
		return fmt.Errorf("create session store directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session store: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.storePath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session store: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session store: %w", err)
	}

	if err := tempFile.Chmod(storeFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session store: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session store: %w", err)
	}

	if err := os.Rename(tempName, r.storePath); err != nil {
		return fmt.Errorf("replace session store: %w", err)
	}

	cleanup = false

	return nil
}

func normalizeStorePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve session store path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
