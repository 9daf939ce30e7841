package encounter

import (
	"context"
	"path/filepath"

	"github.com/ehr/journal/internal/platform/store"
)

// FileRepo keeps encounters in DATA_DIR/encounters.xml.
type FileRepo struct {
	coll *store.Collection[Encounter]
}

func NewFileRepo(dataDir string, opts ...store.Option) *FileRepo {
	return &FileRepo{coll: store.New[Encounter](filepath.Join(dataDir, FileName), Schema, opts...)}
}

// Init creates an empty encounters.xml if it does not exist.
func (r *FileRepo) Init() error {
	return r.coll.Initialize(nil)
}

func (r *FileRepo) List(ctx context.Context) ([]Encounter, error) {
	return r.coll.Load(ctx)
}

func (r *FileRepo) Update(ctx context.Context, fn func([]Encounter) ([]Encounter, error)) error {
	return r.coll.Update(ctx, fn)
}

// Collection exposes the underlying store for maintenance commands.
func (r *FileRepo) Collection() *store.Collection[Encounter] {
	return r.coll
}
