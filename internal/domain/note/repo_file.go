package note

import (
	"context"
	"path/filepath"

	"github.com/ehr/journal/internal/platform/store"
)

// FileRepo keeps notes in DATA_DIR/notes.xml.
type FileRepo struct {
	coll *store.Collection[Note]
}

func NewFileRepo(dataDir string, opts ...store.Option) *FileRepo {
	return &FileRepo{coll: store.New[Note](filepath.Join(dataDir, FileName), Schema, opts...)}
}

// Init creates an empty notes.xml if it does not exist.
func (r *FileRepo) Init() error {
	return r.coll.Initialize(nil)
}

func (r *FileRepo) List(ctx context.Context) ([]Note, error) {
	return r.coll.Load(ctx)
}

func (r *FileRepo) Update(ctx context.Context, fn func([]Note) ([]Note, error)) error {
	return r.coll.Update(ctx, fn)
}

// Collection exposes the underlying store for maintenance commands.
func (r *FileRepo) Collection() *store.Collection[Note] {
	return r.coll
}
