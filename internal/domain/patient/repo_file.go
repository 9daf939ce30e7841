package patient

import (
	"context"
	"path/filepath"

	"github.com/ehr/journal/internal/platform/store"
)

// FileRepo keeps patients in DATA_DIR/patients.xml.
type FileRepo struct {
	coll *store.Collection[Patient]
}

func NewFileRepo(dataDir string, opts ...store.Option) *FileRepo {
	return &FileRepo{coll: store.New[Patient](filepath.Join(dataDir, FileName), Schema, opts...)}
}

// Init creates patients.xml with the seed patient if it does not exist.
func (r *FileRepo) Init() error {
	return r.coll.Initialize(Seed())
}

func (r *FileRepo) List(ctx context.Context) ([]Patient, error) {
	return r.coll.Load(ctx)
}

func (r *FileRepo) Update(ctx context.Context, fn func([]Patient) ([]Patient, error)) error {
	return r.coll.Update(ctx, fn)
}

// Collection exposes the underlying store for maintenance commands.
func (r *FileRepo) Collection() *store.Collection[Patient] {
	return r.coll
}
