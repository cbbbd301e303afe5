package loader

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"go.uber.org/zap"
)

const (
	// DefaultChunkSize is the number of faces processed per worker task.
	DefaultChunkSize = 16384

	// maxChunks caps the number of tasks submitted for one mesh so a single load never
	// outgrows the pool queue.
	maxChunks = 128

	// poolQueueSize is the task queue capacity of the face-processing pool.
	poolQueueSize = 256
)

// plyLoaderBackend decodes binary little-endian PLY triangle meshes. The header and
// element lists are read serially; per-face geometry is computed in chunks on a worker pool.
type plyLoaderBackend struct {
	mu        sync.RWMutex
	pool      worker.DynamicWorkerPool
	chunkSize int
	released  bool
}

var _ loaderBackend = &plyLoaderBackend{}

// newPLYLoaderBackend creates a PLY backend with its own worker pool.
//
// Parameters:
//   - workers: the maximum number of pool workers
//   - chunkSize: the preferred number of faces per task
//
// Returns:
//   - *plyLoaderBackend: the backend
func newPLYLoaderBackend(workers, chunkSize int) *plyLoaderBackend {
	return &plyLoaderBackend{
		pool:      worker.NewDynamicWorkerPool(max(workers, 1), poolQueueSize, 1*time.Second),
		chunkSize: max(chunkSize, 1),
	}
}

func (b *plyLoaderBackend) Load(ctx context.Context, r io.Reader, progress ProgressFunc) (*model.Mesh, error) {
	// A stopped pool never runs submitted tasks, so the read lock is held for the whole load.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.released {
		return nil, ErrReleased
	}

	start := time.Now()
	br := bufio.NewReaderSize(r, 1<<16)

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	vertices, center, err := readPLYVertices(br, header.vertexCount)
	if err != nil {
		return nil, err
	}
	faces, err := readPLYFaces(br, header.faceCount, header.vertexCount)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mesh := &model.Mesh{
		Vertices:    vertices,
		Faces:       faces,
		Center:      center,
		Positions:   make([][3]float32, len(faces)*3),
		FlatNormals: make([][3]float32, len(faces)*3),
	}

	if err := b.processFaces(ctx, mesh, progress); err != nil {
		return nil, err
	}
	accumulateVertexNormals(mesh)

	common.Logger().Debug("decoded ply mesh",
		zap.Int("vertices", len(vertices)),
		zap.Int("faces", len(faces)),
		zap.Int("comments", len(header.comments)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mesh, nil
}

// processFaces fills the de-indexed positions and flat normals of mesh. Each task writes
// a disjoint range of faces, so no locking is needed on the output slices.
//
// Parameters:
//   - ctx: checked by each task before it starts
//   - mesh: mesh with Vertices and Faces set and Positions/FlatNormals sized
//   - progress: optional progress callback, invoked once per completed chunk
//
// Returns:
//   - error: ctx.Err() if the load was cancelled
func (b *plyLoaderBackend) processFaces(ctx context.Context, mesh *model.Mesh, progress ProgressFunc) error {
	faceCount := len(mesh.Faces)
	if faceCount == 0 {
		if progress != nil {
			progress(0, 0)
		}
		return nil
	}

	chunkSize := max(b.chunkSize, (faceCount+maxChunks-1)/maxChunks)
	chunks := (faceCount + chunkSize - 1) / chunkSize

	var (
		wg         sync.WaitGroup
		progressMu sync.Mutex
		done       int
	)

	for c := range chunks {
		lo := c * chunkSize
		hi := min(lo+chunkSize, faceCount)

		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: c,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				computeFaceGeometry(mesh, lo, hi)

				if progress != nil {
					progressMu.Lock()
					done++
					progress(done, chunks)
					progressMu.Unlock()
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return ctx.Err()
}

func (b *plyLoaderBackend) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.pool.Stop()
}

// computeFaceGeometry writes the corners and the face normal of faces [lo, hi).
func computeFaceGeometry(mesh *model.Mesh, lo, hi int) {
	for i := lo; i < hi; i++ {
		f := mesh.Faces[i]
		p0, p1, p2 := mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]

		n, ok := common.Normalize3(common.Cross3(common.Sub3(p1, p0), common.Sub3(p2, p0)))
		if !ok {
			n = [3]float32{}
		}

		o := i * 3
		mesh.Positions[o], mesh.Positions[o+1], mesh.Positions[o+2] = p0, p1, p2
		mesh.FlatNormals[o], mesh.FlatNormals[o+1], mesh.FlatNormals[o+2] = n, n, n
	}
}

// accumulateVertexNormals averages the face normals around each vertex. Vertices that no
// face references keep a zero normal.
func accumulateVertexNormals(mesh *model.Mesh) {
	normals := make([][3]float32, len(mesh.Vertices))
	counts := make([]uint32, len(mesh.Vertices))

	for i, f := range mesh.Faces {
		n := mesh.FlatNormals[i*3]
		for _, idx := range f {
			normals[idx][0] += n[0]
			normals[idx][1] += n[1]
			normals[idx][2] += n[2]
			counts[idx]++
		}
	}
	for i, c := range counts {
		if c == 0 {
			continue
		}
		inv := 1 / float32(c)
		normals[i] = [3]float32{normals[i][0] * inv, normals[i][1] * inv, normals[i][2] * inv}
	}
	mesh.VertexNormals = normals
}
