package step

import (
	"context"
	"io"

	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/util"

	"golang.org/x/sync/errgroup"
)

// stepQueueLength is the number of chunks that may be queued for a
// single step, permitting steps to progress at slightly different
// rates.
const stepQueueLength = 4

// HashChunks reads all chunks from a ChunkReader and writes them into
// every step, in order. Every step runs in its own goroutine. Chunks
// are shared between steps, which is safe because ChunkReaders never
// modify chunks after returning them. The ChunkReader is not closed.
func HashChunks(ctx context.Context, r buffer.ChunkReader, steps []*Step) error {
	group, groupCtx := errgroup.WithContext(ctx)
	queues := make([]chan []byte, 0, len(steps))
	for _, s := range steps {
		s := s
		queue := make(chan []byte, stepQueueLength)
		queues = append(queues, queue)
		group.Go(func() error {
			for chunk := range queue {
				if _, err := s.Write(chunk); err != nil {
					return util.StatusWrapf(err, "Failed to hash data for step %#v", s.String())
				}
			}
			return nil
		})
	}

	group.Go(func() error {
		defer func() {
			for _, queue := range queues {
				close(queue)
			}
		}()
		for {
			if err := util.StatusFromContext(groupCtx); err != nil {
				return err
			}
			chunk, err := r.Read()
			if err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			for _, queue := range queues {
				select {
				case queue <- chunk:
				case <-groupCtx.Done():
					return util.StatusFromContext(groupCtx)
				}
			}
		}
	})
	return group.Wait()
}
