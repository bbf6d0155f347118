package buffer

import (
	"io"

	"github.com/buildbarn/bb-treehash/pkg/util"

	"google.golang.org/grpc/codes"
)

type readerChunkReader struct {
	r             io.ReadCloser
	readSizeBytes int
	err           error
}

// NewReaderChunkReader creates a ChunkReader that returns the contents
// of an io.ReadCloser. Every call to Read() returns a freshly allocated
// chunk, so that chunks may be retained by the caller.
func NewReaderChunkReader(r io.ReadCloser, chunkPolicy ChunkPolicy) ChunkReader {
	return NewNormalizingChunkReader(
		&readerChunkReader{
			r:             r,
			readSizeBytes: chunkPolicy.defaultSizeBytes,
		},
		chunkPolicy)
}

func (r *readerChunkReader) Read() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	chunk := make([]byte, r.readSizeBytes)
	n, err := io.ReadFull(r.r, chunk)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// Return the final partial chunk before reporting the
		// end of the stream.
		r.err = io.EOF
		if n == 0 {
			return nil, io.EOF
		}
		return chunk[:n:n], nil
	} else if err != nil {
		r.err = util.StatusWrapWithCode(err, codes.Unavailable, "Failed to read input")
		return nil, r.err
	}
	return chunk, nil
}

func (r *readerChunkReader) Close() {
	r.r.Close()
}
