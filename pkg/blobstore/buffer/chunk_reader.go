package buffer

// ChunkReader is a stream of data that is returned as a sequence of
// chunks. Read() returns io.EOF once the end of the stream has been
// reached. Chunks returned by Read() are owned by the caller and are
// never modified by the ChunkReader afterwards, meaning they may be
// shared with other goroutines.
type ChunkReader interface {
	Read() ([]byte, error)
	Close()
}

type errorChunkReader struct {
	err error
}

// NewErrorChunkReader creates a ChunkReader that returns a fixed error
// upon every call to Read(). Passing io.EOF yields an empty stream.
func NewErrorChunkReader(err error) ChunkReader {
	return &errorChunkReader{err: err}
}

func (r *errorChunkReader) Read() ([]byte, error) {
	return nil, r.err
}

func (r *errorChunkReader) Close() {}
