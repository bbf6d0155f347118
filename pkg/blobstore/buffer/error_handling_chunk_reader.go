package buffer

import (
	"io"
)

// ErrorHandler is called into by the ChunkReader returned by
// NewErrorHandlingChunkReader when reading fails. It may either return
// an error to terminate the stream or return nil to let the stream be
// reopened at the offset at which the failure occurred.
type ErrorHandler interface {
	OnError(err error) error
	Done()
}

// ChunkReaderOpener opens a stream at a given offset.
type ChunkReaderOpener func(offset int64) (ChunkReader, error)

type errorHandlingChunkReader struct {
	opener       ChunkReaderOpener
	errorHandler ErrorHandler
	r            ChunkReader
	off          int64
	err          error
}

// NewErrorHandlingChunkReader returns a ChunkReader that forwards calls
// to a reader obtained from an opener function. Upon I/O failure, it
// calls into an ErrorHandler to determine whether the stream should be
// reopened to continue the transfer.
func NewErrorHandlingChunkReader(opener ChunkReaderOpener, errorHandler ErrorHandler) ChunkReader {
	return &errorHandlingChunkReader{
		opener:       opener,
		errorHandler: errorHandler,
		r:            nil,
	}
}

func (r *errorHandlingChunkReader) Read() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		var originalErr error
		if r.r == nil {
			r.r, originalErr = r.opener(r.off)
		}
		if originalErr == nil {
			var chunk []byte
			chunk, originalErr = r.r.Read()
			if originalErr == nil {
				r.off += int64(len(chunk))
				return chunk, nil
			} else if originalErr == io.EOF {
				return nil, io.EOF
			}
			r.r.Close()
			r.r = nil
		}
		if translatedErr := r.errorHandler.OnError(originalErr); translatedErr != nil {
			r.err = translatedErr
			return nil, translatedErr
		}
	}
}

func (r *errorHandlingChunkReader) Close() {
	r.errorHandler.Done()
	if r.r != nil {
		r.r.Close()
		r.r = nil
	}
}
