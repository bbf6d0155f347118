package buffer

// ChunkPolicy is provided as an argument to the constructors of
// ChunkReaders. It specifies the desired size of chunks returned by
// ChunkReader.Read().
type ChunkPolicy struct {
	minimumSizeBytes int
	defaultSizeBytes int
	maximumSizeBytes int
}

// DefaultReadSizeBytes is the size of the reads performed against
// input streams if no explicit chunk size is requested.
const DefaultReadSizeBytes = 8 * 1024

// ChunkSizeDontCare can be used if it doesn't really matter what
// chunk size is used. There is no upper bound on the maximum chunk
// size. Streams are read in units of DefaultReadSizeBytes.
var ChunkSizeDontCare = ChunkPolicy{
	minimumSizeBytes: 1,
	defaultSizeBytes: DefaultReadSizeBytes,
	maximumSizeBytes: int(^uint(0) >> 1),
}

// ChunkSizeExactly can be used if the ChunkReader should return chunks
// of an exact size. Only the final chunk that is returned may be
// smaller than the specified size. This policy may introduce overhead
// of copying data into contiguous buffers.
func ChunkSizeExactly(sizeBytes int) ChunkPolicy {
	return ChunkPolicy{
		minimumSizeBytes: sizeBytes,
		defaultSizeBytes: sizeBytes,
		maximumSizeBytes: sizeBytes,
	}
}

// ChunkSizeAtMost can be used if the ChunkReader is permitted to return
// chunks that are smaller than the specified size. This policy performs
// the least amount of copying of data.
func ChunkSizeAtMost(sizeBytes int) ChunkPolicy {
	return ChunkPolicy{
		minimumSizeBytes: 1,
		defaultSizeBytes: sizeBytes,
		maximumSizeBytes: sizeBytes,
	}
}
