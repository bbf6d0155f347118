package mock

//go:generate mockgen -package mock -destination chunk_reader.go github.com/buildbarn/bb-treehash/pkg/blobstore/buffer ChunkReader
//go:generate mockgen -package mock -destination clock.go github.com/buildbarn/bb-treehash/pkg/clock Clock
//go:generate mockgen -package mock -destination hash.go hash Hash
