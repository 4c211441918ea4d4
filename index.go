package freelist

import "strconv"

// Index is a composite handle packing a chunk ordinal into the high 16 bits
// and an in-chunk offset into the low 16 bits.
type Index uint32

const (
	indexShift = 16
	indexMask  = 0xFFFF

	// MaxChunks is the number of chunks a FreeList may hold. Ordinal 0xFFFF
	// is reserved so InvalidIndex can never be issued.
	MaxChunks = indexMask

	// InvalidIndex is never returned for a live slot.
	InvalidIndex Index = 0xFFFFFFFF
)

// PackIndex packs a chunk ordinal and an in-chunk offset into an Index.
func PackIndex(chunk, offset uint16) Index {
	return Index(uint32(chunk)<<indexShift | uint32(offset))
}

// Unpack splits the index into its chunk ordinal and in-chunk offset.
func (i Index) Unpack() (chunk, offset uint16) {
	return uint16(uint32(i) >> indexShift & indexMask), uint16(uint32(i) & indexMask)
}

// Chunk returns the chunk ordinal.
func (i Index) Chunk() uint16 {
	return uint16(uint32(i) >> indexShift)
}

// Offset returns the in-chunk offset.
func (i Index) Offset() uint16 {
	return uint16(uint32(i) & indexMask)
}

// String renders the index as "chunk:offset".
func (i Index) String() string {
	if i == InvalidIndex {
		return "invalid"
	}
	c, o := i.Unpack()
	return strconv.Itoa(int(c)) + ":" + strconv.Itoa(int(o))
}
