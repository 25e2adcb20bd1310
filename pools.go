package datum

import "sync"

// wireBufPool holds scratch buffers for WriteStream. Oversized buffers are
// not returned to the pool.
var wireBufPool = &sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

const maxPooledWireBuf = 65536

func releaseWireBuf(b *[]byte) {
	if cap(*b) > maxPooledWireBuf {
		return
	}
	*b = (*b)[:0]
	wireBufPool.Put(b)
}
