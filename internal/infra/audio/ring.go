package audio

// preRollBuffer keeps the most recent capture samples so the first syllable
// of an utterance is not clipped when onset detection fires a frame late.
type preRollBuffer struct {
	buffer []int16
	head   int
}

func newPreRollBuffer(size int) *preRollBuffer {
	return &preRollBuffer{buffer: make([]int16, size)}
}

func (b *preRollBuffer) Add(samples []int16) {
	for _, s := range samples {
		b.buffer[b.head] = s
		b.head = (b.head + 1) % len(b.buffer)
	}
}

// Read returns the buffered samples oldest first.
func (b *preRollBuffer) Read() []int16 {
	samples := make([]int16, len(b.buffer))
	for i := range b.buffer {
		samples[i] = b.buffer[(b.head+i)%len(b.buffer)]
	}
	return samples
}

func (b *preRollBuffer) Clear() {
	for i := range b.buffer {
		b.buffer[i] = 0
	}
	b.head = 0
}
