package builder

// fakeDecoder is a scripted stand-in for *wire.Decoder, satisfying the
// package-local decoder interface without pulling in internal/wire. Each
// method pops the next value off its queue; popping past the end is a test
// bug and panics with a clear message rather than silently zeroing.
type fakeDecoder struct {
	bools   []bool
	ints    []int64
	floats  []float32
	doubles []float64
	fixed   [][]byte
	bytes   [][]byte
	strings []string
	// blocks holds, per ReadBlocks call, how many times to invoke emit
	// before returning nil.
	blocks [][]int

	depth    int
	maxDepth int
}

func (f *fakeDecoder) ReadBool() (bool, error) {
	v := f.bools[0]
	f.bools = f.bools[1:]
	return v, nil
}

func (f *fakeDecoder) ReadInt() (int64, error) {
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v, nil
}

func (f *fakeDecoder) ReadFloat() (float32, error) {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v, nil
}

func (f *fakeDecoder) ReadDouble() (float64, error) {
	v := f.doubles[0]
	f.doubles = f.doubles[1:]
	return v, nil
}

func (f *fakeDecoder) ReadFixed(n int) ([]byte, error) {
	v := f.fixed[0]
	f.fixed = f.fixed[1:]
	return v, nil
}

func (f *fakeDecoder) ReadBytes() ([]byte, error) {
	v := f.bytes[0]
	f.bytes = f.bytes[1:]
	return v, nil
}

func (f *fakeDecoder) ReadString() (string, error) {
	v := f.strings[0]
	f.strings = f.strings[1:]
	return v, nil
}

func (f *fakeDecoder) ReadBlocks(emit func() error) error {
	counts := f.blocks[0]
	f.blocks = f.blocks[1:]
	for _, n := range counts {
		for i := 0; i < n; i++ {
			if err := emit(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeDecoder) EnterNested() bool {
	if f.maxDepth > 0 && f.depth >= f.maxDepth {
		return false
	}
	f.depth++
	return true
}

func (f *fakeDecoder) ExitNested() { f.depth-- }
