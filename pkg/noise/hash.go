package noise

// Hash32 mixes a 32-bit input into a well distributed 32-bit output
// (Murmur3 finalizer style avalanche).
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Hash2 returns a stable hash for 2D integer coordinates and a seed.
func Hash2(seed uint32, x, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h = Hash32(h)
	h ^= uint32(z) * 0x85ebca6b
	return Hash32(h)
}

// Hash3 returns a stable hash for 3D integer coordinates and a seed.
func Hash3(seed uint32, x, y, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h = Hash32(h)
	h ^= uint32(y) * 0x85ebca6b
	h = Hash32(h)
	h ^= uint32(z) * 0xc2b2ae35
	return Hash32(h)
}

// Unit maps a hash to [0, 1].
func Unit(h uint32) float32 {
	return float32(h>>8) / float32(1<<24-1)
}

// Signed returns a reproducible value in [-1, 1] for a grid cell at a
// given subdivision level. It does not depend on evaluation order, so
// cells may be computed in parallel.
func Signed(seed uint32, level, x, z int) float32 {
	return Unit(Hash3(seed, int32(level), int32(x), int32(z)))*2 - 1
}
