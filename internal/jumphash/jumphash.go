// Package jumphash implements jump consistent hashing with support for
// independent re-sampling, used for bounded-load placement.
//
// All functions are pure and use fixed integer constants, so two processes
// (or two implementations in different languages) always agree on where a
// key lands.
package jumphash

// lcgMultiplier advances the per-key pseudo-random stream. Taken from the
// jump consistent hash paper by Lamport and Veach.
const lcgMultiplier = 2862933555777941757

// goldenGamma is the splitmix64 increment, used to derive independent
// per-attempt seeds from a key.
const goldenGamma = 0x9e3779b97f4a7c15

// Bucket maps key to a bucket in [0, n). The caller must guarantee n >= 1.
//
// Bucket is consistent: when n grows to n+1, a key either keeps its bucket
// or moves to bucket n (with probability 1/(n+1)); it never moves to any
// other bucket.
func Bucket(key uint64, n int) int {
	var (
		b int64 = -1
		j int64
	)
	for j < int64(n) {
		b = j
		key = key*lcgMultiplier + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}
	return int(b)
}

// BucketAttempt returns an independent, uniformly distributed candidate
// bucket in [0, n) for the given attempt number. The caller must guarantee
// n >= 1 and attempt >= 0.
//
// Each attempt folds into the key before mixing, so the sequence of
// candidates for a key is decorrelated from Bucket(key, n) and from every
// other attempt. Unlike ring-successor probing there is no stored structure
// to walk: every attempt is a fresh sample over all n buckets.
func BucketAttempt(key uint64, n, attempt int) int {
	return int(mix64(key+uint64(attempt+1)*goldenGamma) % uint64(n))
}

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
