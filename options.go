package zstd

// DefaultMaxWindowSize is the largest window_size a frame header may
// declare before the decoder refuses it with ErrWindowTooLarge, absent an
// explicit WithMaxWindowSize override. 128 MiB matches spec.md's §3
// recommended standard-profile ceiling.
const DefaultMaxWindowSize = 128 << 20

// Option configures a Decoder at construction time, following the small
// functional-option constructors the teacher uses for its long-lived
// components (spinner.New, decompressioncache.New).
type Option func(*Decoder)

// WithMaxWindowSize overrides the largest window_size a frame header may
// declare. Spec.md §3 notes implementations may accept up to 2 GiB.
func WithMaxWindowSize(n int) Option {
	return func(d *Decoder) {
		d.maxWindowSize = n
	}
}

// WithHasher installs a custom checksum accumulator in place of the
// default XXH64 implementation.
func WithHasher(newHasher func() Hasher) Option {
	return func(d *Decoder) {
		d.newHasher = newHasher
	}
}

// WithDictTableCache installs a cache that memoizes parsed dictionary
// entropy tables across calls to AddDict, keyed by dictionary content.
func WithDictTableCache(cache *DictTableCache) Option {
	return func(d *Decoder) {
		d.dictCache = cache
	}
}
