package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

// DefaultMaxFileSize is the largest input accepted by default, matching the
// upload limit of the web tool (50 MB).
const DefaultMaxFileSize int64 = 50 << 20

// Decode reads a complete image file from r.
//
// Supported formats are PNG, JPEG, GIF, WebP and BMP. maxBytes limits how
// much is read; zero or negative means unlimited. The returned format is
// the registered decoder name ("png", "jpeg", ...).
//
// # Errors
//
// Every failure, including an oversized input, is reported with code
// DECODE_FAILURE so that no pixel processing starts.
func Decode(r io.Reader, maxBytes int64) (image.Image, string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", bgerrors.Wrap(bgerrors.ErrCodeDecode, err, "failed to read image")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", bgerrors.New(bgerrors.ErrCodeDecode,
			"file too large (max %d MB)", maxBytes>>20)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory image file.
func DecodeBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", bgerrors.New(bgerrors.ErrCodeDecode, "empty image file")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", bgerrors.Wrap(bgerrors.ErrCodeDecode, err, "not a valid or supported image")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", bgerrors.New(bgerrors.ErrCodeDecode, "image has no pixels")
	}
	return img, format, nil
}

// cacheEntry keeps the decoded image together with facts learned while
// loading it.
type cacheEntry struct {
	img    image.Image
	format string
	size   int64
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant
// disk reads and decodes.
//
// The cache stores decoded images keyed by their file path. Cached images
// remain in memory until explicitly removed via Evict() or Clear(); the
// servers clear the cache on a schedule.
//
//	cache := imaging.NewImageCache(imaging.DefaultMaxFileSize)
//	img, err := cache.Load("/path/to/image.png")
type ImageCache struct {
	mu       sync.RWMutex
	images   map[string]cacheEntry
	maxBytes int64
}

// NewImageCache creates an empty cache that refuses files larger than
// maxBytes (zero or negative means unlimited).
func NewImageCache(maxBytes int64) *ImageCache {
	return &ImageCache{
		images:   make(map[string]cacheEntry),
		maxBytes: maxBytes,
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// The image is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) will result in separate cache
// entries. A missing file is reported as a plain wrapped error; unreadable
// image content as DECODE_FAILURE.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (cacheEntry, error) {
	c.mu.RLock()
	if e, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to stat file: %w", err)
	}

	img, format, err := Decode(f, c.maxBytes)
	if err != nil {
		return cacheEntry{}, err
	}

	e := cacheEntry{img: img, format: format, size: stat.Size()}
	c.mu.Lock()
	c.images[path] = e
	c.mu.Unlock()

	return e, nil
}

// LoadFormat is Load that also returns the decoder name of the file.
func (c *ImageCache) LoadFormat(path string) (image.Image, string, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, "", err
	}
	return e.img, e.format, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// EvictOn starts a cron scheduler that clears the cache on spec (standard
// five-field syntax or descriptors such as "@every 10m"). onEvict, if not
// nil, is called after each run with the number of images dropped. The
// caller must Stop the returned scheduler.
func (c *ImageCache) EvictOn(spec string, onEvict func(n int)) (*cron.Cron, error) {
	sched := cron.New()
	_, err := sched.AddFunc(spec, func() {
		c.mu.Lock()
		n := len(c.images)
		c.images = make(map[string]cacheEntry)
		c.mu.Unlock()
		if onEvict != nil {
			onEvict(n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid eviction schedule %q: %w", spec, err)
	}
	sched.Start()
	return sched, nil
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that accepted the file: "png", "jpeg", "gif",
	// "webp" or "bmp". Detection is based on file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	bounds := e.img.Bounds()

	hasAlpha := false
	colorDepth := "8-bit"
	switch e.img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: e.size,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
