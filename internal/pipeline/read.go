package pipeline

import (
	"fmt"
	"io"
	"os"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
)

// ReadFile reads an input image from disk, refusing files larger than
// maxBytes before reading them. maxBytes follows Options.MaxFileSize: zero
// selects imaging.DefaultMaxFileSize and negative means unlimited.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	if maxBytes == 0 {
		maxBytes = imaging.DefaultMaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if maxBytes > 0 && stat.Size() > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		// The file may grow between Stat and the read.
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrCodeDecode, err, "failed to read image")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, tooLarge(maxBytes)
	}
	return data, nil
}

func tooLarge(maxBytes int64) error {
	return bgerrors.New(bgerrors.ErrCodeDecode, "file too large (max %d MB)", maxBytes>>20)
}
