package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// AvatarSize is the fixed width and height every uploaded avatar is resized to, matching the original server's
// Image.resize((256, 256)) call.
const AvatarSize = 256

// ResizeAvatar decodes an image, resizes it to AvatarSize x AvatarSize with Lanczos resampling, flattens any
// transparency onto a white background (mirroring the original's PNG -> RGB conversion before JPEG save), and
// re-encodes it as JPEG.
func ResizeAvatar(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar image: %w", err)
	}

	resized := imaging.Resize(img, AvatarSize, AvatarSize, imaging.Lanczos)

	flattened := imaging.New(AvatarSize, AvatarSize, color.White)
	flattened = imaging.Overlay(flattened, resized, image.Pt(0, 0), 1.0)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, flattened, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode avatar jpeg: %w", err)
	}
	return out.Bytes(), nil
}
