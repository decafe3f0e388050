package imageproc

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is the EXIF orientation tag (0x0112).
type Orientation int

const (
	OrientationUnspecified Orientation = 0
	OrientationNormal      Orientation = 1
	OrientationFlipH       Orientation = 2
	OrientationRotate180   Orientation = 3
	OrientationFlipV       Orientation = 4
	OrientationTranspose   Orientation = 5
	OrientationRotate270   Orientation = 6
	OrientationTransverse  Orientation = 7
	OrientationRotate90    Orientation = 8
)

// SwapsAxes reports whether applying o exchanges width and height.
func (o Orientation) SwapsAxes() bool {
	switch o {
	case OrientationTranspose, OrientationRotate270, OrientationTransverse, OrientationRotate90:
		return true
	default:
		return false
	}
}

// ReadOrientation returns the orientation stored in JPEG data. Missing or
// unreadable metadata yields OrientationUnspecified.
func ReadOrientation(data []byte) Orientation {
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return OrientationUnspecified
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationUnspecified
	}
	v, err := tag.Int(0)
	if err != nil {
		return OrientationUnspecified
	}
	return Orientation(v)
}

// Apply returns img transformed so that it displays upright. Rotations by
// 90 degrees swap the axes; callers must re-read Bounds afterwards.
func (o Orientation) Apply(img image.Image) image.Image {
	switch o {
	case OrientationUnspecified, OrientationNormal:
		return img
	case OrientationFlipH:
		return imaging.FlipH(img)
	case OrientationRotate180:
		return imaging.Rotate180(img)
	case OrientationFlipV:
		return imaging.FlipV(img)
	case OrientationTranspose:
		return imaging.FlipH(imaging.Rotate270(img))
	case OrientationRotate270:
		return imaging.Rotate270(img)
	case OrientationTransverse:
		return imaging.FlipH(imaging.Rotate90(img))
	case OrientationRotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Orient normalizes img for JPEG sources and is a no-op for every other
// format. A failure while transforming keeps the untransformed image.
func Orient(data []byte, f Format, img image.Image) (out image.Image) {
	if f != FormatJPEG {
		return img
	}
	o := ReadOrientation(data)
	if o == OrientationUnspecified || o == OrientationNormal {
		return img
	}
	defer func() {
		if recover() != nil {
			out = img
		}
	}()
	return o.Apply(img)
}
