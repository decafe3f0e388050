package imageproc

import "image"

// Derivative is one encoded variant ready to be written.
type Derivative struct {
	Variant Variant
	Format  Format
	Width   int
	Height  int
	Data    []byte
}

// Derivatives holds main, thumb and card, in Variants order.
type Derivatives []Derivative

func (d Derivatives) Get(v Variant) (Derivative, bool) {
	for _, x := range d {
		if x.Variant == v {
			return x, true
		}
	}
	return Derivative{}, false
}

// Derive decodes validated bytes, corrects orientation and encodes the three
// variants in memory. Nothing touches the filesystem here, so an encode
// failure leaves no partial output behind.
func Derive(data []byte, f Format, maxDim int) (Derivatives, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	img, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	img = Orient(data, f, img)

	out := make(Derivatives, 0, len(Variants))
	for _, v := range Variants {
		var dst image.Image
		if tw, th, ok := v.Size(); ok {
			dst = Fill(img, tw, th)
		} else {
			dst, _ = Fit(img, maxDim)
		}
		encoded, err := EncodeBytes(dst, f)
		if err != nil {
			return nil, err
		}
		b := dst.Bounds()
		out = append(out, Derivative{
			Variant: v,
			Format:  f,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Data:    encoded,
		})
	}
	return out, nil
}
