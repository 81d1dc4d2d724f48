package hand

// Preset hands in pixel space, expressed relative to the wrist so tests can
// place them anywhere in the frame.

var openPalmOffsets = [NumLandmarks]Point{
	Wrist:     {0, 0},
	ThumbCMC:  {30, -30},
	ThumbMCP:  {60, -55},
	ThumbIP:   {90, -85},
	ThumbTip:  {120, -110},
	IndexMCP:  {40, -120},
	IndexPIP:  {45, -160},
	IndexDIP:  {48, -195},
	IndexTip:  {50, -230},
	MiddleMCP: {0, -125},
	MiddlePIP: {0, -170},
	MiddleDIP: {0, -210},
	MiddleTip: {0, -250},
	RingMCP:   {-35, -120},
	RingPIP:   {-38, -160},
	RingDIP:   {-42, -200},
	RingTip:   {-45, -235},
	PinkyMCP:  {-65, -105},
	PinkyPIP:  {-72, -135},
	PinkyDIP:  {-78, -165},
	PinkyTip:  {-85, -190},
}

var fistOffsets = [NumLandmarks]Point{
	Wrist:     {0, 0},
	ThumbCMC:  {30, -25},
	ThumbMCP:  {50, -45},
	ThumbIP:   {60, -55},
	ThumbTip:  {60, -40},
	IndexMCP:  {35, -100},
	IndexPIP:  {38, -125},
	IndexDIP:  {34, -105},
	IndexTip:  {30, -90},
	MiddleMCP: {0, -105},
	MiddlePIP: {0, -130},
	MiddleDIP: {-1, -108},
	MiddleTip: {-2, -92},
	RingMCP:   {-30, -100},
	RingPIP:   {-31, -122},
	RingDIP:   {-28, -102},
	RingTip:   {-25, -88},
	PinkyMCP:  {-55, -90},
	PinkyPIP:  {-57, -108},
	PinkyDIP:  {-53, -92},
	PinkyTip:  {-50, -82},
}

func fromOffsets(wrist Point, offsets *[NumLandmarks]Point) Sample {
	s := make(Sample, NumLandmarks)
	for i, o := range offsets {
		s[i] = wrist.Add(o)
	}
	return s
}

// OpenPalm returns a hand with every finger extended and no pinch.
func OpenPalm(wrist Point) Sample {
	return fromOffsets(wrist, &openPalmOffsets)
}

// Fist returns a closed fist with the thumb tucked away from the fingertips.
func Fist(wrist Point) Sample {
	return fromOffsets(wrist, &fistOffsets)
}

// IndexPinch returns an open hand whose index tip touches the thumb tip.
func IndexPinch(wrist Point) Sample {
	s := OpenPalm(wrist)
	return s.With(IndexTip, s[ThumbTip].Add(Point{X: 10, Y: 5}))
}

// MiddlePinch returns an open hand whose middle tip touches the thumb tip.
func MiddlePinch(wrist Point) Sample {
	s := OpenPalm(wrist)
	return s.With(MiddleTip, s[ThumbTip].Add(Point{X: 8, Y: 6}))
}

// WithThumbAt translates s so that its thumb tip lands on p.
func WithThumbAt(s Sample, p Point) Sample {
	return s.Translate(p.X-s[ThumbTip].X, p.Y-s[ThumbTip].Y)
}
