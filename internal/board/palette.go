package board

// Color tokens accepted by the validated tool surface and the interactive
// path alike. Tokens are abstract names, not hex values; the rendering layer
// owns the mapping to actual colors.
const (
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorPink   = "pink"
	ColorPurple = "purple"
	ColorBlue   = "blue"
	ColorCyan   = "cyan"
	ColorGreen  = "green"
	ColorGray   = "gray"
	ColorBlack  = "black"
	ColorWhite  = "white"
)

// ValidColors is the color token allow-list.
var ValidColors = []string{
	ColorYellow, ColorOrange, ColorRed, ColorPink, ColorPurple,
	ColorBlue, ColorCyan, ColorGreen, ColorGray, ColorBlack, ColorWhite,
}

// Text size tokens.
const (
	TextSizeS  = "s"
	TextSizeM  = "m"
	TextSizeL  = "l"
	TextSizeXL = "xl"
)

// ValidTextSizes is the text size token allow-list.
var ValidTextSizes = []string{TextSizeS, TextSizeM, TextSizeL, TextSizeXL}

// Defaults used when a field is absent or fails its allow-list.
const (
	DefaultColor          = ColorYellow
	DefaultTextSize       = TextSizeM
	DefaultShapeType      = ShapeRectangle
	DefaultConnectorStyle = StyleStraight
)

func inList(v string, list []string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidColor reports whether c is an allowed color token.
func ValidColor(c string) bool { return inList(c, ValidColors) }

// ValidTextSize reports whether s is an allowed text size token.
func ValidTextSize(s string) bool { return inList(s, ValidTextSizes) }

// ValidShapeType reports whether s is an allowed shape geometry.
func ValidShapeType(s string) bool { return inList(s, ValidShapeTypes) }

// ValidConnectorStyle reports whether s is an allowed connector style.
func ValidConnectorStyle(s string) bool { return inList(s, ValidConnectorStyles) }
